package client

import (
	"net/http"
)

// Endpoint names, also used as rate limit keys.
const (
	EndpointProducts        = "products:get"
	EndpointProduct         = "product:get"
	EndpointServerTime      = "time:get"
	EndpointTradeHistory    = "trade-history:get"
	EndpointKlines          = "klines:get"
	EndpointTicker          = "ticker:get"
	EndpointDepth           = "depth:get"
	EndpointLogin           = "session:login"
	EndpointSessionStatus   = "session:status"
	EndpointLogout          = "session:logout"
	EndpointBalances        = "balances:get"
	EndpointPositions       = "positions:get"
	EndpointApprovedSigners = "approved-signers:get"
	EndpointOpenOrders      = "open-orders:get"
	EndpointOrders          = "orders:get"
	EndpointCreateOrder     = "order:post"
	EndpointReplaceOrder    = "order:put"
	EndpointCancelOrder     = "order:delete"
	EndpointCancelAll       = "open-orders:delete"
	EndpointWithdraw        = "withdraw:post"
	EndpointReferral        = "referral:post"
)

// Endpoint is a statically classified REST route. Path may contain one %s
// for a path parameter.
type Endpoint struct {
	Name    string
	Method  string
	Path    string
	Private bool
}

var endpointTable = map[string]Endpoint{
	EndpointProducts:        {EndpointProducts, http.MethodGet, "/v1/products", false},
	EndpointProduct:         {EndpointProduct, http.MethodGet, "/v1/products/%s", false},
	EndpointServerTime:      {EndpointServerTime, http.MethodGet, "/v1/time", false},
	EndpointTradeHistory:    {EndpointTradeHistory, http.MethodGet, "/v1/trade-history", false},
	EndpointKlines:          {EndpointKlines, http.MethodGet, "/v1/uiKlines", false},
	EndpointTicker:          {EndpointTicker, http.MethodGet, "/v1/ticker/24hr", false},
	EndpointDepth:           {EndpointDepth, http.MethodGet, "/v1/depth", false},
	EndpointLogin:           {EndpointLogin, http.MethodPost, "/v1/session/login", false},
	EndpointSessionStatus:   {EndpointSessionStatus, http.MethodGet, "/v1/session/status", true},
	EndpointLogout:          {EndpointLogout, http.MethodGet, "/v1/session/logout", true},
	EndpointBalances:        {EndpointBalances, http.MethodGet, "/v1/balances", true},
	EndpointPositions:       {EndpointPositions, http.MethodGet, "/v1/positionRisk", true},
	EndpointApprovedSigners: {EndpointApprovedSigners, http.MethodGet, "/v1/approved-signers", true},
	EndpointOpenOrders:      {EndpointOpenOrders, http.MethodGet, "/v1/openOrders", true},
	EndpointOrders:          {EndpointOrders, http.MethodGet, "/v1/orders", true},
	EndpointCreateOrder:     {EndpointCreateOrder, http.MethodPost, "/v1/order", true},
	EndpointReplaceOrder:    {EndpointReplaceOrder, http.MethodPut, "/v1/cancel-and-replace", true},
	EndpointCancelOrder:     {EndpointCancelOrder, http.MethodDelete, "/v1/order", true},
	EndpointCancelAll:       {EndpointCancelAll, http.MethodDelete, "/v1/openOrders", true},
	EndpointWithdraw:        {EndpointWithdraw, http.MethodPost, "/v1/withdraw", true},
	EndpointReferral:        {EndpointReferral, http.MethodPost, "/v1/referral/add-referee", true},
}

// LookupEndpoint returns the route registered under name.
func LookupEndpoint(name string) (Endpoint, bool) {
	ep, ok := endpointTable[name]
	return ep, ok
}

// Endpoints returns every registered route.
func Endpoints() []Endpoint {
	out := make([]Endpoint, 0, len(endpointTable))
	for _, ep := range endpointTable {
		out = append(out, ep)
	}
	return out
}
