package client

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/url"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hundredx/go100x/hundredx/types"
	"github.com/hundredx/go100x/pkg/ratelimit"
)

func TestDispatchUnknownEndpoint(t *testing.T) {
	tr := &stubTransport{resp: &HTTPResponse{StatusCode: http.StatusOK}}
	d := NewDispatcher(tr, nil, nil)

	err := d.Dispatch(context.Background(), Call{Endpoint: "nope:get"}, nil)
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "endpoint", verr.Field)
	assert.Zero(t, tr.calls())
}

func TestPrivateEndpointsRequireLogin(t *testing.T) {
	tr := &stubTransport{resp: &HTTPResponse{StatusCode: http.StatusOK, Body: []byte(`[]`)}}
	c := newTestClient(t, "", WithTransport(tr))
	ctx := context.Background()

	calls := map[string]func() error{
		"balances":   func() error { _, err := c.GetSpotBalances(ctx); return err },
		"positions":  func() error { _, err := c.GetPosition(ctx, ""); return err },
		"signers":    func() error { _, err := c.GetApprovedSigners(ctx); return err },
		"openOrders": func() error { _, err := c.GetOpenOrders(ctx, "ethperp"); return err },
		"orders":     func() error { _, err := c.GetOrders(ctx, "", nil); return err },
		"status":     func() error { _, err := c.SessionStatus(ctx); return err },
		"logout":     func() error { _, err := c.Logout(ctx); return err },
		"order":      func() error { _, err := c.CreateOrder(ctx, goldenOrder()); return err },
		"cancel": func() error {
			_, err := c.CancelOrder(ctx, CancelOrderRequest{ProductID: 1002, OrderID: "1"})
			return err
		},
		"cancelAll": func() error { _, err := c.CancelAllOrders(ctx, CancelAllOrdersRequest{ProductID: 1002}); return err },
		"withdraw":  func() error { _, err := c.Withdraw(ctx, WithdrawRequest{Quantity: decimal.NewFromInt(1)}); return err },
		"referral":  func() error { _, err := c.AddReferralCode(ctx, "CODE"); return err },
	}
	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			err := call()
			require.Error(t, err)
			assert.True(t, types.IsValidation(err), "got %v", err)
			assert.ErrorIs(t, err, types.ErrNotLoggedIn)
		})
	}
	assert.Zero(t, tr.calls(), "no request may leave before login")

	_, err := c.AuthenticatedHeaders()
	assert.ErrorIs(t, err, types.ErrNotLoggedIn)
}

func TestDispatchTransportError(t *testing.T) {
	tr := &stubTransport{resp: &HTTPResponse{
		StatusCode: http.StatusBadRequest,
		Body:       []byte(`{"error":"bad symbol"}`),
		URL:        "https://api.test/v1/depth?symbol=xxx",
	}}
	c := newTestClient(t, "", WithTransport(tr))

	_, err := c.GetDepth(context.Background(), "xxx", DepthOptions{})
	var terr *types.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusBadRequest, terr.StatusCode)
	assert.Equal(t, http.MethodGet, terr.Method)
	assert.Equal(t, "symbol=xxx", terr.Payload)
	assert.Contains(t, err.Error(), "bad symbol")
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "https://api.test/v1/depth?symbol=xxx")
	assert.Equal(t, http.StatusBadRequest, types.StatusCode(err))
}

func TestDispatchNetworkError(t *testing.T) {
	tr := &stubTransport{err: errors.New("connection refused")}
	c := newTestClient(t, "", WithTransport(tr))

	_, err := c.ListProducts(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Zero(t, types.StatusCode(err))
}

func TestDispatchBuildsRequests(t *testing.T) {
	tr := &stubTransport{resp: &HTTPResponse{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	session := &Session{}
	session.authenticate("tok-1")
	d := NewDispatcher(tr, session, nil)
	ctx := context.Background()

	require.NoError(t, d.Dispatch(ctx, Call{Endpoint: EndpointProduct, PathArg: "ethperp"}, nil))
	require.NoError(t, d.Dispatch(ctx, Call{
		Endpoint: EndpointCreateOrder,
		Body:     map[string]interface{}{"price": big.NewInt(5), "quantity": decimal.NewFromInt(7), "nonce": 1},
	}, nil))
	require.NoError(t, d.Dispatch(ctx, Call{Endpoint: EndpointOpenOrders, Query: url.Values{"symbol": {"ethperp"}}}, nil))

	require.Len(t, tr.requests, 3)

	get := tr.requests[0]
	assert.Equal(t, http.MethodGet, get.Method)
	assert.Equal(t, "/v1/products/ethperp", get.Path)
	assert.Empty(t, get.Headers)

	post := tr.requests[1]
	assert.Equal(t, http.MethodPost, post.Method)
	assert.Equal(t, "/v1/order", post.Path)
	assert.Equal(t, "connectedAddress=tok-1", post.Headers["cookie"])
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(post.Body, &body))
	assert.Equal(t, "5", body["price"])
	assert.Equal(t, "7", body["quantity"])
	assert.Equal(t, float64(1), body["nonce"])

	assert.Equal(t, "ethperp", tr.requests[2].Query.Get("symbol"))
}

func TestDispatchRateLimited(t *testing.T) {
	tr := &stubTransport{resp: &HTTPResponse{StatusCode: http.StatusOK, Body: []byte(`{}`)}}
	limits := ratelimit.NewManager()
	limits.Set(EndpointServerTime, ratelimit.NewTokenBucket(1, 0.001))
	d := NewDispatcher(tr, nil, limits)

	require.NoError(t, d.Dispatch(context.Background(), Call{Endpoint: EndpointServerTime}, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := d.Dispatch(ctx, Call{Endpoint: EndpointServerTime}, nil)
	require.Error(t, err)
	assert.Equal(t, 1, tr.calls())
}

func TestShapePayload(t *testing.T) {
	in := map[string]interface{}{
		"price":    new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil),
		"quantity": uint64(12),
		"account":  testAddress,
		"isBuy":    true,
	}
	out := ShapePayload(in)

	assert.Equal(t, "1000000000000000000000000000000", out["price"])
	assert.Equal(t, "12", out["quantity"])
	assert.Equal(t, testAddress, out["account"])
	assert.Equal(t, true, out["isBuy"])
	assert.IsType(t, &big.Int{}, in["price"], "input must not be modified")

	assert.Empty(t, ShapePayload(nil))
}

func TestEndpointTable(t *testing.T) {
	for _, ep := range Endpoints() {
		got, ok := LookupEndpoint(ep.Name)
		require.True(t, ok)
		assert.Equal(t, ep, got)
	}
	login, _ := LookupEndpoint(EndpointLogin)
	assert.False(t, login.Private)
	cancel, _ := LookupEndpoint(EndpointCancelOrder)
	assert.True(t, cancel.Private)
	assert.Equal(t, http.MethodDelete, cancel.Method)
}
