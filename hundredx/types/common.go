package types

import (
	"strings"

	"github.com/pkg/errors"
)

// OrderSide is carried on the wire as the boolean isBuy field.
type OrderSide bool

const (
	OrderSideBuy  OrderSide = true
	OrderSideSell OrderSide = false
)

func (s OrderSide) String() string {
	if s {
		return "BUY"
	}
	return "SELL"
}

// ParseOrderSide accepts "buy"/"sell" in any case.
func ParseOrderSide(s string) (OrderSide, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "BUY", "LONG":
		return OrderSideBuy, nil
	case "SELL", "SHORT":
		return OrderSideSell, nil
	}
	return false, NewValidationError("side", "unknown order side %q", s)
}

// OrderType enumerates the order kinds accepted by the matching engine.
type OrderType uint8

const (
	OrderTypeLimit           OrderType = 0
	OrderTypeLimitMaker      OrderType = 1
	OrderTypeMarket          OrderType = 2
	OrderTypeStopLoss        OrderType = 3
	OrderTypeStopLossLimit   OrderType = 4
	OrderTypeTakeProfit      OrderType = 5
	OrderTypeTakeProfitLimit OrderType = 6
)

var orderTypeNames = map[OrderType]string{
	OrderTypeLimit:           "LIMIT",
	OrderTypeLimitMaker:      "LIMIT_MAKER",
	OrderTypeMarket:          "MARKET",
	OrderTypeStopLoss:        "STOP_LOSS",
	OrderTypeStopLossLimit:   "STOP_LOSS_LIMIT",
	OrderTypeTakeProfit:      "TAKE_PROFIT",
	OrderTypeTakeProfitLimit: "TAKE_PROFIT_LIMIT",
}

func (t OrderType) String() string {
	if name, ok := orderTypeNames[t]; ok {
		return name
	}
	return "UNKNOWN"
}

// Valid reports whether t is one of the known order types.
func (t OrderType) Valid() bool {
	_, ok := orderTypeNames[t]
	return ok
}

// RequiresPrice reports whether orders of this type must carry a limit price.
func (t OrderType) RequiresPrice() bool {
	switch t {
	case OrderTypeLimit, OrderTypeLimitMaker, OrderTypeStopLossLimit, OrderTypeTakeProfitLimit:
		return true
	}
	return false
}

func ParseOrderType(s string) (OrderType, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for t, n := range orderTypeNames {
		if n == name {
			return t, nil
		}
	}
	return 0, NewValidationError("orderType", "unknown order type %q", s)
}

// TimeInForce is the order lifetime policy.
type TimeInForce uint8

const (
	TimeInForceGTC TimeInForce = 0
	TimeInForceFOK TimeInForce = 1
	TimeInForceIOC TimeInForce = 2
)

func (t TimeInForce) String() string {
	switch t {
	case TimeInForceGTC:
		return "GTC"
	case TimeInForceFOK:
		return "FOK"
	case TimeInForceIOC:
		return "IOC"
	}
	return "UNKNOWN"
}

func (t TimeInForce) Valid() bool {
	return t <= TimeInForceIOC
}

func ParseTimeInForce(s string) (TimeInForce, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "GTC", "":
		return TimeInForceGTC, nil
	case "FOK":
		return TimeInForceFOK, nil
	case "IOC":
		return TimeInForceIOC, nil
	}
	return 0, NewValidationError("timeInForce", "unknown time in force %q", s)
}

// Environment names a deployment of the exchange.
type Environment string

const (
	EnvironmentProd    Environment = "prod"
	EnvironmentTestnet Environment = "testnet"
	EnvironmentDevnet  Environment = "local"
)

func ParseEnvironment(s string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "prod", "production", "mainnet":
		return EnvironmentProd, nil
	case "testnet", "staging", "":
		return EnvironmentTestnet, nil
	case "local", "devnet", "dev":
		return EnvironmentDevnet, nil
	}
	return "", errors.Errorf("unknown environment %q", s)
}

// ApiType selects between the REST and streaming base URLs of an environment.
type ApiType string

const (
	ApiTypeREST      ApiType = "rest"
	ApiTypeWebsocket ApiType = "websocket"
)
