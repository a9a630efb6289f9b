package types

import (
	"github.com/shopspring/decimal"
)

type Balance struct {
	Account           string          `json:"account"`
	SubAccountID      uint8           `json:"subAccountId"`
	Asset             string          `json:"asset"`
	Quantity          decimal.Decimal `json:"quantity"`
	PendingWithdrawal decimal.Decimal `json:"pendingWithdrawal"`
}

// Position quantity is signed: negative for shorts.
type Position struct {
	Account          string          `json:"account"`
	SubAccountID     uint8           `json:"subAccountId"`
	ProductID        uint32          `json:"productId"`
	ProductSymbol    string          `json:"productSymbol"`
	Quantity         decimal.Decimal `json:"quantity"`
	AvgEntryPrice    decimal.Decimal `json:"avgEntryPrice"`
	InitCumFunding   decimal.Decimal `json:"initCumFunding"`
	PnL              decimal.Decimal `json:"pnl"`
	Margin           decimal.Decimal `json:"margin"`
	LiquidationPrice decimal.Decimal `json:"liquidationPrice"`
}

type ApprovedSigner struct {
	Account        string `json:"account"`
	SubAccountID   uint8  `json:"subAccountId"`
	ApprovedSigner string `json:"approvedSigner"`
	IsApproved     bool   `json:"isApproved"`
}

type Order struct {
	ID             string          `json:"id"`
	Account        string          `json:"account"`
	SubAccountID   uint8           `json:"subAccountId"`
	ProductID      uint32          `json:"productId"`
	ProductSymbol  string          `json:"productSymbol,omitempty"`
	IsBuy          bool            `json:"isBuy"`
	OrderType      OrderType       `json:"orderType"`
	TimeInForce    TimeInForce     `json:"timeInForce"`
	Price          decimal.Decimal `json:"price"`
	Quantity       decimal.Decimal `json:"quantity"`
	FilledQuantity decimal.Decimal `json:"filledQuantity"`
	Status         string          `json:"status"`
	Expiration     uint64          `json:"expiration"`
	Nonce          uint64          `json:"nonce"`
	CreatedAt      int64           `json:"createdAt,omitempty"`
}

// Side returns the order side derived from IsBuy.
func (o Order) Side() OrderSide { return OrderSide(o.IsBuy) }

// SessionStatus is returned verbatim by the session status endpoint.
type SessionStatus map[string]interface{}

// Ack is the generic acknowledgement body of write endpoints.
type Ack map[string]interface{}

// LoginResponse holds the session token under "value".
type LoginResponse struct {
	Value string `json:"value"`
}
