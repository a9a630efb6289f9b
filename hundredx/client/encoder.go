package client

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/hundredx/go100x/hundredx/signing"
	"github.com/hundredx/go100x/hundredx/types"
)

// SubaccountID returns a pointer for the SubAccountID field of requests.
func SubaccountID(id int) *int { return &id }

// OrderRequest describes a new order. Price and Quantity are in units and
// get scaled by 1e18. Zero Nonce and Expiration are filled in by the client.
type OrderRequest struct {
	SubAccountID *int
	ProductID    uint32
	Quantity     decimal.Decimal
	Price        decimal.Decimal
	Side         types.OrderSide
	OrderType    types.OrderType
	TimeInForce  types.TimeInForce
	Nonce        uint64
	Expiration   uint64
}

// WithdrawRequest describes a withdrawal. Quantity is in units.
type WithdrawRequest struct {
	SubAccountID *int
	Quantity     decimal.Decimal
	// Asset is a contract name such as "USDB" or a hex address. Defaults to USDB.
	Asset string
	Nonce uint64
}

// CancelOrderRequest identifies one order to cancel.
type CancelOrderRequest struct {
	SubAccountID *int
	ProductID    uint32
	OrderID      string
}

// CancelAllOrdersRequest cancels every open order of a product.
type CancelAllOrdersRequest struct {
	SubAccountID *int
	ProductID    uint32
}

func (c *Client) resolveSubaccount(id *int) (uint8, error) {
	if id == nil {
		return c.subaccount, nil
	}
	if *id < 0 || *id > 255 {
		return 0, types.NewValidationError("subAccountId", "must be within [0, 255], got %d", *id)
	}
	return uint8(*id), nil
}

// DefaultExpiration returns nonce + 24h in the configured wire unit. Nonces
// too large for the result to fit in a uint64 are rejected.
func (c *Client) DefaultExpiration(nonce uint64) (uint64, error) {
	ttl := uint64(DefaultOrderTTL.Milliseconds())
	if nonce > math.MaxUint64-ttl {
		return 0, types.NewValidationError("nonce", "%d overflows the order expiration", nonce)
	}
	exp := nonce + ttl
	if c.expiration == ExpirationMicros {
		if exp > math.MaxUint64/1000 {
			return 0, types.NewValidationError("nonce", "%d overflows the order expiration in microseconds", nonce)
		}
		exp *= 1000
	}
	return exp, nil
}

// BuildLoginMessage returns the unsigned login statement for timestamp (ms).
func (c *Client) BuildLoginMessage(timestamp uint64) (*signing.TypedMessage, error) {
	s, err := c.requireSigner()
	if err != nil {
		return nil, err
	}
	if timestamp == 0 {
		timestamp = c.nowMillis()
	}
	return signing.NewMessage(signing.LoginSchema, map[string]interface{}{
		"account":   s.Address(),
		"message":   LoginMessageText,
		"timestamp": timestamp,
	})
}

// BuildOrderMessage validates req and returns the unsigned Order message.
func (c *Client) BuildOrderMessage(req OrderRequest) (*signing.TypedMessage, error) {
	s, err := c.requireSigner()
	if err != nil {
		return nil, err
	}
	sub, err := c.resolveSubaccount(req.SubAccountID)
	if err != nil {
		return nil, err
	}
	if !req.OrderType.Valid() {
		return nil, types.NewValidationError("orderType", "unknown order type %d", req.OrderType)
	}
	if !req.TimeInForce.Valid() {
		return nil, types.NewValidationError("timeInForce", "unknown time in force %d", req.TimeInForce)
	}
	if !req.Quantity.IsPositive() {
		return nil, types.NewValidationError("quantity", "must be positive, got %s", req.Quantity)
	}
	if req.OrderType.RequiresPrice() && !req.Price.IsPositive() {
		return nil, types.NewValidationError("price", "required for %s orders", req.OrderType)
	}
	quantity, err := ToWei("quantity", req.Quantity)
	if err != nil {
		return nil, err
	}
	price, err := ToWei("price", req.Price)
	if err != nil {
		return nil, err
	}

	nonce := req.Nonce
	if nonce == 0 {
		nonce = c.nowMillis()
	}
	expiration := req.Expiration
	if expiration == 0 {
		if expiration, err = c.DefaultExpiration(nonce); err != nil {
			return nil, err
		}
	}

	return signing.NewMessage(signing.OrderSchema, map[string]interface{}{
		"account":      s.Address(),
		"subAccountId": sub,
		"productId":    req.ProductID,
		"isBuy":        req.Side,
		"orderType":    req.OrderType,
		"timeInForce":  req.TimeInForce,
		"expiration":   expiration,
		"price":        price,
		"quantity":     quantity,
		"nonce":        nonce,
	})
}

// BuildWithdrawMessage validates req and returns the unsigned Withdraw message.
func (c *Client) BuildWithdrawMessage(req WithdrawRequest) (*signing.TypedMessage, error) {
	s, err := c.requireSigner()
	if err != nil {
		return nil, err
	}
	sub, err := c.resolveSubaccount(req.SubAccountID)
	if err != nil {
		return nil, err
	}
	if !req.Quantity.IsPositive() {
		return nil, types.NewValidationError("quantity", "must be positive, got %s", req.Quantity)
	}
	quantity, err := ToWei("quantity", req.Quantity)
	if err != nil {
		return nil, err
	}
	assetName := req.Asset
	if strings.TrimSpace(assetName) == "" {
		assetName = AssetUSDB
	}
	asset, err := c.env.ContractAddress(assetName)
	if err != nil {
		return nil, err
	}
	nonce := req.Nonce
	if nonce == 0 {
		nonce = c.nowMillis()
	}
	return signing.NewMessage(signing.WithdrawSchema, map[string]interface{}{
		"account":      s.Address(),
		"subAccountId": sub,
		"asset":        asset,
		"quantity":     quantity,
		"nonce":        nonce,
	})
}

// BuildCancelOrderMessage returns the unsigned CancelOrder message.
func (c *Client) BuildCancelOrderMessage(req CancelOrderRequest) (*signing.TypedMessage, error) {
	s, err := c.requireSigner()
	if err != nil {
		return nil, err
	}
	sub, err := c.resolveSubaccount(req.SubAccountID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.OrderID) == "" {
		return nil, types.NewValidationError("orderId", "is required")
	}
	return signing.NewMessage(signing.CancelOrderSchema, map[string]interface{}{
		"account":      s.Address(),
		"subAccountId": sub,
		"productId":    req.ProductID,
		"orderId":      req.OrderID,
	})
}

// BuildCancelOrdersMessage returns the unsigned CancelOrders message.
func (c *Client) BuildCancelOrdersMessage(req CancelAllOrdersRequest) (*signing.TypedMessage, error) {
	s, err := c.requireSigner()
	if err != nil {
		return nil, err
	}
	sub, err := c.resolveSubaccount(req.SubAccountID)
	if err != nil {
		return nil, err
	}
	return signing.NewMessage(signing.CancelOrdersSchema, map[string]interface{}{
		"account":      s.Address(),
		"subAccountId": sub,
		"productId":    req.ProductID,
	})
}

// BuildReferralMessage returns the unsigned Referral message for code.
func (c *Client) BuildReferralMessage(code string, signedAt uint64) (*signing.TypedMessage, error) {
	s, err := c.requireSigner()
	if err != nil {
		return nil, err
	}
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, types.NewValidationError("code", "is required")
	}
	if signedAt == 0 {
		signedAt = c.nowMillis()
	}
	return signing.NewMessage(signing.ReferralSchema, map[string]interface{}{
		"account":  s.Address(),
		"code":     code,
		"signedAt": signedAt,
	})
}

// Sign signs msg under the client's domain.
func (c *Client) Sign(msg *signing.TypedMessage) (*signing.SignedMessage, error) {
	s, err := c.requireSigner()
	if err != nil {
		return nil, err
	}
	return s.Sign(c.domain, msg)
}
