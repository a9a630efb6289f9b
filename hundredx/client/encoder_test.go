package client

import (
	"math"
	"math/big"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hundredx/go100x/hundredx/signing"
	"github.com/hundredx/go100x/hundredx/types"
)

const goldenNonce = 1711722373

func goldenOrder() OrderRequest {
	return OrderRequest{
		ProductID:   1002,
		Quantity:    decimal.NewFromInt(1),
		Price:       decimal.NewFromInt(3000),
		Side:        types.OrderSideBuy,
		OrderType:   types.OrderTypeLimit,
		TimeInForce: types.TimeInForceGTC,
		Nonce:       goldenNonce,
	}
}

func signed(t *testing.T, c *Client, msg *signing.TypedMessage, err error) string {
	t.Helper()
	require.NoError(t, err)
	s, err := c.Sign(msg)
	require.NoError(t, err)
	return s.Signature
}

func TestGoldenSignatures(t *testing.T) {
	c := newTestClient(t, "")

	t.Run("withdraw", func(t *testing.T) {
		msg, err := c.BuildWithdrawMessage(WithdrawRequest{
			SubAccountID: SubaccountID(0),
			Quantity:     decimal.NewFromInt(100),
			Nonce:        1711722371,
		})
		assert.Equal(t,
			"0xc07d6966931d9133c8c948cd393b68e4ca31e788139cc030bba2d4ec706ef2ad0f361109e048b6e3e53242a39346d160ea1881b3177deb6519890c19aabe5fe41c",
			signed(t, c, msg, err))
	})

	t.Run("order with default micros expiration", func(t *testing.T) {
		msg, err := c.BuildOrderMessage(goldenOrder())
		require.NoError(t, err)
		assert.Equal(t, uint64(1798122373000), msg.Uint("expiration").Uint64())
		assert.Equal(t,
			"0x8d116bee3b95d4ce1db18b8de0046ed0b9dc72a25bfc9ee5b5b10aff81df5f01603e3374cdb0663275b4917e1d59763eb8254bda56e79a28962d5a6345fec3c11b",
			signed(t, c, msg, err))
	})

	t.Run("order with default millis expiration", func(t *testing.T) {
		mc := newTestClient(t, "", WithExpirationUnit(ExpirationMillis))
		msg, err := mc.BuildOrderMessage(goldenOrder())
		require.NoError(t, err)
		assert.Equal(t, uint64(1798122373), msg.Uint("expiration").Uint64())
		assert.Equal(t,
			"0x63925376c452b29dde2d6ebc87ce7ee9453b4877c7eb172275e51e92188da3d66f5cb62d762ce8f497b64198dd8a60521ab2eddd174c30b03794d107003c7bc21b",
			signed(t, mc, msg, err))
	})

	t.Run("login", func(t *testing.T) {
		msg, err := c.BuildLoginMessage(1711722375)
		assert.Equal(t,
			"0xf9d37581ef2c910651818390e5ae96df1b62a7db75e15abfa0232ea9027ef5853e1b40d69570a991843245c946d2c843a44024452853ae7eb02ce8fe08d822da1b",
			signed(t, c, msg, err))
	})

	t.Run("cancel order", func(t *testing.T) {
		msg, err := c.BuildCancelOrderMessage(CancelOrderRequest{ProductID: 1002, OrderID: "12345"})
		assert.Equal(t,
			"0x5f217ea3a79bb741f704b41e8df8b8749a2911f9008f9a2946d97dd1da32def62deba8614c9334fd39551356e6f033759611e0919ced9cfabe3f17cd4bb0c3261c",
			signed(t, c, msg, err))
	})
}

func TestBuildOrderMessageDefaults(t *testing.T) {
	c := newTestClient(t, "", WithClock(fixedClock(1700000000123)), WithSubaccount(3))

	req := goldenOrder()
	req.Nonce = 0
	msg, err := c.BuildOrderMessage(req)
	require.NoError(t, err)

	assert.Equal(t, uint64(1700000000123), msg.Uint("nonce").Uint64())
	assert.Equal(t, uint64(1700000000123+86400000)*1000, msg.Uint("expiration").Uint64())
	assert.Equal(t, uint64(3), msg.Uint("subAccountId").Uint64())
	assert.Equal(t, true, msg.Value("isBuy"))

	price, ok := new(big.Int).SetString("3000000000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, price, msg.Uint("price"))

	req.SubAccountID = SubaccountID(7)
	req.Expiration = 42
	msg, err = c.BuildOrderMessage(req)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), msg.Uint("subAccountId").Uint64())
	assert.Equal(t, uint64(42), msg.Uint("expiration").Uint64())
}

func TestDefaultExpirationOverflow(t *testing.T) {
	micros := newTestClient(t, "")
	millis := newTestClient(t, "", WithExpirationUnit(ExpirationMillis))
	ttl := uint64(DefaultOrderTTL.Milliseconds())

	exp, err := micros.DefaultExpiration(math.MaxUint64/1000 - ttl)
	require.NoError(t, err)
	assert.Equal(t, (math.MaxUint64/1000-ttl+ttl)*1000, exp)

	_, err = micros.DefaultExpiration(math.MaxUint64/1000 - ttl + 1)
	assert.True(t, types.IsValidation(err))

	exp, err = millis.DefaultExpiration(math.MaxUint64 - ttl)
	require.NoError(t, err)
	assert.Equal(t, uint64(math.MaxUint64), exp)

	_, err = millis.DefaultExpiration(math.MaxUint64 - ttl + 1)
	assert.True(t, types.IsValidation(err))

	req := goldenOrder()
	req.Nonce = 20_000_000_000_000_000
	_, err = micros.BuildOrderMessage(req)
	var verr *types.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "nonce", verr.Field)
}

func TestBuildOrderMessageValidation(t *testing.T) {
	c := newTestClient(t, "")

	tests := []struct {
		name   string
		mutate func(*OrderRequest)
		field  string
	}{
		{"subaccount too large", func(r *OrderRequest) { r.SubAccountID = SubaccountID(256) }, "subAccountId"},
		{"negative subaccount", func(r *OrderRequest) { r.SubAccountID = SubaccountID(-1) }, "subAccountId"},
		{"unknown order type", func(r *OrderRequest) { r.OrderType = types.OrderType(9) }, "orderType"},
		{"unknown time in force", func(r *OrderRequest) { r.TimeInForce = types.TimeInForce(7) }, "timeInForce"},
		{"zero quantity", func(r *OrderRequest) { r.Quantity = decimal.Zero }, "quantity"},
		{"limit without price", func(r *OrderRequest) { r.Price = decimal.Zero }, "price"},
		{"negative price on market", func(r *OrderRequest) {
			r.OrderType = types.OrderTypeMarket
			r.Price = decimal.NewFromInt(-1)
		}, "price"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := goldenOrder()
			tt.mutate(&req)
			_, err := c.BuildOrderMessage(req)
			require.Error(t, err)
			var verr *types.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestMarketOrderWithoutPrice(t *testing.T) {
	c := newTestClient(t, "")
	req := goldenOrder()
	req.OrderType = types.OrderTypeMarket
	req.TimeInForce = types.TimeInForceIOC
	req.Price = decimal.Zero

	msg, err := c.BuildOrderMessage(req)
	require.NoError(t, err)
	assert.Equal(t, int64(0), msg.Uint("price").Int64())
}

func TestBuildWithdrawMessageAsset(t *testing.T) {
	c := newTestClient(t, "")

	msg, err := c.BuildWithdrawMessage(WithdrawRequest{Quantity: decimal.NewFromInt(1), Nonce: 1})
	require.NoError(t, err)
	usdb, err := c.Environment().ContractAddress(AssetUSDB)
	require.NoError(t, err)
	assert.Equal(t, usdb, msg.Value("asset"))

	_, err = c.BuildWithdrawMessage(WithdrawRequest{Quantity: decimal.NewFromInt(1), Asset: "DOGE"})
	assert.True(t, types.IsValidation(err))
}

func TestSigningWithoutKey(t *testing.T) {
	c, err := NewClient(testnetEnv(t), nil)
	require.NoError(t, err)

	_, err = c.BuildLoginMessage(0)
	assert.ErrorIs(t, err, types.ErrMissingKey)
	_, err = c.BuildOrderMessage(goldenOrder())
	assert.ErrorIs(t, err, types.ErrMissingKey)
	_, err = c.BuildReferralMessage("CODE", 0)
	assert.ErrorIs(t, err, types.ErrMissingKey)
}

func TestBuildReferralMessage(t *testing.T) {
	c := newTestClient(t, "", WithClock(fixedClock(1711722400000)))

	msg, err := c.BuildReferralMessage("  FRIEND  ", 0)
	require.NoError(t, err)
	assert.Equal(t, "FRIEND", msg.Value("code"))
	assert.Equal(t, uint64(1711722400000), msg.Uint("signedAt").Uint64())

	_, err = c.BuildReferralMessage(" ", 0)
	assert.True(t, types.IsValidation(err))
}
