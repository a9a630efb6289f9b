package client

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hundredx/go100x/hundredx/types"
	"github.com/hundredx/go100x/internal/mockexchange"
)

func TestNewClientValidatesEnvironment(t *testing.T) {
	env := testnetEnv(t)

	tests := []struct {
		name   string
		mutate func(*Environment)
		key    string
	}{
		{"rest url", func(e *Environment) { e.RestURL = "" }, "rest_url"},
		{"websocket url", func(e *Environment) { e.WebsocketURL = " " }, "websocket_url"},
		{"chain id", func(e *Environment) { e.ChainID = 0 }, "chain_id"},
		{"verifying contract", func(e *Environment) { e.VerifyingContract = common.Address{} }, "verifying_contract"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := env.clone()
			tt.mutate(&e)
			_, err := NewClient(e, nil)
			var cerr *types.ConfigError
			require.ErrorAs(t, err, &cerr)
			assert.Equal(t, tt.key, cerr.Key)
		})
	}

	_, err := EnvironmentFor("mainnet")
	assert.Error(t, err)
}

func TestNewClientFromHex(t *testing.T) {
	c, err := NewClientFromHex(types.EnvironmentProd, testPrivateKey, WithSubaccount(2))
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddress), c.Address())
	assert.Equal(t, uint8(2), c.Subaccount())
	assert.Equal(t, int64(81457), c.Domain().ChainID)
	assert.Equal(t, "https://api.100x.finance", c.Environment().URL(types.ApiTypeREST))
	assert.Equal(t, SessionAnonymous, c.Session().State())

	_, err = NewClientFromHex(types.EnvironmentProd, "")
	assert.ErrorIs(t, err, types.ErrMissingKey)
}

func TestEnvironmentIsolation(t *testing.T) {
	a, err := EnvironmentFor(types.EnvironmentTestnet)
	require.NoError(t, err)
	a.Contracts[AssetUSDB] = common.Address{}

	b, err := EnvironmentFor(types.EnvironmentTestnet)
	require.NoError(t, err)
	assert.NotEqual(t, common.Address{}, b.Contracts[AssetUSDB])

	usdb, err := b.ContractAddress("usdb")
	require.NoError(t, err)
	assert.Equal(t, b.Contracts[AssetUSDB], usdb)

	raw, err := b.ContractAddress(testAddress)
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(testAddress), raw)
}

func TestMarketData(t *testing.T) {
	_, c := startMock(t, mockexchange.Config{})
	ctx := context.Background()

	products, err := c.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)

	p, err := c.GetProduct(ctx, "ethperp")
	require.NoError(t, err)
	assert.Equal(t, int64(1002), p.ID)
	assert.True(t, WeiToDecimal(p.MarkPrice).Equal(decimal.NewFromInt(3000)))

	_, err = c.GetProduct(ctx, "dogeperp")
	assert.Equal(t, http.StatusNotFound, types.StatusCode(err))

	_, err = c.GetProduct(ctx, "")
	assert.True(t, types.IsValidation(err))

	st, err := c.GetServerTime(ctx)
	require.NoError(t, err)
	assert.Positive(t, st.ServerTime)

	trades, err := c.GetTradeHistory(ctx, "ethperp", 1)
	require.NoError(t, err)
	assert.Len(t, trades, 1)

	candles, err := c.GetCandlestick(ctx, "ethperp", CandleOptions{Interval: "1m", Limit: 10})
	require.NoError(t, err)
	assert.Len(t, candles, 2)

	depth, err := c.GetDepth(ctx, "ethperp", DepthOptions{Limit: 1, Granularity: 2})
	require.NoError(t, err)
	require.Len(t, depth.Bids, 1)
	require.Len(t, depth.Asks, 1)
	assert.True(t, WeiToDecimal(depth.Bids[0].Price()).Equal(decimal.NewFromInt(2999)))
	assert.True(t, WeiToDecimal(depth.Asks[0].Quantity()).Equal(decimal.NewFromInt(2)))
}

func TestGetSymbolUnwrapsSingleTicker(t *testing.T) {
	mock, c := startMock(t, mockexchange.Config{})
	ctx := context.Background()

	ticker, err := c.GetSymbol(ctx, "ethperp")
	require.NoError(t, err)
	assert.Equal(t, "ethperp", ticker.ProductSymbol)
	assert.Equal(t, int64(1002), ticker.ProductID)

	all, err := c.GetSymbols(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = c.GetSymbol(ctx, "dogeperp")
	assert.ErrorIs(t, err, types.ErrNotFound)
	assert.False(t, types.IsValidation(err))

	reqs := mock.Requests()
	assert.Equal(t, "symbol=ethperp", reqs[0].Query)
	assert.Empty(t, reqs[1].Query)
}

func TestProductIDIsCached(t *testing.T) {
	mock, c := startMock(t, mockexchange.Config{})
	ctx := context.Background()

	id, err := c.ProductID(ctx, "ethperp")
	require.NoError(t, err)
	assert.Equal(t, uint32(1002), id)

	id, err = c.ProductID(ctx, " ETHPERP ")
	require.NoError(t, err)
	assert.Equal(t, uint32(1002), id)
	assert.Len(t, mock.Requests(), 1)

	_, err = c.ProductID(ctx, "dogeperp")
	assert.Equal(t, http.StatusNotFound, types.StatusCode(err))
}

func TestLoginLifecycle(t *testing.T) {
	mock, c := startMock(t, mockexchange.Config{
		Balances: []types.Balance{
			{Account: testAddress, Asset: "USDB", Quantity: decimal.RequireFromString("1000000000000000000000")},
			{Account: "0x0000000000000000000000000000000000000001", Asset: "USDB"},
		},
	})
	ctx := context.Background()

	loggedIn(t, c)
	token := c.Session().Token()
	require.NotEmpty(t, token)

	headers, err := c.AuthenticatedHeaders()
	require.NoError(t, err)
	assert.Equal(t, "connectedAddress="+token, headers["cookie"])

	status, err := c.SessionStatus(ctx)
	require.NoError(t, err)
	account, _ := status["account"].(string)
	assert.Equal(t, common.HexToAddress(testAddress), common.HexToAddress(account))

	balances, err := c.GetSpotBalances(ctx)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.True(t, WeiToDecimal(balances[0].Quantity).Equal(decimal.NewFromInt(1000)))

	reqs := mock.Requests()
	last := reqs[len(reqs)-1]
	assert.Equal(t, "/v1/balances", last.Path)
	assert.Equal(t, "connectedAddress="+token, last.Cookie)
	assert.Contains(t, last.Query, "subAccountId=0")

	_, err = c.Logout(ctx)
	require.NoError(t, err)
	assert.False(t, c.IsLoggedIn())

	_, err = c.GetSpotBalances(ctx)
	assert.ErrorIs(t, err, types.ErrNotLoggedIn)
}

func TestLoginFailureLeavesSessionAnonymous(t *testing.T) {
	mock, c := startMock(t, mockexchange.Config{})
	mock.FailNext("/v1/session/login", http.StatusUnauthorized, `{"error":"bad signature"}`)

	err := c.Login(context.Background())
	assert.Equal(t, http.StatusUnauthorized, types.StatusCode(err))
	assert.False(t, c.IsLoggedIn())

	mock.FailNext("/v1/session/login", http.StatusOK, `{"value":""}`)
	err = c.Login(context.Background())
	assert.ErrorIs(t, err, types.ErrAuthentication)
	assert.False(t, c.IsLoggedIn())
}

func TestStaleSessionIsRejectedByServer(t *testing.T) {
	_, c := startMock(t, mockexchange.Config{})
	c.Session().authenticate("not-a-real-token")

	_, err := c.GetOpenOrders(context.Background(), "")
	assert.Equal(t, http.StatusUnauthorized, types.StatusCode(err))
}

func TestOrderLifecycle(t *testing.T) {
	mock, c := startMock(t, mockexchange.Config{})
	ctx := context.Background()
	loggedIn(t, c)

	first, err := c.CreateOrder(ctx, goldenOrder())
	require.NoError(t, err)
	require.NotEmpty(t, first.ID)
	assert.Equal(t, "OPEN", first.Status)
	assert.Equal(t, types.OrderSideBuy, first.Side())
	assert.Equal(t, "ethperp", first.ProductSymbol)

	reqs := mock.Requests()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(reqs[len(reqs)-1].Body, &body))
	assert.Equal(t, "3000000000000000000000", body["price"])
	assert.Equal(t, "1000000000000000000", body["quantity"])
	assert.Equal(t, c.Address().Hex(), body["account"])
	assert.NotEmpty(t, body["signature"])

	replace := goldenOrder()
	replace.Price = decimal.NewFromInt(2990)
	replace.Nonce = goldenNonce + 1
	second, err := c.CancelAndReplaceOrder(ctx, replace, first.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = c.CancelAndReplaceOrder(ctx, replace, "999999")
	assert.Equal(t, http.StatusNotFound, types.StatusCode(err))
	_, err = c.CancelAndReplaceOrder(ctx, replace, "")
	assert.True(t, types.IsValidation(err))

	third := goldenOrder()
	third.Nonce = goldenNonce + 2
	_, err = c.CreateOrder(ctx, third)
	require.NoError(t, err)

	open, err := c.GetOpenOrders(ctx, "ethperp")
	require.NoError(t, err)
	assert.Len(t, open, 2)

	history, err := c.GetOrders(ctx, "", []string{first.ID})
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "CANCELLED", history[0].Status)

	ack, err := c.CancelOrder(ctx, CancelOrderRequest{ProductID: 1002, OrderID: second.ID})
	require.NoError(t, err)
	assert.Equal(t, true, ack["success"])

	_, err = c.CancelOrder(ctx, CancelOrderRequest{ProductID: 1002, OrderID: second.ID})
	assert.Equal(t, http.StatusNotFound, types.StatusCode(err))

	ack, err = c.CancelAllOrders(ctx, CancelAllOrdersRequest{ProductID: 1002})
	require.NoError(t, err)
	assert.Equal(t, float64(1), ack["cancelled"])

	open, err = c.GetOpenOrders(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, open)
}

func TestCreateOrderTransportError(t *testing.T) {
	mock, c := startMock(t, mockexchange.Config{})
	loggedIn(t, c)
	mock.FailNext("/v1/order", http.StatusInternalServerError, `{"error":"matching engine down"}`)

	_, err := c.CreateOrder(context.Background(), goldenOrder())
	var terr *types.TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusInternalServerError, terr.StatusCode)
	assert.Equal(t, http.MethodPost, terr.Method)
	assert.Contains(t, terr.URL, "/v1/order")
	assert.Contains(t, terr.Body, "matching engine down")
	assert.Contains(t, terr.Payload, "signature")
}

func TestExpirationUnits(t *testing.T) {
	const now = 1711722371123

	tests := []struct {
		name   string
		scale  uint64
		unit   ExpirationUnit
		accept bool
	}{
		{"micros against micros server", 1000, ExpirationMicros, true},
		{"millis against millis server", 1, ExpirationMillis, true},
		{"millis against micros server", 1000, ExpirationMillis, false},
		{"micros against millis server", 1, ExpirationMicros, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, c := startMock(t, mockexchange.Config{ExpirationScale: tt.scale},
				WithClock(fixedClock(now)), WithExpirationUnit(tt.unit))
			loggedIn(t, c)

			req := goldenOrder()
			req.Nonce = 0
			_, err := c.CreateOrder(context.Background(), req)
			if tt.accept {
				assert.NoError(t, err)
			} else {
				assert.Equal(t, http.StatusBadRequest, types.StatusCode(err))
			}
		})
	}
}

func TestWithdraw(t *testing.T) {
	_, c := startMock(t, mockexchange.Config{})
	loggedIn(t, c)

	ack, err := c.Withdraw(context.Background(), WithdrawRequest{Quantity: decimal.RequireFromString("4000.73")})
	require.NoError(t, err)
	assert.Equal(t, "4000730000000000000000", ack["quantity"])
}

func TestAddReferralCode(t *testing.T) {
	_, c := startMock(t, mockexchange.Config{})
	ctx := context.Background()
	loggedIn(t, c)

	ack, err := c.AddReferralCode(ctx, "FRIEND")
	require.NoError(t, err)
	assert.Equal(t, "FRIEND", ack["code"])

	_, err = c.AddReferralCode(ctx, "OTHER")
	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrAlreadyReferred)
	assert.Equal(t, http.StatusBadRequest, types.StatusCode(err))
}

func TestReferralOtherFailuresPassThrough(t *testing.T) {
	mock, c := startMock(t, mockexchange.Config{})
	loggedIn(t, c)
	mock.FailNext("/v1/referral/add-referee", http.StatusBadRequest, `{"error":"unknown code"}`)

	_, err := c.AddReferralCode(context.Background(), "NOPE")
	require.Error(t, err)
	assert.False(t, errors.Is(err, types.ErrAlreadyReferred))
	assert.Equal(t, http.StatusBadRequest, types.StatusCode(err))
}

func TestAsyncClient(t *testing.T) {
	_, c := startMock(t, mockexchange.Config{})
	ac := NewAsyncClient(c)
	ctx := context.Background()

	_, err := ac.Login(ctx).Await(ctx)
	require.NoError(t, err)

	tickers := ac.GetSymbols(ctx)
	order := ac.CreateOrder(ctx, goldenOrder())

	all, err := tickers.Await(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	placed, err := order.Await(ctx)
	require.NoError(t, err)
	assert.Equal(t, "OPEN", placed.Status)

	select {
	case <-order.Done():
	default:
		t.Fatal("Done must be closed after Await returned the result")
	}
}

func TestAsyncAwaitHonoursContext(t *testing.T) {
	f := goFuture(context.Background(), func(ctx context.Context) (int, error) {
		time.Sleep(200 * time.Millisecond)
		return 1, nil
	})
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := f.Await(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	v, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestAsyncPrivateCallBeforeLogin(t *testing.T) {
	tr := &stubTransport{resp: &HTTPResponse{StatusCode: http.StatusOK}}
	ac := NewAsyncClient(newTestClient(t, "", WithTransport(tr)))
	ctx := context.Background()

	_, err := ac.GetSpotBalances(ctx).Await(ctx)
	assert.ErrorIs(t, err, types.ErrNotLoggedIn)
	assert.Zero(t, tr.calls())
}
