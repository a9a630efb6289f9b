package client

import (
	"context"

	"github.com/hundredx/go100x/hundredx/types"
)

// Future is the pending result of a call started by AsyncClient.
type Future[T any] struct {
	done chan struct{}
	val  T
	err  error
}

func goFuture[T any](ctx context.Context, fn func(context.Context) (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		defer close(f.done)
		f.val, f.err = fn(ctx)
	}()
	return f
}

// Done is closed once the result is available.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Await blocks until the call finishes or ctx is done. Cancelling ctx here
// does not cancel the call; the context given when it was started does.
func (f *Future[T]) Await(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// AsyncClient starts each call in its own goroutine and hands back a Future.
// It shares encoding, signing, session and dispatch with the wrapped Client.
type AsyncClient struct {
	*Client
}

// NewAsyncClient wraps c. Both share one session.
func NewAsyncClient(c *Client) *AsyncClient {
	return &AsyncClient{Client: c}
}

// Login runs Client.Login in the background.
func (a *AsyncClient) Login(ctx context.Context) *Future[struct{}] {
	return goFuture(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, a.Client.Login(ctx)
	})
}

// Logout runs Client.Logout in the background.
func (a *AsyncClient) Logout(ctx context.Context) *Future[types.Ack] {
	return goFuture(ctx, a.Client.Logout)
}

// SessionStatus runs Client.SessionStatus in the background.
func (a *AsyncClient) SessionStatus(ctx context.Context) *Future[types.SessionStatus] {
	return goFuture(ctx, a.Client.SessionStatus)
}

// ListProducts runs Client.ListProducts in the background.
func (a *AsyncClient) ListProducts(ctx context.Context) *Future[[]types.Product] {
	return goFuture(ctx, a.Client.ListProducts)
}

// GetProduct runs Client.GetProduct in the background.
func (a *AsyncClient) GetProduct(ctx context.Context, symbol string) *Future[*types.Product] {
	return goFuture(ctx, func(ctx context.Context) (*types.Product, error) {
		return a.Client.GetProduct(ctx, symbol)
	})
}

// GetServerTime runs Client.GetServerTime in the background.
func (a *AsyncClient) GetServerTime(ctx context.Context) *Future[*types.ServerTime] {
	return goFuture(ctx, a.Client.GetServerTime)
}

// GetTradeHistory runs Client.GetTradeHistory in the background.
func (a *AsyncClient) GetTradeHistory(ctx context.Context, symbol string, lookback int) *Future[[]types.Trade] {
	return goFuture(ctx, func(ctx context.Context) ([]types.Trade, error) {
		return a.Client.GetTradeHistory(ctx, symbol, lookback)
	})
}

// GetCandlestick runs Client.GetCandlestick in the background.
func (a *AsyncClient) GetCandlestick(ctx context.Context, symbol string, opts CandleOptions) *Future[[]types.Candle] {
	return goFuture(ctx, func(ctx context.Context) ([]types.Candle, error) {
		return a.Client.GetCandlestick(ctx, symbol, opts)
	})
}

// GetSymbol runs Client.GetSymbol in the background.
func (a *AsyncClient) GetSymbol(ctx context.Context, symbol string) *Future[*types.Ticker] {
	return goFuture(ctx, func(ctx context.Context) (*types.Ticker, error) {
		return a.Client.GetSymbol(ctx, symbol)
	})
}

// GetSymbols runs Client.GetSymbols in the background.
func (a *AsyncClient) GetSymbols(ctx context.Context) *Future[[]types.Ticker] {
	return goFuture(ctx, a.Client.GetSymbols)
}

// GetDepth runs Client.GetDepth in the background.
func (a *AsyncClient) GetDepth(ctx context.Context, symbol string, opts DepthOptions) *Future[*types.Depth] {
	return goFuture(ctx, func(ctx context.Context) (*types.Depth, error) {
		return a.Client.GetDepth(ctx, symbol, opts)
	})
}

// GetSpotBalances runs Client.GetSpotBalances in the background.
func (a *AsyncClient) GetSpotBalances(ctx context.Context) *Future[[]types.Balance] {
	return goFuture(ctx, a.Client.GetSpotBalances)
}

// GetPosition runs Client.GetPosition in the background.
func (a *AsyncClient) GetPosition(ctx context.Context, symbol string) *Future[[]types.Position] {
	return goFuture(ctx, func(ctx context.Context) ([]types.Position, error) {
		return a.Client.GetPosition(ctx, symbol)
	})
}

// GetApprovedSigners runs Client.GetApprovedSigners in the background.
func (a *AsyncClient) GetApprovedSigners(ctx context.Context) *Future[[]types.ApprovedSigner] {
	return goFuture(ctx, a.Client.GetApprovedSigners)
}

// GetOpenOrders runs Client.GetOpenOrders in the background.
func (a *AsyncClient) GetOpenOrders(ctx context.Context, symbol string) *Future[[]types.Order] {
	return goFuture(ctx, func(ctx context.Context) ([]types.Order, error) {
		return a.Client.GetOpenOrders(ctx, symbol)
	})
}

// GetOrders runs Client.GetOrders in the background.
func (a *AsyncClient) GetOrders(ctx context.Context, symbol string, ids []string) *Future[[]types.Order] {
	return goFuture(ctx, func(ctx context.Context) ([]types.Order, error) {
		return a.Client.GetOrders(ctx, symbol, ids)
	})
}

// CreateOrder runs Client.CreateOrder in the background.
func (a *AsyncClient) CreateOrder(ctx context.Context, req OrderRequest) *Future[*types.Order] {
	return goFuture(ctx, func(ctx context.Context) (*types.Order, error) {
		return a.Client.CreateOrder(ctx, req)
	})
}

// CancelAndReplaceOrder runs Client.CancelAndReplaceOrder in the background.
func (a *AsyncClient) CancelAndReplaceOrder(ctx context.Context, req OrderRequest, orderIDToCancel string) *Future[*types.Order] {
	return goFuture(ctx, func(ctx context.Context) (*types.Order, error) {
		return a.Client.CancelAndReplaceOrder(ctx, req, orderIDToCancel)
	})
}

// CancelOrder runs Client.CancelOrder in the background.
func (a *AsyncClient) CancelOrder(ctx context.Context, req CancelOrderRequest) *Future[types.Ack] {
	return goFuture(ctx, func(ctx context.Context) (types.Ack, error) {
		return a.Client.CancelOrder(ctx, req)
	})
}

// CancelAllOrders runs Client.CancelAllOrders in the background.
func (a *AsyncClient) CancelAllOrders(ctx context.Context, req CancelAllOrdersRequest) *Future[types.Ack] {
	return goFuture(ctx, func(ctx context.Context) (types.Ack, error) {
		return a.Client.CancelAllOrders(ctx, req)
	})
}

// Withdraw runs Client.Withdraw in the background.
func (a *AsyncClient) Withdraw(ctx context.Context, req WithdrawRequest) *Future[types.Ack] {
	return goFuture(ctx, func(ctx context.Context) (types.Ack, error) {
		return a.Client.Withdraw(ctx, req)
	})
}

// AddReferralCode runs Client.AddReferralCode in the background.
func (a *AsyncClient) AddReferralCode(ctx context.Context, code string) *Future[types.Ack] {
	return goFuture(ctx, func(ctx context.Context) (types.Ack, error) {
		return a.Client.AddReferralCode(ctx, code)
	})
}

// Deposit runs Client.Deposit in the background.
func (a *AsyncClient) Deposit(ctx context.Context, req DepositRequest) *Future[bool] {
	return goFuture(ctx, func(ctx context.Context) (bool, error) {
		return a.Client.Deposit(ctx, req)
	})
}
