package client

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/hundredx/go100x/hundredx/types"
)

// ListProducts returns every listed product.
func (c *Client) ListProducts(ctx context.Context) ([]types.Product, error) {
	var out []types.Product
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointProducts}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetProduct returns one product by symbol.
func (c *Client) GetProduct(ctx context.Context, symbol string) (*types.Product, error) {
	if err := requireSymbol(symbol); err != nil {
		return nil, err
	}
	var out types.Product
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointProduct, PathArg: symbol}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProductID resolves a symbol to its product id. Lookups are cached for
// ProductCacheTTL.
func (c *Client) ProductID(ctx context.Context, symbol string) (uint32, error) {
	key := strings.ToLower(strings.TrimSpace(symbol))
	if p, ok := c.products.Get(key); ok {
		return uint32(p.ID), nil
	}
	p, err := c.GetProduct(ctx, symbol)
	if err != nil {
		return 0, err
	}
	c.products.Set(key, *p, 0)
	return uint32(p.ID), nil
}

// GetServerTime returns the exchange clock.
func (c *Client) GetServerTime(ctx context.Context) (*types.ServerTime, error) {
	var out types.ServerTime
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointServerTime}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTradeHistory returns recent trades of symbol. lookback <= 0 uses the server default.
func (c *Client) GetTradeHistory(ctx context.Context, symbol string, lookback int) ([]types.Trade, error) {
	if err := requireSymbol(symbol); err != nil {
		return nil, err
	}
	q := url.Values{"symbol": {symbol}}
	if lookback > 0 {
		q.Set("lookback", strconv.Itoa(lookback))
	}
	var out []types.Trade
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointTradeHistory, Query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CandleOptions filters the kline query. Zero values are omitted.
type CandleOptions struct {
	Interval  string
	StartTime int64
	EndTime   int64
	Limit     int
}

// GetCandlestick returns klines of symbol. Zero options are left to the server.
func (c *Client) GetCandlestick(ctx context.Context, symbol string, opts CandleOptions) ([]types.Candle, error) {
	if err := requireSymbol(symbol); err != nil {
		return nil, err
	}
	q := url.Values{"symbol": {symbol}}
	if opts.Interval != "" {
		q.Set("interval", opts.Interval)
	}
	if opts.StartTime > 0 {
		q.Set("start_time", strconv.FormatInt(opts.StartTime, 10))
	}
	if opts.EndTime > 0 {
		q.Set("end_time", strconv.FormatInt(opts.EndTime, 10))
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	var out []types.Candle
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointKlines, Query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetSymbol returns the 24h ticker of one symbol. The endpoint answers with a
// list; the single entry is unwrapped.
func (c *Client) GetSymbol(ctx context.Context, symbol string) (*types.Ticker, error) {
	if err := requireSymbol(symbol); err != nil {
		return nil, err
	}
	var out []types.Ticker
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointTicker, Query: url.Values{"symbol": {symbol}}}, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, errors.Wrapf(types.ErrNotFound, "no ticker for %q", symbol)
	}
	return &out[0], nil
}

// GetSymbols returns the tickers of every symbol, unchanged.
func (c *Client) GetSymbols(ctx context.Context) ([]types.Ticker, error) {
	var out []types.Ticker
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointTicker}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DepthOptions limits the levels returned by GetDepth.
type DepthOptions struct {
	Limit       int
	Granularity int
}

// GetDepth returns the order book of symbol.
func (c *Client) GetDepth(ctx context.Context, symbol string, opts DepthOptions) (*types.Depth, error) {
	if err := requireSymbol(symbol); err != nil {
		return nil, err
	}
	q := url.Values{"symbol": {symbol}}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Granularity > 0 {
		q.Set("granularity", strconv.Itoa(opts.Granularity))
	}
	var out types.Depth
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointDepth, Query: q}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func requireSymbol(symbol string) error {
	if strings.TrimSpace(symbol) == "" {
		return types.NewValidationError("symbol", "is required")
	}
	return nil
}
