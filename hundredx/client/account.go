package client

import (
	"context"
	"net/url"
	"strconv"

	"github.com/hundredx/go100x/hundredx/types"
)

func (c *Client) accountQuery() url.Values {
	return url.Values{
		"account":      {c.Address().Hex()},
		"subAccountId": {strconv.Itoa(int(c.subaccount))},
	}
}

// GetSpotBalances returns the balances of the client's subaccount.
func (c *Client) GetSpotBalances(ctx context.Context) ([]types.Balance, error) {
	var out []types.Balance
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointBalances, Query: c.accountQuery()}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetPosition returns open positions, restricted to symbol when it is set.
func (c *Client) GetPosition(ctx context.Context, symbol string) ([]types.Position, error) {
	q := c.accountQuery()
	if symbol != "" {
		q.Set("symbol", symbol)
	}
	var out []types.Position
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointPositions, Query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetApprovedSigners returns the signers the account has approved.
func (c *Client) GetApprovedSigners(ctx context.Context) ([]types.ApprovedSigner, error) {
	var out []types.ApprovedSigner
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointApprovedSigners, Query: c.accountQuery()}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOpenOrders returns resting orders, restricted to symbol when it is set.
func (c *Client) GetOpenOrders(ctx context.Context, symbol string) ([]types.Order, error) {
	q := c.accountQuery()
	if symbol != "" {
		q.Set("symbol", symbol)
	}
	var out []types.Order
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointOpenOrders, Query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetOrders returns historical orders, optionally filtered by symbol and ids.
func (c *Client) GetOrders(ctx context.Context, symbol string, ids []string) ([]types.Order, error) {
	q := c.accountQuery()
	if symbol != "" {
		q.Set("symbol", symbol)
	}
	for _, id := range ids {
		q.Add("ids", id)
	}
	var out []types.Order
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointOrders, Query: q}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
