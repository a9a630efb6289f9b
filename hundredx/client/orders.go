package client

import (
	"context"
	"strings"

	"github.com/hundredx/go100x/hundredx/signing"
	"github.com/hundredx/go100x/hundredx/types"
)

func (c *Client) signAndSend(ctx context.Context, endpoint string, msg *signing.TypedMessage, extra map[string]interface{}, out interface{}) error {
	signed, err := c.Sign(msg)
	if err != nil {
		return err
	}
	body := signed.Payload()
	for k, v := range extra {
		body[k] = v
	}
	return c.dispatcher.Dispatch(ctx, Call{Endpoint: endpoint, Body: body}, out)
}

// CreateOrder signs and submits a new order.
func (c *Client) CreateOrder(ctx context.Context, req OrderRequest) (*types.Order, error) {
	msg, err := c.BuildOrderMessage(req)
	if err != nil {
		return nil, err
	}
	var out types.Order
	if err := c.signAndSend(ctx, EndpointCreateOrder, msg, nil, &out); err != nil {
		return nil, err
	}
	c.log.WithField("order_id", out.ID).Debugf("order created: %s %s product=%d", req.Side, req.OrderType, req.ProductID)
	return &out, nil
}

// CancelAndReplaceOrder atomically cancels orderIDToCancel and places req.
func (c *Client) CancelAndReplaceOrder(ctx context.Context, req OrderRequest, orderIDToCancel string) (*types.Order, error) {
	if strings.TrimSpace(orderIDToCancel) == "" {
		return nil, types.NewValidationError("orderIdToCancel", "is required")
	}
	msg, err := c.BuildOrderMessage(req)
	if err != nil {
		return nil, err
	}
	var out types.Order
	extra := map[string]interface{}{"orderIdToCancel": orderIDToCancel}
	if err := c.signAndSend(ctx, EndpointReplaceOrder, msg, extra, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CancelOrder signs and submits the cancellation of one order.
func (c *Client) CancelOrder(ctx context.Context, req CancelOrderRequest) (types.Ack, error) {
	msg, err := c.BuildCancelOrderMessage(req)
	if err != nil {
		return nil, err
	}
	var out types.Ack
	if err := c.signAndSend(ctx, EndpointCancelOrder, msg, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CancelAllOrders cancels every open order of one product.
func (c *Client) CancelAllOrders(ctx context.Context, req CancelAllOrdersRequest) (types.Ack, error) {
	msg, err := c.BuildCancelOrdersMessage(req)
	if err != nil {
		return nil, err
	}
	var out types.Ack
	if err := c.signAndSend(ctx, EndpointCancelAll, msg, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Withdraw signs and submits a withdrawal from the subaccount.
func (c *Client) Withdraw(ctx context.Context, req WithdrawRequest) (types.Ack, error) {
	msg, err := c.BuildWithdrawMessage(req)
	if err != nil {
		return nil, err
	}
	var out types.Ack
	if err := c.signAndSend(ctx, EndpointWithdraw, msg, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
