package client

import (
	"context"
	"strings"

	"github.com/hundredx/go100x/hundredx/types"
)

// Login signs the login statement and exchanges it for a session token.
// On failure the session stays anonymous.
func (c *Client) Login(ctx context.Context) error {
	msg, err := c.BuildLoginMessage(0)
	if err != nil {
		return err
	}
	signed, err := c.Sign(msg)
	if err != nil {
		return err
	}
	var resp types.LoginResponse
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointLogin, Body: signed.Payload()}, &resp); err != nil {
		return err
	}
	if strings.TrimSpace(resp.Value) == "" {
		return types.ErrAuthentication
	}
	c.session.authenticate(resp.Value)
	c.log.WithField("account", c.Address().Hex()).Info("session established")
	return nil
}

// Logout ends the session on the server and forgets the token.
func (c *Client) Logout(ctx context.Context) (types.Ack, error) {
	var ack types.Ack
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointLogout}, &ack); err != nil {
		return nil, err
	}
	c.session.reset()
	return ack, nil
}

// SessionStatus asks the exchange whether the current session token is valid.
func (c *Client) SessionStatus(ctx context.Context) (types.SessionStatus, error) {
	var status types.SessionStatus
	if err := c.dispatcher.Dispatch(ctx, Call{Endpoint: EndpointSessionStatus}, &status); err != nil {
		return nil, err
	}
	return status, nil
}

// IsLoggedIn reports whether the session holds a token.
func (c *Client) IsLoggedIn() bool {
	return c.session.State() == SessionAuthenticated
}

// AuthenticatedHeaders returns the session cookie header, failing before Login.
func (c *Client) AuthenticatedHeaders() (map[string]string, error) {
	return c.session.AuthenticatedHeaders()
}
