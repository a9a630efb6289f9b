package client

import (
	"context"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hundredx/go100x/hundredx/signing"
	"github.com/hundredx/go100x/hundredx/types"
	"github.com/hundredx/go100x/internal/mockexchange"
)

const (
	testPrivateKey = "0x8f58e47491ac5fe6897216208fe1fed316d6ee89de6c901bfc521c2178ebe6dd"
	testAddress    = "0xEEF7faba495b4875d67E3ED8FB3a32433d3DB3b3"
)

// fixedClock returns a clock stuck at ms milliseconds since the epoch.
func fixedClock(ms int64) func() time.Time {
	return func() time.Time { return time.UnixMilli(ms) }
}

func testnetEnv(t *testing.T) Environment {
	t.Helper()
	env, err := EnvironmentFor(types.EnvironmentTestnet)
	require.NoError(t, err)
	return env
}

func newTestClient(t *testing.T, restURL string, opts ...Option) *Client {
	t.Helper()
	env := testnetEnv(t)
	if restURL != "" {
		env.RestURL = restURL
	}
	key, err := signing.PrivateKeyFromHex(testPrivateKey)
	require.NoError(t, err)
	c, err := NewClient(env, key, opts...)
	require.NoError(t, err)
	return c
}

// startMock runs the mock exchange for the testnet domain and returns a
// client pointed at it.
func startMock(t *testing.T, cfg mockexchange.Config, opts ...Option) (*mockexchange.Server, *Client) {
	t.Helper()
	cfg.Domain = testnetEnv(t).Domain()
	mock := mockexchange.New(cfg)
	srv := httptest.NewServer(mock.Handler())
	t.Cleanup(srv.Close)
	return mock, newTestClient(t, srv.URL, opts...)
}

func loggedIn(t *testing.T, c *Client) {
	t.Helper()
	require.NoError(t, c.Login(context.Background()))
	require.True(t, c.IsLoggedIn())
}

// stubTransport answers every request with the same response.
type stubTransport struct {
	mu       sync.Mutex
	requests []*HTTPRequest
	resp     *HTTPResponse
	err      error
}

func (s *stubTransport) Do(_ context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	resp := *s.resp
	if resp.URL == "" {
		resp.URL = "https://api.test" + req.Path
	}
	return &resp, nil
}

func (s *stubTransport) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
