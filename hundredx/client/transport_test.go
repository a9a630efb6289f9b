package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	method      string
	path        string
	query       string
	contentType string
	cookie      string
	body        string
}

func captureServer(t *testing.T) (*httptest.Server, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		*got = capturedRequest{
			method:      r.Method,
			path:        r.URL.Path,
			query:       r.URL.RawQuery,
			contentType: r.Header.Get("Content-Type"),
			cookie:      r.Header.Get("Cookie"),
			body:        string(body),
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"success":true}`))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestRestyTransportDeleteSendsBody(t *testing.T) {
	srv, got := captureServer(t)
	tr := NewRestyTransport(srv.URL+"/", 0)

	resp, err := tr.Do(context.Background(), &HTTPRequest{
		Method:  http.MethodDelete,
		Path:    "/v1/order",
		Body:    []byte(`{"orderId":"1"}`),
		Headers: map[string]string{"Cookie": "connectedAddress=abc"},
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true}`, string(resp.Body))
	assert.Equal(t, srv.URL+"/v1/order", resp.URL)

	assert.Equal(t, http.MethodDelete, got.method)
	assert.Equal(t, "/v1/order", got.path)
	assert.Equal(t, `{"orderId":"1"}`, got.body)
	assert.Equal(t, "application/json", got.contentType)
	assert.Equal(t, "connectedAddress=abc", got.cookie)
}

func TestRestyTransportMethods(t *testing.T) {
	srv, got := captureServer(t)
	tr := NewRestyTransport(srv.URL, 0)
	ctx := context.Background()

	_, err := tr.Do(ctx, &HTTPRequest{
		Method: http.MethodGet,
		Path:   "/v1/depth",
		Query:  url.Values{"symbol": {"ethperp"}},
	})
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, got.method)
	assert.Equal(t, "symbol=ethperp", got.query)
	assert.Empty(t, got.body)

	_, err = tr.Do(ctx, &HTTPRequest{Method: http.MethodPut, Path: "/v1/cancel-and-replace", Body: []byte(`{}`)})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, got.method)
	assert.Equal(t, `{}`, got.body)

	_, err = tr.Do(ctx, &HTTPRequest{Method: http.MethodPatch, Path: "/v1/order"})
	assert.Error(t, err)
}
