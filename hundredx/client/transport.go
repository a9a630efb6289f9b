package client

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"
)

// HTTPRequest is one outgoing call. Body is sent as JSON; Query only on GET.
type HTTPRequest struct {
	Method  string
	Path    string
	Query   url.Values
	Body    []byte
	Headers map[string]string
}

// HTTPResponse is the raw outcome of a call that reached the server.
type HTTPResponse struct {
	StatusCode int
	Body       []byte
	URL        string
}

// Transport performs HTTP calls. The resty implementation is the default;
// tests substitute their own.
type Transport interface {
	Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error)
}

// DefaultTimeout bounds a single HTTP exchange.
const DefaultTimeout = 30 * time.Second

// RestyTransport sends requests through a resty client bound to one base URL.
type RestyTransport struct {
	client *resty.Client
}

// NewRestyTransport returns a transport without automatic retries.
func NewRestyTransport(baseURL string, timeout time.Duration) *RestyTransport {
	baseURL = strings.TrimSuffix(baseURL, "/")
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", "go100x")
	return &RestyTransport{client: c}
}

// BaseURL returns the URL every request path is resolved against.
func (t *RestyTransport) BaseURL() string { return t.client.BaseURL }

// Do sends req and returns the raw response. Only failures to reach the
// server are errors; status codes are left to the dispatcher.
func (t *RestyTransport) Do(ctx context.Context, req *HTTPRequest) (*HTTPResponse, error) {
	r := t.client.R().SetContext(ctx)
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	if len(req.Query) > 0 {
		r.SetQueryParamsFromValues(req.Query)
	}
	if req.Body != nil {
		r.SetHeader("Content-Type", "application/json")
		r.SetBody(req.Body)
	}

	var (
		resp *resty.Response
		err  error
	)
	switch strings.ToUpper(req.Method) {
	case http.MethodGet:
		resp, err = r.Get(req.Path)
	case http.MethodPost:
		resp, err = r.Post(req.Path)
	case http.MethodDelete:
		resp, err = r.Delete(req.Path)
	case http.MethodPut:
		resp, err = r.Put(req.Path)
	default:
		return nil, errors.Errorf("unsupported method: %s", req.Method)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "%s %s", req.Method, req.Path)
	}
	return &HTTPResponse{
		StatusCode: resp.StatusCode(),
		Body:       resp.Body(),
		URL:        resp.Request.URL,
	}, nil
}
