package client

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/hundredx/go100x/hundredx/types"
	"github.com/hundredx/go100x/pkg/ratelimit"
)

var dispatchLog = logrus.WithField("component", "hundredx.dispatcher")

// stringFields are always sent as base-10 strings.
var stringFields = []string{"price", "quantity"}

// Call is one logical request against a named endpoint.
type Call struct {
	Endpoint string
	PathArg  string
	Query    url.Values
	Body     map[string]interface{}
}

// Dispatcher turns Calls into HTTP requests and decodes the replies.
type Dispatcher struct {
	transport Transport
	session   *Session
	limiter   *ratelimit.Manager
	log       *logrus.Entry
}

// NewDispatcher returns a dispatcher over transport. limiter may be nil.
func NewDispatcher(transport Transport, session *Session, limiter *ratelimit.Manager) *Dispatcher {
	if session == nil {
		session = &Session{}
	}
	return &Dispatcher{transport: transport, session: session, limiter: limiter, log: dispatchLog}
}

// Dispatch validates the call, sends it and decodes a 200 body into out
// (skipped when out is nil). Any other status yields a *types.TransportError.
func (d *Dispatcher) Dispatch(ctx context.Context, call Call, out interface{}) error {
	raw, err := d.DispatchRaw(ctx, call)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "decode %s response", call.Endpoint)
	}
	return nil
}

// DispatchRaw is Dispatch without decoding.
func (d *Dispatcher) DispatchRaw(ctx context.Context, call Call) (json.RawMessage, error) {
	ep, ok := LookupEndpoint(call.Endpoint)
	if !ok {
		return nil, types.NewValidationError("endpoint", "unknown endpoint %q", call.Endpoint)
	}

	var headers map[string]string
	if ep.Private {
		h, err := d.session.AuthenticatedHeaders()
		if err != nil {
			return nil, err
		}
		headers = h
	}

	path := ep.Path
	if call.PathArg != "" {
		path = fmt.Sprintf(ep.Path, url.PathEscape(call.PathArg))
	}

	req := &HTTPRequest{Method: ep.Method, Path: path, Headers: headers}
	var payload string
	if ep.Method == http.MethodGet {
		req.Query = call.Query
		payload = call.Query.Encode()
	} else {
		body, err := json.Marshal(ShapePayload(call.Body))
		if err != nil {
			return nil, errors.Wrapf(err, "encode %s payload", ep.Name)
		}
		req.Body = body
		payload = string(body)
	}

	if d.limiter != nil {
		if err := d.limiter.Wait(ctx, ep.Name); err != nil {
			return nil, errors.Wrapf(err, "rate limit %s", ep.Name)
		}
	}

	reqID := uuid.NewString()
	start := time.Now()
	resp, err := d.transport.Do(ctx, req)
	if err != nil {
		d.log.WithFields(logrus.Fields{"request_id": reqID, "endpoint": ep.Name}).WithError(err).Warn("request failed")
		return nil, err
	}
	d.log.WithFields(logrus.Fields{
		"request_id": reqID,
		"method":     ep.Method,
		"url":        resp.URL,
		"status":     resp.StatusCode,
		"elapsed":    time.Since(start),
	}).Debug("request done")

	if resp.StatusCode != http.StatusOK {
		return nil, &types.TransportError{
			Method:     ep.Method,
			URL:        resp.URL,
			StatusCode: resp.StatusCode,
			Body:       string(resp.Body),
			Payload:    payload,
		}
	}
	return resp.Body, nil
}

// ShapePayload copies body with price and quantity rendered as base-10 strings.
func ShapePayload(body map[string]interface{}) map[string]interface{} {
	if body == nil {
		return map[string]interface{}{}
	}
	out := make(map[string]interface{}, len(body))
	for k, v := range body {
		out[k] = v
	}
	for _, k := range stringFields {
		if v, ok := out[k]; ok {
			out[k] = decimalString(v)
		}
	}
	return out
}

func decimalString(v interface{}) interface{} {
	switch t := v.(type) {
	case *big.Int:
		return t.String()
	case decimal.Decimal:
		return t.String()
	case int, int32, int64, uint, uint8, uint32, uint64:
		return fmt.Sprintf("%d", t)
	case json.Number:
		return t.String()
	}
	return v
}
