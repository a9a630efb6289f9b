// Package stream subscribes to the exchange's websocket market streams.
package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("component", "hundredx.stream")

const (
	defaultHandshakeTimeout = 10 * time.Second
	defaultPingInterval     = 30 * time.Second
	defaultBufferSize       = 256
	writeTimeout            = 5 * time.Second
)

// ErrClosed is returned by calls on a closed client.
var ErrClosed = errors.New("hundredx stream: closed")

// Config configures Dial. Only URL is required.
type Config struct {
	// URL is the environment's websocket base URL; http(s) schemes are
	// rewritten to ws(s).
	URL              string
	HandshakeTimeout time.Duration
	PingInterval     time.Duration
	BufferSize       int
	Header           http.Header
}

// Message is one frame received from the server. Data holds the payload of
// combined stream frames; otherwise it is the whole frame.
type Message struct {
	Stream string
	Data   json.RawMessage
	Raw    []byte
}

// Decode unmarshals Data into v.
func (m Message) Decode(v interface{}) error {
	return json.Unmarshal(m.Data, v)
}

type request struct {
	ID     uint64   `json:"id"`
	Method string   `json:"method"`
	Params []string `json:"params"`
}

type envelope struct {
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
}

// Client is a single websocket connection. It does not reconnect: when the
// connection drops the Messages channel is closed and the error is sent on
// Errors.
type Client struct {
	conn    *websocket.Conn
	writeMu sync.Mutex

	subMu         sync.RWMutex
	subscriptions map[string]bool
	nextID        uint64

	msgCh  chan Message
	errCh  chan error
	stopCh chan struct{}
	doneCh chan struct{}

	closeOnce sync.Once
	pingEvery time.Duration
}

// WebsocketURL rewrites an http(s) base URL to ws(s).
func WebsocketURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", errors.Wrapf(err, "parse stream url %q", raw)
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	case "http":
		u.Scheme = "ws"
	case "ws", "wss":
	default:
		return "", errors.Errorf("unsupported stream url scheme %q", u.Scheme)
	}
	return u.String(), nil
}

// Dial connects and starts the read and ping loops.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	target, err := WebsocketURL(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = defaultHandshakeTimeout
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = defaultPingInterval
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = defaultBufferSize
	}
	header := cfg.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	header.Set("User-Agent", "go100x")

	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: cfg.HandshakeTimeout,
	}
	conn, _, err := dialer.DialContext(ctx, target, header)
	if err != nil {
		return nil, errors.Wrapf(err, "dial %s", target)
	}

	c := &Client{
		conn:          conn,
		subscriptions: make(map[string]bool),
		msgCh:         make(chan Message, cfg.BufferSize),
		errCh:         make(chan error, 1),
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
		pingEvery:     cfg.PingInterval,
	}
	go c.readLoop()
	go c.pingLoop()
	log.WithField("url", target).Info("stream connected")
	return c, nil
}

// Messages delivers received frames. It is closed when the connection ends.
func (c *Client) Messages() <-chan Message { return c.msgCh }

// Errors receives at most one error: the reason the read loop stopped.
func (c *Client) Errors() <-chan error { return c.errCh }

// Done is closed once the read loop has exited.
func (c *Client) Done() <-chan struct{} { return c.doneCh }

// Subscribe asks the server for the given streams. Already subscribed
// streams are skipped.
func (c *Client) Subscribe(streams ...string) error {
	return c.update("SUBSCRIBE", streams, true)
}

// Unsubscribe drops the given streams. Streams not subscribed are skipped.
func (c *Client) Unsubscribe(streams ...string) error {
	return c.update("UNSUBSCRIBE", streams, false)
}

// update sends one request for the streams whose state changes. The local
// subscription set is only updated once the request is written.
func (c *Client) update(method string, streams []string, add bool) error {
	c.subMu.Lock()
	defer c.subMu.Unlock()

	changed := make([]string, 0, len(streams))
	seen := make(map[string]bool, len(streams))
	for _, s := range streams {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] || c.subscriptions[s] == add {
			continue
		}
		seen[s] = true
		changed = append(changed, s)
	}
	if len(changed) == 0 {
		return nil
	}

	if err := c.writeJSON(request{ID: c.nextID + 1, Method: method, Params: changed}); err != nil {
		return err
	}
	c.nextID++
	for _, s := range changed {
		if add {
			c.subscriptions[s] = true
		} else {
			delete(c.subscriptions, s)
		}
	}
	return nil
}

// Subscriptions returns the active streams, sorted.
func (c *Client) Subscriptions() []string {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	out := make([]string, 0, len(c.subscriptions))
	for s := range c.subscriptions {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

func (c *Client) writeJSON(v interface{}) error {
	select {
	case <-c.stopCh:
		return ErrClosed
	default:
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
	if err := c.conn.WriteJSON(v); err != nil {
		return errors.Wrap(err, "stream write")
	}
	return nil
}

// Close sends a close frame and waits for the read loop to exit.
func (c *Client) Close() error {
	var err error
	c.closeOnce.Do(func() {
		close(c.stopCh)
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(writeTimeout))
		c.writeMu.Unlock()
		err = c.conn.Close()
		<-c.doneCh
	})
	return err
}

func (c *Client) readLoop() {
	defer close(c.doneCh)
	defer close(c.msgCh)

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			select {
			case <-c.stopCh:
				return
			default:
			}
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Warn("stream read failed")
			}
			c.errCh <- errors.Wrap(err, "stream read")
			return
		}
		msg := Message{Raw: raw, Data: raw}
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Stream != "" {
			msg.Stream = env.Stream
			msg.Data = env.Data
		}
		select {
		case c.msgCh <- msg:
		case <-c.stopCh:
			return
		}
	}
}

func (c *Client) pingLoop() {
	ticker := time.NewTicker(c.pingEvery)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-c.doneCh:
			return
		case <-ticker.C:
			c.writeMu.Lock()
			err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout))
			c.writeMu.Unlock()
			if err != nil {
				log.WithError(err).Debug("ping failed")
			}
		}
	}
}

// Stream name helpers.

func DepthStream(symbol string) string { return strings.ToLower(symbol) + "@depth" }

func TradeStream(symbol string) string { return strings.ToLower(symbol) + "@trade" }

func TickerStream(symbol string) string { return strings.ToLower(symbol) + "@ticker" }

func KlineStream(symbol, interval string) string {
	return strings.ToLower(symbol) + "@kline_" + interval
}
