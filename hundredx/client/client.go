package client

import (
	"crypto/ecdsa"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/hundredx/go100x/hundredx/signing"
	"github.com/hundredx/go100x/hundredx/types"
	"github.com/hundredx/go100x/pkg/cache"
	"github.com/hundredx/go100x/pkg/ratelimit"
)

// ExpirationUnit selects how the default order expiration is put on the wire.
type ExpirationUnit int

const (
	// ExpirationMicros sends (nonce + 24h in ms) * 1000.
	ExpirationMicros ExpirationUnit = iota
	// ExpirationMillis sends nonce + 24h in ms.
	ExpirationMillis
)

// String returns "micros" or "millis".
func (u ExpirationUnit) String() string {
	if u == ExpirationMillis {
		return "millis"
	}
	return "micros"
}

// ProductCacheTTL bounds how long ProductID trusts a product lookup.
const ProductCacheTTL = 10 * time.Minute

// DefaultOrderTTL is how long an order stays valid when no expiration is given.
const DefaultOrderTTL = 24 * time.Hour

// Client is the blocking facade over the exchange REST API.
type Client struct {
	env        Environment
	domain     signing.Domain
	signer     *signing.Signer
	subaccount uint8
	session    *Session
	dispatcher *Dispatcher
	transport  Transport
	limiter    *ratelimit.Manager
	timeout    time.Duration
	now        func() time.Time
	expiration ExpirationUnit
	chain      ChainBackend
	chainMu    sync.Mutex
	poll       ReceiptPolling
	products   *cache.InMemoryCache[string, types.Product]
	log        *logrus.Entry
}

// Option configures a Client at construction.
type Option func(*Client)

// WithSubaccount sets the subaccount used when a request leaves it unset.
func WithSubaccount(id uint8) Option {
	return func(c *Client) { c.subaccount = id }
}

// WithTransport replaces the resty transport, mostly for tests.
func WithTransport(t Transport) Option {
	return func(c *Client) { c.transport = t }
}

// WithTimeout bounds each HTTP exchange of the default transport.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRateLimiter enables client side throttling per endpoint.
func WithRateLimiter(m *ratelimit.Manager) Option {
	return func(c *Client) { c.limiter = m }
}

// WithClock replaces time.Now for nonces and timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.now = now }
}

// WithExpirationUnit selects the unit of default order expirations.
func WithExpirationUnit(u ExpirationUnit) Option {
	return func(c *Client) { c.expiration = u }
}

// WithChainBackend sets the JSON-RPC client used for deposits.
func WithChainBackend(b ChainBackend) Option {
	return func(c *Client) { c.chain = b }
}

// WithReceiptPolling overrides DefaultReceiptPolling for deposits.
func WithReceiptPolling(p ReceiptPolling) Option {
	return func(c *Client) { c.poll = p }
}

// WithLogger sets the entry the client and dispatcher log through.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Client) { c.log = l }
}

// NewClient builds a client for env. key may be nil for market data only use;
// every signed call then fails with types.ErrMissingKey.
func NewClient(env Environment, key *ecdsa.PrivateKey, opts ...Option) (*Client, error) {
	if err := env.Validate(); err != nil {
		return nil, err
	}
	c := &Client{
		env:      env.clone(),
		domain:   env.Domain(),
		session:  &Session{},
		now:      time.Now,
		poll:     DefaultReceiptPolling,
		products: cache.NewInMemoryCache[string, types.Product](ProductCacheTTL),
		log:      logrus.WithField("component", "hundredx.client"),
	}
	if key != nil {
		s, err := signing.NewSigner(key)
		if err != nil {
			return nil, err
		}
		c.signer = s
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = NewRestyTransport(env.RestURL, c.timeout)
	}
	c.dispatcher = NewDispatcher(c.transport, c.session, c.limiter)
	c.log = c.log.WithField("env", env.Name)
	return c, nil
}

// NewClientFromHex is NewClient with a hex encoded private key.
func NewClientFromHex(env types.Environment, hexKey string, opts ...Option) (*Client, error) {
	e, err := EnvironmentFor(env)
	if err != nil {
		return nil, err
	}
	key, err := signing.PrivateKeyFromHex(hexKey)
	if err != nil {
		return nil, err
	}
	return NewClient(e, key, opts...)
}

// Environment returns a copy of the resolved environment.
func (c *Client) Environment() Environment { return c.env.clone() }

// Domain returns the EIP-712 domain every message is signed under.
func (c *Client) Domain() signing.Domain { return c.domain }

// Session returns the client's session.
func (c *Client) Session() *Session { return c.session }

// Subaccount returns the default subaccount id.
func (c *Client) Subaccount() uint8 { return c.subaccount }

// Address returns the signer address, or the zero address without a key.
func (c *Client) Address() common.Address {
	if c.signer == nil {
		return common.Address{}
	}
	return c.signer.Address()
}

func (c *Client) nowMillis() uint64 {
	return uint64(c.now().UnixMilli())
}

func (c *Client) requireSigner() (*signing.Signer, error) {
	if c.signer == nil {
		return nil, types.ErrMissingKey
	}
	return c.signer, nil
}
