// Package mockexchange is an in-memory stand-in for the exchange REST API.
// It verifies EIP-712 signatures and session cookies the way the real
// service does and serves canned market data.
package mockexchange

import (
	"bytes"
	"io"
	"net/http"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/hundredx/go100x/hundredx/signing"
	"github.com/hundredx/go100x/hundredx/types"
)

var log = logrus.WithField("component", "mockexchange")

// Config seeds the server. Nil slices fall back to the defaults in data.go.
type Config struct {
	Domain signing.Domain
	// ExpirationScale is 1000 when order expirations are sent in microseconds
	// and 1 when they are sent in milliseconds.
	ExpirationScale uint64
	Products        []types.Product
	Tickers         []types.Ticker
	Positions       []types.Position
	Balances        []types.Balance
}

// RecordedRequest is a request as seen by the server.
type RecordedRequest struct {
	Method string
	Path   string
	Query  string
	Cookie string
	Body   []byte
}

type failure struct {
	status int
	body   string
}

type Server struct {
	cfg Config

	mu        sync.Mutex
	sessions  map[string]common.Address
	orders    map[string]*types.Order
	orderSeq  int
	referrals map[common.Address]string
	requests  []RecordedRequest
	failNext  map[string]failure

	router *gin.Engine
}

func New(cfg Config) *Server {
	if cfg.ExpirationScale == 0 {
		cfg.ExpirationScale = 1000
	}
	if cfg.Products == nil {
		cfg.Products = DefaultProducts()
	}
	if cfg.Tickers == nil {
		cfg.Tickers = DefaultTickers()
	}
	s := &Server{
		cfg:       cfg,
		sessions:  make(map[string]common.Address),
		orders:    make(map[string]*types.Order),
		referrals: make(map[common.Address]string),
		failNext:  make(map[string]failure),
	}
	s.router = s.routes()
	return s
}

func (s *Server) Handler() http.Handler { return s.router }

// Requests returns every request received so far.
func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]RecordedRequest, len(s.requests))
	copy(out, s.requests)
	return out
}

// FailNext makes the next request to path answer with status and body.
func (s *Server) FailNext(path string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failNext[path] = failure{status: status, body: body}
}

// Orders returns a snapshot of the order book of every account.
func (s *Server) Orders() []types.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out
}

func (s *Server) routes() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), s.record())

	v1 := r.Group("/v1")
	v1.GET("/products", s.handleProducts)
	v1.GET("/products/:symbol", s.handleProduct)
	v1.GET("/time", s.handleTime)
	v1.GET("/trade-history", s.handleTradeHistory)
	v1.GET("/uiKlines", s.handleKlines)
	v1.GET("/ticker/24hr", s.handleTicker)
	v1.GET("/depth", s.handleDepth)
	v1.POST("/session/login", s.handleLogin)

	private := v1.Group("", s.requireSession())
	private.GET("/session/status", s.handleSessionStatus)
	private.GET("/session/logout", s.handleLogout)
	private.GET("/balances", s.handleBalances)
	private.GET("/positionRisk", s.handlePositions)
	private.GET("/approved-signers", s.handleApprovedSigners)
	private.GET("/openOrders", s.handleOpenOrders)
	private.GET("/orders", s.handleOrders)
	private.POST("/order", s.handleCreateOrder)
	private.PUT("/cancel-and-replace", s.handleCancelAndReplace)
	private.DELETE("/order", s.handleCancelOrder)
	private.DELETE("/openOrders", s.handleCancelAll)
	private.POST("/withdraw", s.handleWithdraw)
	private.POST("/referral/add-referee", s.handleReferral)
	return r
}

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		var body []byte
		if c.Request.Body != nil {
			body, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewReader(body))
		}
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Query:  c.Request.URL.RawQuery,
			Cookie: c.GetHeader("Cookie"),
			Body:   body,
		})
		f, fail := s.failNext[c.Request.URL.Path]
		delete(s.failNext, c.Request.URL.Path)
		s.mu.Unlock()

		if fail {
			c.Data(f.status, "application/json", []byte(f.body))
			c.Abort()
			return
		}
		c.Next()
	}
}

const accountKey = "account"

func (s *Server) requireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("connectedAddress")
		if err != nil || token == "" {
			abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		s.mu.Lock()
		account, ok := s.sessions[token]
		s.mu.Unlock()
		if !ok {
			abort(c, http.StatusUnauthorized, "unauthorized")
			return
		}
		c.Set(accountKey, account)
		c.Next()
	}
}

func sessionAccount(c *gin.Context) common.Address {
	v, _ := c.Get(accountKey)
	a, _ := v.(common.Address)
	return a
}

func abort(c *gin.Context, status int, msg string) {
	log.WithField("path", c.Request.URL.Path).Debugf("%d %s", status, msg)
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
