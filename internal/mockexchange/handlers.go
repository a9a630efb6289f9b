package mockexchange

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hundredx/go100x/hundredx/signing"
	"github.com/hundredx/go100x/hundredx/types"
)

const loginStatement = "I would like to login to 100x finance."

// maxOrderTTL bounds how far in the future an expiration may be, in ms.
const maxOrderTTL = uint64(30 * 24 * time.Hour / time.Millisecond)

func (s *Server) handleProducts(c *gin.Context) {
	c.JSON(http.StatusOK, s.cfg.Products)
}

func (s *Server) handleProduct(c *gin.Context) {
	symbol := c.Param("symbol")
	for _, p := range s.cfg.Products {
		if p.Symbol == symbol {
			c.JSON(http.StatusOK, p)
			return
		}
	}
	abort(c, http.StatusNotFound, "product not found")
}

func (s *Server) handleTime(c *gin.Context) {
	c.JSON(http.StatusOK, types.ServerTime{ServerTime: time.Now().UnixMilli()})
}

func (s *Server) handleTradeHistory(c *gin.Context) {
	if c.Query("symbol") == "" {
		abort(c, http.StatusBadRequest, "symbol is required")
		return
	}
	trades := defaultTrades()
	if n, err := strconv.Atoi(c.Query("lookback")); err == nil && n > 0 && n < len(trades) {
		trades = trades[:n]
	}
	c.JSON(http.StatusOK, trades)
}

func (s *Server) handleKlines(c *gin.Context) {
	if c.Query("symbol") == "" {
		abort(c, http.StatusBadRequest, "symbol is required")
		return
	}
	c.JSON(http.StatusOK, defaultCandles())
}

func (s *Server) handleTicker(c *gin.Context) {
	symbol := c.Query("symbol")
	if symbol == "" {
		c.JSON(http.StatusOK, s.cfg.Tickers)
		return
	}
	out := make([]types.Ticker, 0, 1)
	for _, t := range s.cfg.Tickers {
		if t.ProductSymbol == symbol {
			out = append(out, t)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleDepth(c *gin.Context) {
	if c.Query("symbol") == "" {
		abort(c, http.StatusBadRequest, "symbol is required")
		return
	}
	depth := defaultDepth()
	if n, err := strconv.Atoi(c.Query("limit")); err == nil && n > 0 {
		if n < len(depth.Bids) {
			depth.Bids = depth.Bids[:n]
		}
		if n < len(depth.Asks) {
			depth.Asks = depth.Asks[:n]
		}
	}
	c.JSON(http.StatusOK, depth)
}

func (s *Server) handleLogin(c *gin.Context) {
	msg, account, ok := s.verify(c, signing.LoginSchema)
	if !ok {
		return
	}
	if msg.Value("message") != loginStatement {
		abort(c, http.StatusBadRequest, "unexpected login statement")
		return
	}
	token := uuid.NewString()
	s.mu.Lock()
	s.sessions[token] = account
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"value": token})
}

func (s *Server) handleSessionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"account": sessionAccount(c).Hex(), "loggedIn": true})
}

func (s *Server) handleLogout(c *gin.Context) {
	token, _ := c.Cookie("connectedAddress")
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (s *Server) handleBalances(c *gin.Context) {
	account := sessionAccount(c)
	out := make([]types.Balance, 0)
	for _, b := range s.cfg.Balances {
		if common.HexToAddress(b.Account) == account {
			out = append(out, b)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handlePositions(c *gin.Context) {
	account := sessionAccount(c)
	symbol := c.Query("symbol")
	out := make([]types.Position, 0)
	for _, p := range s.cfg.Positions {
		if common.HexToAddress(p.Account) != account {
			continue
		}
		if symbol != "" && p.ProductSymbol != symbol {
			continue
		}
		out = append(out, p)
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleApprovedSigners(c *gin.Context) {
	c.JSON(http.StatusOK, []types.ApprovedSigner{})
}

func (s *Server) handleOpenOrders(c *gin.Context) {
	c.JSON(http.StatusOK, s.filterOrders(sessionAccount(c), c.Query("symbol"), nil, true))
}

func (s *Server) handleOrders(c *gin.Context) {
	var ids map[string]bool
	if q := c.QueryArray("ids"); len(q) > 0 {
		ids = make(map[string]bool, len(q))
		for _, id := range q {
			ids[id] = true
		}
	}
	c.JSON(http.StatusOK, s.filterOrders(sessionAccount(c), c.Query("symbol"), ids, false))
}

func (s *Server) filterOrders(account common.Address, symbol string, ids map[string]bool, openOnly bool) []types.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]types.Order, 0)
	for _, o := range s.orders {
		switch {
		case common.HexToAddress(o.Account) != account:
		case symbol != "" && o.ProductSymbol != symbol:
		case ids != nil && !ids[o.ID]:
		case openOnly && o.Status != "OPEN":
		default:
			out = append(out, *o)
		}
	}
	return out
}

func (s *Server) handleCreateOrder(c *gin.Context) {
	msg, account, ok := s.verifySession(c, signing.OrderSchema)
	if !ok {
		return
	}
	if !s.checkExpiration(c, msg) {
		return
	}
	c.JSON(http.StatusOK, s.placeOrder(account, msg))
}

func (s *Server) handleCancelAndReplace(c *gin.Context) {
	msg, account, ok := s.verifySession(c, signing.OrderSchema)
	if !ok {
		return
	}
	if !s.checkExpiration(c, msg) {
		return
	}
	var extra struct {
		OrderIDToCancel string `json:"orderIdToCancel"`
	}
	body, _ := c.Get(bodyKey)
	_ = json.Unmarshal(body.([]byte), &extra)

	s.mu.Lock()
	old, found := s.orders[extra.OrderIDToCancel]
	if found && old.Status == "OPEN" && common.HexToAddress(old.Account) == account {
		old.Status = "CANCELLED"
	} else {
		found = false
	}
	s.mu.Unlock()
	if !found {
		abort(c, http.StatusNotFound, "order to cancel not found")
		return
	}
	c.JSON(http.StatusOK, s.placeOrder(account, msg))
}

func (s *Server) handleCancelOrder(c *gin.Context) {
	msg, account, ok := s.verifySession(c, signing.CancelOrderSchema)
	if !ok {
		return
	}
	id, _ := msg.Value("orderId").(string)
	s.mu.Lock()
	o, found := s.orders[id]
	if found && o.Status == "OPEN" && common.HexToAddress(o.Account) == account {
		o.Status = "CANCELLED"
	} else {
		found = false
	}
	s.mu.Unlock()
	if !found {
		abort(c, http.StatusNotFound, "order not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orderId": id})
}

func (s *Server) handleCancelAll(c *gin.Context) {
	msg, account, ok := s.verifySession(c, signing.CancelOrdersSchema)
	if !ok {
		return
	}
	product := uint32(msg.Uint("productId").Uint64())
	cancelled := 0
	s.mu.Lock()
	for _, o := range s.orders {
		if o.Status == "OPEN" && o.ProductID == product && common.HexToAddress(o.Account) == account {
			o.Status = "CANCELLED"
			cancelled++
		}
	}
	s.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"success": true, "cancelled": cancelled})
}

func (s *Server) handleWithdraw(c *gin.Context) {
	msg, _, ok := s.verifySession(c, signing.WithdrawSchema)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "quantity": msg.Uint("quantity").String()})
}

func (s *Server) handleReferral(c *gin.Context) {
	msg, account, ok := s.verifySession(c, signing.ReferralSchema)
	if !ok {
		return
	}
	code, _ := msg.Value("code").(string)
	s.mu.Lock()
	_, exists := s.referrals[account]
	if !exists {
		s.referrals[account] = code
	}
	s.mu.Unlock()
	if exists {
		abort(c, http.StatusBadRequest, "account already referred")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "code": code})
}

func (s *Server) placeOrder(account common.Address, msg *signing.TypedMessage) types.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orderSeq++
	productID := uint32(msg.Uint("productId").Uint64())
	o := &types.Order{
		ID:           fmt.Sprintf("%d", 100000+s.orderSeq),
		Account:      account.Hex(),
		SubAccountID: uint8(msg.Uint("subAccountId").Uint64()),
		ProductID:    productID,
		IsBuy:        msg.Value("isBuy").(bool),
		OrderType:    types.OrderType(msg.Uint("orderType").Uint64()),
		TimeInForce:  types.TimeInForce(msg.Uint("timeInForce").Uint64()),
		Price:        decimal.NewFromBigInt(msg.Uint("price"), 0),
		Quantity:     decimal.NewFromBigInt(msg.Uint("quantity"), 0),
		Status:       "OPEN",
		Expiration:   msg.Uint("expiration").Uint64(),
		Nonce:        msg.Uint("nonce").Uint64(),
		CreatedAt:    time.Now().UnixMilli(),
	}
	for _, p := range s.cfg.Products {
		if uint32(p.ID) == productID {
			o.ProductSymbol = p.Symbol
		}
	}
	if o.OrderType == types.OrderTypeMarket {
		o.Status = "FILLED"
		o.FilledQuantity = o.Quantity
	}
	s.orders[o.ID] = o
	return *o
}

// checkExpiration rejects expirations sent in a different unit than configured.
func (s *Server) checkExpiration(c *gin.Context, msg *signing.TypedMessage) bool {
	exp := msg.Uint("expiration").Uint64()
	nonce := msg.Uint("nonce").Uint64()
	scale := s.cfg.ExpirationScale
	if exp%scale != 0 || exp/scale <= nonce || exp/scale-nonce > maxOrderTTL {
		abort(c, http.StatusBadRequest, "invalid expiration")
		return false
	}
	return true
}

const bodyKey = "rawBody"

// verify decodes the body, rebuilds schema's typed message and checks the
// signature against its account field.
func (s *Server) verify(c *gin.Context, schema signing.Schema) (*signing.TypedMessage, common.Address, bool) {
	raw, err := c.GetRawData()
	if err != nil {
		abort(c, http.StatusBadRequest, "unreadable body")
		return nil, common.Address{}, false
	}
	c.Set(bodyKey, raw)

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var body map[string]interface{}
	if err := dec.Decode(&body); err != nil {
		abort(c, http.StatusBadRequest, "invalid json")
		return nil, common.Address{}, false
	}
	sig, _ := body["signature"].(string)
	if sig == "" {
		abort(c, http.StatusBadRequest, "missing signature")
		return nil, common.Address{}, false
	}

	values := make(map[string]interface{}, len(schema.Fields))
	for _, f := range schema.Fields {
		v, ok := body[f.Name]
		if !ok {
			continue
		}
		if n, isNum := v.(json.Number); isNum {
			v = n.String()
		}
		values[f.Name] = v
	}
	msg, err := signing.NewMessage(schema, values)
	if err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return nil, common.Address{}, false
	}
	if err := rejectFloatStrings(body); err != nil {
		abort(c, http.StatusBadRequest, err.Error())
		return nil, common.Address{}, false
	}
	account, _ := msg.Value("account").(common.Address)
	if !signing.Verify(s.cfg.Domain, msg, sig, account) {
		abort(c, http.StatusBadRequest, "invalid signature")
		return nil, common.Address{}, false
	}
	return msg, account, true
}

// verifySession is verify plus a check that the signer owns the session.
func (s *Server) verifySession(c *gin.Context, schema signing.Schema) (*signing.TypedMessage, common.Address, bool) {
	msg, account, ok := s.verify(c, schema)
	if !ok {
		return nil, common.Address{}, false
	}
	if account != sessionAccount(c) {
		abort(c, http.StatusForbidden, "signer does not own the session")
		return nil, common.Address{}, false
	}
	return msg, account, true
}

// rejectFloatStrings enforces that price and quantity arrive as base-10 strings.
func rejectFloatStrings(body map[string]interface{}) error {
	for _, k := range []string{"price", "quantity"} {
		v, ok := body[k]
		if !ok {
			continue
		}
		str, isString := v.(string)
		if !isString {
			return fmt.Errorf("%s must be a decimal string", k)
		}
		if _, ok := new(big.Int).SetString(str, 10); !ok {
			return fmt.Errorf("%s must be an integer string", k)
		}
	}
	return nil
}
