// Package journal keeps a local SQLite record of the write actions sent to
// the exchange.
package journal

import (
	"context"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/hundredx/go100x/hundredx/types"
)

// Actions recorded by the CLI.
const (
	ActionOrder     = "order"
	ActionReplace   = "replace"
	ActionCancel    = "cancel"
	ActionCancelAll = "cancel-all"
	ActionWithdraw  = "withdraw"
	ActionDeposit   = "deposit"
)

type Entry struct {
	ID         int64
	Time       time.Time
	Env        string
	Account    string
	Subaccount uint8
	Action     string
	Symbol     string
	OrderID    string
	Side       string
	OrderType  string
	Price      string
	Quantity   string
	Status     string
	Payload    json.RawMessage
}

type Journal struct {
	db  *sql.DB
	now func() time.Time
}

func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "mkdir journal dir")
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "open sqlite")
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	j := &Journal{db: db, now: time.Now}
	if err := j.migrate(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

func (j *Journal) migrate() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`
CREATE TABLE IF NOT EXISTS actions (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  ts TEXT NOT NULL,
  env TEXT NOT NULL,
  account TEXT NOT NULL,
  subaccount INTEGER NOT NULL,
  action TEXT NOT NULL,
  symbol TEXT,
  order_id TEXT,
  side TEXT,
  order_type TEXT,
  price TEXT,
  quantity TEXT,
  status TEXT,
  payload_json TEXT
);`,
		`CREATE INDEX IF NOT EXISTS idx_actions_account_ts ON actions(account, ts DESC);`,
	}
	for _, stmt := range stmts {
		if _, err := j.db.ExecContext(ctx, stmt); err != nil {
			return errors.Wrapf(err, "migrate journal")
		}
	}
	return nil
}

// Record appends e. Time defaults to now; a nil Payload is stored as NULL.
func (j *Journal) Record(ctx context.Context, e Entry) (int64, error) {
	if e.Time.IsZero() {
		e.Time = j.now()
	}
	var payload interface{}
	if len(e.Payload) > 0 {
		payload = string(e.Payload)
	}
	res, err := j.db.ExecContext(ctx, `
INSERT INTO actions (ts, env, account, subaccount, action, symbol, order_id, side, order_type, price, quantity, status, payload_json)
VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
`, e.Time.UTC().Format(time.RFC3339Nano), e.Env, e.Account, int(e.Subaccount), e.Action,
		e.Symbol, e.OrderID, e.Side, e.OrderType, e.Price, e.Quantity, e.Status, payload)
	if err != nil {
		return 0, errors.Wrap(err, "insert journal entry")
	}
	return res.LastInsertId()
}

// RecordOrder stores an order returned by the exchange, prices in units.
func (j *Journal) RecordOrder(ctx context.Context, env, action string, o *types.Order) (int64, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return 0, errors.Wrap(err, "encode order")
	}
	return j.Record(ctx, Entry{
		Env:        env,
		Account:    o.Account,
		Subaccount: o.SubAccountID,
		Action:     action,
		Symbol:     o.ProductSymbol,
		OrderID:    o.ID,
		Side:       o.Side().String(),
		OrderType:  o.OrderType.String(),
		Price:      o.Price.Shift(-18).String(),
		Quantity:   o.Quantity.Shift(-18).String(),
		Status:     o.Status,
		Payload:    raw,
	})
}

// List returns the latest entries of account, newest first. An empty account
// lists every account.
func (j *Journal) List(ctx context.Context, account string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := j.db.QueryContext(ctx, `
SELECT id, ts, env, account, subaccount, action,
       COALESCE(symbol,''), COALESCE(order_id,''), COALESCE(side,''), COALESCE(order_type,''),
       COALESCE(price,''), COALESCE(quantity,''), COALESCE(status,''), COALESCE(payload_json,'')
FROM actions
WHERE (? = '' OR account = ?)
ORDER BY id DESC
LIMIT ?
`, account, account, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query journal")
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			ts      string
			sub     int
			payload string
		)
		if err := rows.Scan(&e.ID, &ts, &e.Env, &e.Account, &sub, &e.Action,
			&e.Symbol, &e.OrderID, &e.Side, &e.OrderType, &e.Price, &e.Quantity, &e.Status, &payload); err != nil {
			return nil, errors.Wrap(err, "scan journal entry")
		}
		e.Time, _ = time.Parse(time.RFC3339Nano, ts)
		e.Subaccount = uint8(sub)
		if payload != "" {
			e.Payload = json.RawMessage(payload)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
