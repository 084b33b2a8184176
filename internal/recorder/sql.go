package recorder

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"CandleSentinel/internal/model"
)

// dialect captures the few places SQLite and Postgres disagree.
type dialect struct {
	name   string
	schema []string
	// bind rewrites "?" placeholders for the driver.
	bind func(query string) string
}

// SQLRecorder persists runs to a database/sql backend. Runs are stored with
// their inputs as JSON; trades and equity points get their own tables so
// dashboards can query them directly.
type SQLRecorder struct {
	db      *sql.DB
	dialect dialect
	mu      sync.Mutex
}

func newSQLRecorder(db *sql.DB, d dialect) (*SQLRecorder, error) {
	r := &SQLRecorder{db: db, dialect: d}
	if err := r.migrate(); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return r, nil
}

func (r *SQLRecorder) migrate() error {
	for _, s := range r.dialect.schema {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", firstLine(s), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (r *SQLRecorder) RecordRun(ctx context.Context, run *model.RunRecord) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}

	params, err := json.Marshal(run.Params)
	if err != nil {
		return fmt.Errorf("encode params: %w", err)
	}
	series, err := json.Marshal(run.Series)
	if err != nil {
		return fmt.Errorf("encode series: %w", err)
	}
	patterns, err := json.Marshal(run.Patterns)
	if err != nil {
		return fmt.Errorf("encode patterns: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	s := run.Summary
	_, err = tx.ExecContext(ctx, r.dialect.bind(`INSERT INTO runs
		(id, symbol, source, created_at, range_from, range_to,
		 initial_capital, final_capital, total_profit_loss, trade_count,
		 params, series, patterns)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)`),
		run.ID, run.Symbol, run.Source, run.CreatedAt.UnixMilli(),
		unixMilli(s.From), unixMilli(s.To),
		s.InitialCapital, s.FinalCapital, s.TotalProfitLoss, s.TradeCount,
		string(params), string(series), string(patterns),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for i, t := range run.Trades {
		_, err = tx.ExecContext(ctx, r.dialect.bind(`INSERT INTO trades
			(run_id, seq, timestamp, action, ticker, buy_price, sell_price, quantity, profit_loss)
			VALUES (?,?,?,?,?,?,?,?,?)`),
			run.ID, i, t.Time.UnixMilli(), string(t.Action), t.Ticker,
			t.BuyPrice, t.SellPrice, t.Quantity, t.ProfitLoss,
		)
		if err != nil {
			return fmt.Errorf("insert trade %d: %w", i, err)
		}
	}
	for i, p := range run.Equity {
		_, err = tx.ExecContext(ctx, r.dialect.bind(`INSERT INTO equity
			(run_id, seq, timestamp, value) VALUES (?,?,?,?)`),
			run.ID, i, p.Time.UnixMilli(), p.Value,
		)
		if err != nil {
			return fmt.Errorf("insert equity %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	log.Debug().Str("run", run.ID).Str("symbol", run.Symbol).Int("trades", len(run.Trades)).
		Msgf("%s recorder stored run", r.dialect.name)
	return nil
}

func (r *SQLRecorder) LatestRun(ctx context.Context, symbol string) (*model.RunRecord, error) {
	q := `SELECT id, symbol, source, created_at, range_from, range_to,
		initial_capital, final_capital, total_profit_loss, trade_count,
		params, series, patterns FROM runs`
	var args []any
	if symbol != "" {
		q += ` WHERE symbol = ?`
		args = append(args, symbol)
	}
	q += ` ORDER BY created_at DESC LIMIT 1`

	var (
		run                      model.RunRecord
		created, from, to        int64
		params, series, patterns string
	)
	err := r.db.QueryRowContext(ctx, r.dialect.bind(q), args...).Scan(
		&run.ID, &run.Symbol, &run.Source, &created, &from, &to,
		&run.Summary.InitialCapital, &run.Summary.FinalCapital,
		&run.Summary.TotalProfitLoss, &run.Summary.TradeCount,
		&params, &series, &patterns,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query latest run: %w", err)
	}
	run.CreatedAt = time.UnixMilli(created)
	run.Summary.Symbol = run.Symbol
	run.Summary.From = fromUnixMilli(from)
	run.Summary.To = fromUnixMilli(to)

	if err := json.Unmarshal([]byte(params), &run.Params); err != nil {
		return nil, fmt.Errorf("decode params: %w", err)
	}
	if err := json.Unmarshal([]byte(series), &run.Series); err != nil {
		return nil, fmt.Errorf("decode series: %w", err)
	}
	if err := json.Unmarshal([]byte(patterns), &run.Patterns); err != nil {
		return nil, fmt.Errorf("decode patterns: %w", err)
	}
	if run.Trades, err = r.trades(ctx, run.ID); err != nil {
		return nil, err
	}
	if run.Equity, err = r.equity(ctx, run.ID); err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *SQLRecorder) trades(ctx context.Context, runID string) ([]model.Trade, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.bind(`SELECT timestamp, action, ticker,
		buy_price, sell_price, quantity, profit_loss
		FROM trades WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("query trades: %w", err)
	}
	defer rows.Close()

	trades := []model.Trade{}
	for rows.Next() {
		var (
			t          model.Trade
			ts         int64
			action     string
			buy, sell  sql.NullFloat64
			profitLoss sql.NullFloat64
		)
		if err := rows.Scan(&ts, &action, &t.Ticker, &buy, &sell, &t.Quantity, &profitLoss); err != nil {
			return nil, fmt.Errorf("scan trade: %w", err)
		}
		t.Time = time.UnixMilli(ts)
		t.Action = model.Action(action)
		t.BuyPrice = nullable(buy)
		t.SellPrice = nullable(sell)
		t.ProfitLoss = nullable(profitLoss)
		trades = append(trades, t)
	}
	return trades, rows.Err()
}

func (r *SQLRecorder) equity(ctx context.Context, runID string) ([]model.EquityPoint, error) {
	rows, err := r.db.QueryContext(ctx, r.dialect.bind(`SELECT timestamp, value
		FROM equity WHERE run_id = ? ORDER BY seq`), runID)
	if err != nil {
		return nil, fmt.Errorf("query equity: %w", err)
	}
	defer rows.Close()

	points := []model.EquityPoint{}
	for rows.Next() {
		var (
			p  model.EquityPoint
			ts int64
		)
		if err := rows.Scan(&ts, &p.Value); err != nil {
			return nil, fmt.Errorf("scan equity: %w", err)
		}
		p.Time = time.UnixMilli(ts)
		points = append(points, p)
	}
	return points, rows.Err()
}

func (r *SQLRecorder) Close() error {
	log.Info().Msgf("closing %s recorder", r.dialect.name)
	return r.db.Close()
}

func nullable(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// unixMilli maps the zero time to 0 so empty runs round-trip.
func unixMilli(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromUnixMilli(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms)
}
