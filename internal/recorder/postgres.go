package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var postgresDialect = dialect{
	name: "postgres",
	bind: rebindDollar,
	schema: []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                TEXT PRIMARY KEY,
			symbol            TEXT NOT NULL,
			source            TEXT,
			created_at        BIGINT NOT NULL,
			range_from        BIGINT,
			range_to          BIGINT,
			initial_capital   DOUBLE PRECISION,
			final_capital     DOUBLE PRECISION,
			total_profit_loss DOUBLE PRECISION,
			trade_count       INTEGER,
			params            TEXT,
			series            TEXT,
			patterns          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_created ON runs(symbol, created_at)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id          BIGSERIAL PRIMARY KEY,
			run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq         INTEGER NOT NULL,
			timestamp   BIGINT NOT NULL,
			action      TEXT NOT NULL,
			ticker      TEXT,
			buy_price   DOUBLE PRECISION,
			sell_price  DOUBLE PRECISION,
			quantity    BIGINT,
			profit_loss DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, seq)`,

		`CREATE TABLE IF NOT EXISTS equity (
			id        BIGSERIAL PRIMARY KEY,
			run_id    TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			seq       INTEGER NOT NULL,
			timestamp BIGINT NOT NULL,
			value     DOUBLE PRECISION
		)`,
		`CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, seq)`,
	},
}

// NewPostgresRecorder connects to Postgres and runs migrations.
func NewPostgresRecorder(dsn string) (*SQLRecorder, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	db.SetMaxOpenConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}

	r, err := newSQLRecorder(db, postgresDialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Msg("postgres recorder opened")
	return r, nil
}

// rebindDollar turns "?" placeholders into $1, $2, ...
func rebindDollar(q string) string {
	var b strings.Builder
	b.Grow(len(q) + 16)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
