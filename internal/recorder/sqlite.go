package recorder

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var sqliteDialect = dialect{
	name: "sqlite",
	bind: func(q string) string { return q },
	schema: []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id                TEXT PRIMARY KEY,
			symbol            TEXT NOT NULL,
			source            TEXT,
			created_at        INTEGER NOT NULL,
			range_from        INTEGER,
			range_to          INTEGER,
			initial_capital   REAL,
			final_capital     REAL,
			total_profit_loss REAL,
			trade_count       INTEGER,
			params            TEXT,
			series            TEXT,
			patterns          TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_symbol_created ON runs(symbol, created_at)`,

		`CREATE TABLE IF NOT EXISTS trades (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES runs(id),
			seq         INTEGER NOT NULL,
			timestamp   INTEGER NOT NULL,
			action      TEXT NOT NULL,
			ticker      TEXT,
			buy_price   REAL,
			sell_price  REAL,
			quantity    INTEGER,
			profit_loss REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_trades_run ON trades(run_id, seq)`,

		`CREATE TABLE IF NOT EXISTS equity (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id    TEXT NOT NULL REFERENCES runs(id),
			seq       INTEGER NOT NULL,
			timestamp INTEGER NOT NULL,
			value     REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_equity_run ON equity(run_id, seq)`,
	},
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while runs are written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r, err := newSQLRecorder(db, sqliteDialect)
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}
