package recorder

import (
	"context"
	"errors"

	"CandleSentinel/internal/model"
)

// ErrNotFound is returned when no run matches a lookup.
var ErrNotFound = errors.New("run not found")

// Recorder persists backtest runs for later review.
type Recorder interface {
	// RecordRun stores the run, assigning an ID and timestamp when unset.
	RecordRun(ctx context.Context, run *model.RunRecord) error
	// LatestRun returns the most recent run for symbol, or for any symbol
	// when symbol is empty.
	LatestRun(ctx context.Context, symbol string) (*model.RunRecord, error)
	Close() error
}
