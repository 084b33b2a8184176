package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"CandleSentinel/internal/backtest"
	"CandleSentinel/internal/collector"
	"CandleSentinel/internal/fund"
	"CandleSentinel/internal/model"
	"CandleSentinel/internal/pattern"
	"CandleSentinel/internal/publisher"
	"CandleSentinel/internal/recorder"
)

// Request describes one simulation. A nil Series is fetched from the
// collector; a nil Settings uses the stored settings.
type Request struct {
	Symbol   string
	Settings *fund.Settings
	Series   model.Series
}

// Runner executes the fetch, detect, simulate, record, publish pipeline.
type Runner struct {
	Collector *collector.Collector
	Settings  *fund.Manager
	Recorder  recorder.Recorder
	Publisher publisher.Publisher
}

// Run simulates one session. Persistence and publishing failures are logged
// and do not fail the run.
func (r *Runner) Run(ctx context.Context, req Request) (*model.RunRecord, error) {
	settings := r.Settings.GetState()
	if req.Settings != nil {
		settings = *req.Settings
	}
	symbol := collector.NormalizeSymbol(req.Symbol)
	if symbol == "" {
		symbol = settings.Symbol
	}

	series, source := req.Series, "request"
	if series == nil {
		if r.Collector == nil {
			return nil, fmt.Errorf("no market data source configured")
		}
		var err error
		if series, err = r.Collector.Collect(ctx, symbol); err != nil {
			return nil, err
		}
		source = r.Collector.Fetcher.Name()
	}

	occs := pattern.Detect(series)
	res := backtest.RunWithPatterns(series, occs, settings.Params(symbol))

	run := &model.RunRecord{
		ID:        uuid.NewString(),
		Symbol:    res.Summary.Symbol,
		Source:    source,
		CreatedAt: time.Now(),
		Params:    settings.RunParams(),
		Series:    series,
		Patterns:  occs,
		Trades:    res.Trades,
		Equity:    res.Equity,
		Summary:   res.Summary,
	}
	if err := r.Recorder.RecordRun(ctx, run); err != nil {
		log.Error().Err(err).Str("symbol", run.Symbol).Msg("record run")
	}
	if err := r.Publisher.PublishTrades(ctx, run.ID, run.Symbol, run.Trades); err != nil {
		log.Error().Err(err).Str("symbol", run.Symbol).Msg("publish trades")
	}

	log.Info().Str("symbol", run.Symbol).Int("candles", len(series)).Int("patterns", len(occs)).
		Int("trades", len(run.Trades)).Float64("pnl", run.Summary.TotalProfitLoss).Msg("backtest finished")
	return run, nil
}
