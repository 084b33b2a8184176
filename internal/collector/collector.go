package collector

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"CandleSentinel/internal/market"
	"CandleSentinel/internal/model"
)

// Collector fetches the most recent trading session for a symbol.
type Collector struct {
	Fetcher          Fetcher
	Calendar         *market.Calendar
	Interval         string
	RegularHoursOnly bool
}

// NewCollector creates a new Collector.
func NewCollector(fetcher Fetcher, cal *market.Calendar, interval string, regularHoursOnly bool) *Collector {
	return &Collector{Fetcher: fetcher, Calendar: cal, Interval: interval, RegularHoursOnly: regularHoursOnly}
}

// Collect fetches intraday candles and keeps the latest session.
func (c *Collector) Collect(ctx context.Context, symbol string) (model.Series, error) {
	symbol = NormalizeSymbol(symbol)
	series, err := c.Fetcher.FetchIntraday(ctx, symbol, c.Interval)
	if err != nil {
		return nil, fmt.Errorf("fetch intraday %s: %w", symbol, err)
	}
	series = LatestSession(series)
	if c.RegularHoursOnly && c.Calendar != nil {
		series = RegularHours(series, c.Calendar)
	}
	if len(series) == 0 {
		return nil, fmt.Errorf("latest session %s: %w", symbol, ErrNoData)
	}
	first, _ := series.First()
	log.Info().Str("symbol", symbol).Str("source", c.Fetcher.Name()).
		Int("candles", len(series)).Time("session", first.Time).Msg("collected session")
	return series, nil
}
