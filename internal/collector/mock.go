package collector

import (
	"context"
	"math"
	"time"

	"CandleSentinel/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Price    float64
	Intraday model.Series
	Daily    model.Series
	Err      error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchIntraday(_ context.Context, _, _ string) (model.Series, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Intraday != nil {
		return m.Intraday, nil
	}
	return generateMockSeries(m.Price, 390, time.Minute), nil
}

func (m *MockFetcher) FetchDaily(_ context.Context, _ string) (model.Series, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Daily != nil {
		return m.Daily, nil
	}
	return generateMockSeries(m.Price, 60, 24*time.Hour), nil
}

// generateMockSeries draws a sine wave around basePrice so that the pattern
// detector sees both rallies and sell-offs.
func generateMockSeries(basePrice float64, count int, step time.Duration) model.Series {
	if basePrice <= 0 {
		basePrice = 100
	}
	end := time.Now().Truncate(step)
	series := make(model.Series, count)
	prev := basePrice
	for i := 0; i < count; i++ {
		p := basePrice * (1 + 0.01*math.Sin(float64(i)/7))
		series[i] = model.Candle{
			Time:   end.Add(-time.Duration(count-i) * step),
			Open:   prev,
			High:   math.Max(prev, p) * 1.001,
			Low:    math.Min(prev, p) * 0.999,
			Close:  p,
			Volume: 1000,
		}
		prev = p
	}
	return series
}
