package collector

import (
	"CandleSentinel/internal/market"
	"CandleSentinel/internal/model"
)

// LatestSession keeps only the candles that share the calendar date (in their
// own time zone) of the last candle.
func LatestSession(series model.Series) model.Series {
	last, ok := series.Last()
	if !ok {
		return model.Series{}
	}
	y, m, d := last.Time.Date()
	out := make(model.Series, 0, len(series))
	for _, c := range series {
		cy, cm, cd := c.Time.In(last.Time.Location()).Date()
		if cy == y && cm == m && cd == d {
			out = append(out, c)
		}
	}
	return out
}

// RegularHours drops candles outside the exchange's regular session.
func RegularHours(series model.Series, cal *market.Calendar) model.Series {
	out := make(model.Series, 0, len(series))
	for _, c := range series {
		if cal.IsOpen(c.Time) {
			out = append(out, c)
		}
	}
	return out
}
