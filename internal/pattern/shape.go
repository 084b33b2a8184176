package pattern

import (
	"math"

	"CandleSentinel/internal/model"
)

func bodySize(c model.Candle) float64 { return math.Abs(c.Close - c.Open) }

func candleRange(c model.Candle) float64 { return c.High - c.Low }

func upperShadow(c model.Candle) float64 { return c.High - math.Max(c.Open, c.Close) }

func lowerShadow(c model.Candle) float64 { return math.Min(c.Open, c.Close) - c.Low }

func isBullish(c model.Candle) bool { return c.Close > c.Open }

func isBearish(c model.Candle) bool { return c.Close < c.Open }

// bodyMidpoint is the middle of the real body, not of the high-low range.
func bodyMidpoint(c model.Candle) float64 { return (c.Open + c.Close) / 2 }

// bodyRatio returns body/range and false when the range is not positive.
func bodyRatio(c model.Candle) (float64, bool) {
	r := candleRange(c)
	if !(r > 0) {
		return 0, false
	}
	return bodySize(c) / r, true
}
