package pattern

import (
	"math"

	"CandleSentinel/internal/model"
)

// tweezerTolerance is the allowed high/low mismatch as a fraction of the
// current candle's level.
const tweezerTolerance = 0.01

// IsBullishEngulfing: a rising body that strictly wraps the previous falling body.
func IsBullishEngulfing(prev, curr model.Candle) bool {
	return isBearish(prev) && isBullish(curr) &&
		curr.Open < prev.Close && curr.Close > prev.Open
}

// IsBearishEngulfing: a falling body that strictly wraps the previous rising body.
func IsBearishEngulfing(prev, curr model.Candle) bool {
	return isBullish(prev) && isBearish(curr) &&
		curr.Open > prev.Close && curr.Close < prev.Open
}

// IsBullishHarami: a rising body strictly inside the previous falling body.
func IsBullishHarami(prev, curr model.Candle) bool {
	if !(isBearish(prev) && isBullish(curr)) {
		return false
	}
	return curr.Open > prev.Close && curr.Close < prev.Open
}

// IsBearishHarami: a falling body strictly inside the previous rising body.
func IsBearishHarami(prev, curr model.Candle) bool {
	if !(isBullish(prev) && isBearish(curr)) {
		return false
	}
	return curr.Open < prev.Close && curr.Close > prev.Open
}

// IsPiercingPattern: opens below the previous low and closes above the
// midpoint of the previous falling body.
func IsPiercingPattern(prev, curr model.Candle) bool {
	if !(isBearish(prev) && isBullish(curr)) {
		return false
	}
	return curr.Open < prev.Low && curr.Close > bodyMidpoint(prev)
}

// IsDarkCloudCover: opens above the previous high and closes below the
// midpoint of the previous rising body.
func IsDarkCloudCover(prev, curr model.Candle) bool {
	if !(isBullish(prev) && isBearish(curr)) {
		return false
	}
	return curr.Open > prev.High && curr.Close < bodyMidpoint(prev)
}

// IsTweezerTops: matching highs within 1% of the current high. Candles with
// no range carry no shape and never match.
func IsTweezerTops(prev, curr model.Candle) bool {
	if !hasRange(prev) || !hasRange(curr) {
		return false
	}
	return math.Abs(prev.High-curr.High) < tweezerTolerance*curr.High
}

// IsTweezerBottoms: matching lows within 1% of the current low.
func IsTweezerBottoms(prev, curr model.Candle) bool {
	if !hasRange(prev) || !hasRange(curr) {
		return false
	}
	return math.Abs(prev.Low-curr.Low) < tweezerTolerance*curr.Low
}

func hasRange(c model.Candle) bool { return candleRange(c) > 0 }
