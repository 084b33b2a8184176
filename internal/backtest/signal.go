package backtest

import (
	"strings"

	"CandleSentinel/internal/model"
)

// IsBearishSignal reports whether kind counts as bearish for the strategy:
// any "Bearish ..." kind, Shooting Star or Evening Star.
func IsBearishSignal(kind model.PatternKind) bool {
	switch kind {
	case model.ShootingStar, model.EveningStar:
		return true
	}
	return strings.Contains(string(kind), "Bearish")
}

// IsBullishSignal reports whether kind counts as bullish for the strategy:
// any "Bullish ..." kind, Hammer, Morning Star or Inverted Hammer.
func IsBullishSignal(kind model.PatternKind) bool {
	switch kind {
	case model.Hammer, model.MorningStar, model.InvertedHammer:
		return true
	}
	return strings.Contains(string(kind), "Bullish")
}

func anySignal(occs []model.Occurrence, is func(model.PatternKind) bool) bool {
	for _, o := range occs {
		if is(o.Kind) {
			return true
		}
	}
	return false
}
