package pattern

import "CandleSentinel/internal/model"

// IsDoji: body under 10% of the range.
func IsDoji(c model.Candle) bool {
	ratio, ok := bodyRatio(c)
	return ok && ratio < 0.1
}

// IsHammer: long lower shadow (over twice the body) and an upper shadow
// shorter than the body.
func IsHammer(c model.Candle) bool {
	body := bodySize(c)
	return lowerShadow(c) > 2*body && upperShadow(c) < body
}

// IsInvertedHammer: long upper shadow and a lower shadow shorter than the body.
func IsInvertedHammer(c model.Candle) bool {
	body := bodySize(c)
	return upperShadow(c) > 2*body && lowerShadow(c) < body
}

// IsShootingStar has the same geometry as IsInvertedHammer. The two are kept
// apart because the backtest reads one as bullish and the other as bearish.
func IsShootingStar(c model.Candle) bool {
	body := bodySize(c)
	return upperShadow(c) > 2*body && lowerShadow(c) < body
}

// IsSpinningTop: body between 10% and 30% of the range, inclusive.
func IsSpinningTop(c model.Candle) bool {
	ratio, ok := bodyRatio(c)
	return ok && ratio >= 0.1 && ratio <= 0.3
}

// IsBullishMarubozu: rising candle whose shadows are each under 10% of the body.
func IsBullishMarubozu(c model.Candle) bool {
	body := c.Close - c.Open
	if body <= 0 {
		return false
	}
	return (c.Open-c.Low)/body < 0.1 && (c.High-c.Close)/body < 0.1
}

// IsBearishMarubozu mirrors IsBullishMarubozu for a falling candle.
func IsBearishMarubozu(c model.Candle) bool {
	body := c.Open - c.Close
	if body <= 0 {
		return false
	}
	return (c.Close-c.Low)/body < 0.1 && (c.High-c.Open)/body < 0.1
}
