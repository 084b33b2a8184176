package pattern

import "CandleSentinel/internal/model"

// starBodyRatio is the largest body/range ratio the middle candle of a star may have.
const starBodyRatio = 0.3

func smallBody(c model.Candle) bool {
	ratio, ok := bodyRatio(c)
	return ok && ratio < starBodyRatio
}

// IsMorningStar: falling candle, small-bodied pause, then a rising candle
// closing above the first candle's body midpoint.
func IsMorningStar(c1, c2, c3 model.Candle) bool {
	if !(isBearish(c1) && isBullish(c3)) {
		return false
	}
	return smallBody(c2) && c3.Close > bodyMidpoint(c1)
}

// IsEveningStar mirrors IsMorningStar at a top.
func IsEveningStar(c1, c2, c3 model.Candle) bool {
	if !(isBullish(c1) && isBearish(c3)) {
		return false
	}
	return smallBody(c2) && c3.Close < bodyMidpoint(c1)
}
