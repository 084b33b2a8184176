package calculator

import "math"

// TradeQuantity returns how many whole shares riskPct percent of capital buys
// at price. Any non-finite or non-positive outcome is 0.
func TradeQuantity(capital, riskPct, price float64) int64 {
	q := math.Floor(capital * (riskPct / 100) / price)
	if math.IsNaN(q) || q <= 0 || q >= math.MaxInt64 {
		return 0
	}
	return int64(q)
}

// StopLoss places the stop riskPct percent below price.
func StopLoss(price, riskPct float64) float64 {
	return price * (1 - riskPct/100)
}

// TargetPrice places the take-profit greedPct percent above price.
func TargetPrice(price, greedPct float64) float64 {
	return price * (1 + greedPct/100)
}
