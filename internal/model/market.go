package model

import "time"

// Candle is one sampling interval of price action.
type Candle struct {
	Time   time.Time `json:"time"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// Series is a chronologically ordered run of candles for one instrument.
type Series []Candle

// First returns the first candle and false when the series is empty.
func (s Series) First() (Candle, bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[0], true
}

// Last returns the last candle and false when the series is empty.
func (s Series) Last() (Candle, bool) {
	if len(s) == 0 {
		return Candle{}, false
	}
	return s[len(s)-1], true
}

// Closes extracts the close prices in order.
func (s Series) Closes() []float64 {
	out := make([]float64, len(s))
	for i, c := range s {
		out[i] = c.Close
	}
	return out
}

// SessionStats holds indicator context for the last candle of a series.
type SessionStats struct {
	LastClose float64 `json:"last_close"`
	SMA20     float64 `json:"sma20"`
	RSI14     float64 `json:"rsi14"`
	ATR14     float64 `json:"atr14"`
	High      float64 `json:"high"`
	Low       float64 `json:"low"`
	Position  float64 `json:"position"` // 0.0 ~ 1.0 within [Low, High]
}
