package calculator

import (
	"errors"
	"math"

	"CandleSentinel/internal/model"

	talib "github.com/markcheno/go-talib"
)

var (
	errNotEnoughData = errors.New("not enough data")
	errNotFinite     = errors.New("indicator is not finite")
)

func latest(out []float64) (float64, error) {
	v := out[len(out)-1]
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// SMA returns the latest simple moving average of closes over period.
func SMA(series model.Series, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(series) < period {
		return 0, errNotEnoughData
	}
	return latest(talib.Sma(series.Closes(), period))
}

// RSI returns the latest Wilder RSI of closes. Needs period+1 candles.
func RSI(series model.Series, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(series) < period+1 {
		return 0, errNotEnoughData
	}
	return latest(talib.Rsi(series.Closes(), period))
}

// ATR returns the latest average true range. Needs period+1 candles.
func ATR(series model.Series, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(series) < period+1 {
		return 0, errNotEnoughData
	}
	highs := make([]float64, len(series))
	lows := make([]float64, len(series))
	for i, c := range series {
		highs[i] = c.High
		lows[i] = c.Low
	}
	return latest(talib.Atr(highs, lows, series.Closes(), period))
}

// SessionRange scans the whole series for its high and low.
func SessionRange(series model.Series) (high, low float64, err error) {
	if len(series) == 0 {
		return 0, 0, errors.New("no candles provided")
	}
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, c := range series {
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
	}
	if math.IsInf(high, 0) || math.IsInf(low, 0) {
		return 0, 0, errNotFinite
	}
	return high, low, nil
}

// RangePosition returns where current sits within [low, high] (0.0~1.0).
func RangePosition(current, high, low float64) (float64, error) {
	if high == low {
		return 0.5, nil
	}
	if high < low {
		return 0, errors.New("high must be >= low")
	}
	pos := (current - low) / (high - low)
	if math.IsNaN(pos) {
		return 0, errNotFinite
	}
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}
	return pos, nil
}
