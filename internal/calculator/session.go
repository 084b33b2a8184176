package calculator

import (
	"CandleSentinel/internal/model"

	"github.com/rs/zerolog/log"
)

// Stats computes indicator context for the last candle. Indicators that lack
// data fall back to neutral values instead of failing the whole report.
func Stats(series model.Series) model.SessionStats {
	last, ok := series.Last()
	if !ok {
		return model.SessionStats{RSI14: 50, Position: 0.5}
	}
	st := model.SessionStats{LastClose: last.Close}

	if v, err := SMA(series, 20); err != nil {
		log.Debug().Err(err).Msg("SMA20 unavailable, using last close")
		st.SMA20 = last.Close
	} else {
		st.SMA20 = v
	}

	if v, err := RSI(series, 14); err != nil {
		log.Debug().Err(err).Msg("RSI14 unavailable, defaulting to 50")
		st.RSI14 = 50
	} else {
		st.RSI14 = v
	}

	if v, err := ATR(series, 14); err != nil {
		log.Debug().Err(err).Msg("ATR14 unavailable, defaulting to 0")
	} else {
		st.ATR14 = v
	}

	if h, l, err := SessionRange(series); err == nil {
		st.High, st.Low = h, l
	}
	if pos, err := RangePosition(last.Close, st.High, st.Low); err != nil {
		log.Warn().Err(err).Msg("range position unavailable")
		st.Position = 0.5
	} else {
		st.Position = pos
	}
	return st
}
