package backtest

import (
	"CandleSentinel/internal/calculator"
	"CandleSentinel/internal/model"
)

// State is the per-run account, threaded by value through the candle walk.
type State struct {
	Capital    float64
	Long       bool
	EntryPrice float64
	Shares     int64
}

// Equity marks the account to price.
func (s State) Equity(price float64) float64 {
	if !s.Long {
		return s.Capital
	}
	return s.Capital + float64(s.Shares)*price
}

// step applies one candle. Flat positions buy into bearish signals and long
// positions sell into bullish ones; the current state decides which of the
// two is considered, so at most one trade fires per candle. Entry signals are
// ignored on the first candle of the series.
func step(st State, i int, c model.Candle, occs []model.Occurrence, p Params) (State, *model.Trade) {
	switch {
	case !st.Long && i > 0 && anySignal(occs, IsBearishSignal):
		return enter(st, c, p)
	case st.Long && anySignal(occs, IsBullishSignal):
		return exit(st, c, p, model.ActionSell)
	}
	return st, nil
}

func enter(st State, c model.Candle, p Params) (State, *model.Trade) {
	qty := calculator.TradeQuantity(st.Capital, p.RiskPct, c.Close)
	if qty <= 0 {
		return st, nil
	}
	notional := float64(qty) * c.Close
	cost := notional + p.fee(notional)
	if !(cost <= st.Capital) {
		return st, nil
	}

	price := c.Close
	next := State{
		Capital:    st.Capital - cost,
		Long:       true,
		EntryPrice: price,
		Shares:     qty,
	}
	return next, &model.Trade{
		Time:     c.Time,
		Action:   model.ActionBuy,
		Ticker:   p.Symbol,
		BuyPrice: &price,
		Quantity: qty,
	}
}

func exit(st State, c model.Candle, p Params, action model.Action) (State, *model.Trade) {
	notional := float64(st.Shares) * c.Close
	proceeds := notional - p.fee(notional)
	pl := proceeds - float64(st.Shares)*st.EntryPrice

	price := c.Close
	trade := &model.Trade{
		Time:       c.Time,
		Action:     action,
		Ticker:     p.Symbol,
		SellPrice:  &price,
		Quantity:   st.Shares,
		ProfitLoss: &pl,
	}
	return State{Capital: st.Capital + proceeds}, trade
}

// finalize liquidates a position left open after the last candle.
func finalize(st State, last model.Candle, p Params) (State, *model.Trade) {
	if !st.Long {
		return st, nil
	}
	return exit(st, last, p, model.ActionSellEOD)
}
