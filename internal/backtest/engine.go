// Package backtest replays a candle series against detected patterns with a
// single long-or-flat position and reports the resulting trade ledger.
package backtest

import (
	"strings"

	"CandleSentinel/internal/calculator"
	"CandleSentinel/internal/model"
	"CandleSentinel/internal/pattern"
)

// Params configures one run. No bounds are enforced: values that make sizing
// impossible simply produce no trades.
type Params struct {
	Symbol         string
	InitialCapital float64
	RiskPct        float64
	Commission     calculator.CommissionSchedule
}

func (p Params) fee(notional float64) float64 {
	if p.Commission == nil {
		return 0
	}
	return p.Commission.Fee(notional)
}

// Result is the outcome of one run.
type Result struct {
	Trades  []model.Trade       `json:"trades"`
	Equity  []model.EquityPoint `json:"equity"`
	Summary model.Summary       `json:"summary"`
}

// Run detects patterns in series and replays them.
func Run(series model.Series, p Params) *Result {
	return RunWithPatterns(series, pattern.Detect(series), p)
}

// RunWithPatterns replays series against occurrences the caller already has.
func RunWithPatterns(series model.Series, occs []model.Occurrence, p Params) *Result {
	p.Symbol = strings.ToUpper(strings.TrimSpace(p.Symbol))
	byAnchor := pattern.AnchoredAt(occs)

	res := &Result{
		Trades: []model.Trade{},
		Equity: make([]model.EquityPoint, 0, len(series)),
	}
	st := State{Capital: p.InitialCapital}

	for i, c := range series {
		var tr *model.Trade
		st, tr = step(st, i, c, byAnchor[i], p)
		if tr != nil {
			res.Trades = append(res.Trades, *tr)
		}
		res.Equity = append(res.Equity, model.EquityPoint{Time: c.Time, Value: st.Equity(c.Close)})
	}

	if last, ok := series.Last(); ok {
		var tr *model.Trade
		st, tr = finalize(st, last, p)
		if tr != nil {
			res.Trades = append(res.Trades, *tr)
			res.Equity[len(res.Equity)-1].Value = st.Capital
		}
	}

	res.Summary = model.Summary{
		Symbol:          p.Symbol,
		InitialCapital:  p.InitialCapital,
		FinalCapital:    st.Capital,
		TotalProfitLoss: st.Capital - p.InitialCapital,
		TradeCount:      len(res.Trades),
	}
	if first, ok := series.First(); ok {
		res.Summary.From = first.Time
	}
	if last, ok := series.Last(); ok {
		res.Summary.To = last.Time
	}
	return res
}
