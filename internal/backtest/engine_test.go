package backtest

import (
	"math/rand"
	"testing"
	"time"

	"CandleSentinel/internal/calculator"
	"CandleSentinel/internal/model"
	"CandleSentinel/internal/pattern"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func bar(i int, o, h, l, c float64) model.Candle {
	return model.Candle{Time: t0.Add(time.Duration(i) * time.Minute), Open: o, High: h, Low: l, Close: c, Volume: 1000}
}

func defaultParams() Params {
	return Params{Symbol: "aapl", InitialCapital: 1000, RiskPct: 50, Commission: calculator.FlatFee(1)}
}

// bearish marubozu, bearish marubozu, bullish marubozu
func buySellSeries() model.Series {
	return model.Series{
		bar(0, 10, 10.1, 4.9, 5),
		bar(1, 6, 6.05, 3.95, 4),
		bar(2, 4, 8.05, 3.95, 8),
	}
}

func TestRun_EmptySeries(t *testing.T) {
	res := Run(nil, defaultParams())
	require.NotNil(t, res)
	assert.Empty(t, res.Trades)
	assert.Empty(t, res.Equity)
	assert.Equal(t, 0.0, res.Summary.TotalProfitLoss)
	assert.Equal(t, 1000.0, res.Summary.FinalCapital)
	assert.True(t, res.Summary.Empty())
}

func TestRun_FlatSeriesNoTrades(t *testing.T) {
	series := model.Series{bar(0, 10, 10, 10, 10), bar(1, 10, 10, 10, 10), bar(2, 10, 10, 10, 10)}
	res := Run(series, defaultParams())
	assert.Empty(t, res.Trades)
	assert.Equal(t, 0.0, res.Summary.TotalProfitLoss)
	assert.Len(t, res.Equity, 3)
}

func TestRun_SingleBearishCandleStaysFlat(t *testing.T) {
	series := buySellSeries()[:1]
	occs := pattern.Detect(series)
	require.Len(t, occs, 1)
	assert.Equal(t, model.BearishMarubozu, occs[0].Kind)

	res := Run(series, defaultParams())
	assert.Empty(t, res.Trades)
	assert.Equal(t, 1000.0, res.Summary.FinalCapital)
}

func TestRun_BuyThenSell(t *testing.T) {
	res := Run(buySellSeries(), defaultParams())
	require.Len(t, res.Trades, 2)

	buy, sell := res.Trades[0], res.Trades[1]
	assert.Equal(t, model.ActionBuy, buy.Action)
	assert.Equal(t, "AAPL", buy.Ticker)
	assert.Equal(t, t0.Add(time.Minute), buy.Time)
	assert.Equal(t, int64(125), buy.Quantity) // floor(1000*0.5/4)
	require.NotNil(t, buy.BuyPrice)
	assert.Equal(t, 4.0, *buy.BuyPrice)
	assert.Nil(t, buy.SellPrice)
	assert.Nil(t, buy.ProfitLoss)

	assert.Equal(t, model.ActionSell, sell.Action)
	assert.Equal(t, int64(125), sell.Quantity)
	require.NotNil(t, sell.SellPrice)
	assert.Equal(t, 8.0, *sell.SellPrice)
	assert.Nil(t, sell.BuyPrice)
	require.NotNil(t, sell.ProfitLoss)
	assert.InDelta(t, 499.0, *sell.ProfitLoss, 1e-9)

	assert.InDelta(t, 1498.0, res.Summary.FinalCapital, 1e-9)
	assert.InDelta(t, 498.0, res.Summary.TotalProfitLoss, 1e-9)
	assert.Equal(t, 2, res.Summary.TradeCount)
	assert.Equal(t, t0, res.Summary.From)
	assert.Equal(t, t0.Add(2*time.Minute), res.Summary.To)

	require.Len(t, res.Equity, 3)
	assert.InDelta(t, 1000.0, res.Equity[0].Value, 1e-9)
	assert.InDelta(t, 999.0, res.Equity[1].Value, 1e-9)
	assert.InDelta(t, 1498.0, res.Equity[2].Value, 1e-9)
}

func TestRun_ForcedLiquidationAtEnd(t *testing.T) {
	res := Run(buySellSeries()[:2], defaultParams())
	require.Len(t, res.Trades, 2)
	eod := res.Trades[1]
	assert.Equal(t, model.ActionSellEOD, eod.Action)
	assert.Equal(t, t0.Add(time.Minute), eod.Time)
	require.NotNil(t, eod.ProfitLoss)
	assert.InDelta(t, -1.0, *eod.ProfitLoss, 1e-9)
	assert.InDelta(t, 998.0, res.Summary.FinalCapital, 1e-9)
	assert.InDelta(t, 998.0, res.Equity[len(res.Equity)-1].Value, 1e-9)
}

func TestRun_SizingFailuresSkipTrade(t *testing.T) {
	tests := []struct {
		name   string
		params Params
	}{
		{"quantity rounds to zero", Params{InitialCapital: 3, RiskPct: 50, Commission: calculator.FlatFee(1)}},
		{"commission exceeds capital", Params{InitialCapital: 1000, RiskPct: 100, Commission: calculator.FlatFee(5)}},
		{"negative risk", Params{InitialCapital: 1000, RiskPct: -10, Commission: calculator.FlatFee(1)}},
		{"zero capital", Params{InitialCapital: 0, RiskPct: 50}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Run(buySellSeries(), tt.params)
			assert.Empty(t, res.Trades)
			assert.Equal(t, 0.0, res.Summary.TotalProfitLoss)
		})
	}
}

func TestRun_NilCommissionIsFree(t *testing.T) {
	p := defaultParams()
	p.Commission = nil
	res := Run(buySellSeries(), p)
	require.Len(t, res.Trades, 2)
	assert.InDelta(t, 500.0, *res.Trades[1].ProfitLoss, 1e-9)
	assert.InDelta(t, 1500.0, res.Summary.FinalCapital, 1e-9)
}

func TestRun_StateChoosesBranchWhenBothSignalsFire(t *testing.T) {
	// candles 1 and 2 are each both an inverted hammer (bullish) and a
	// shooting star (bearish)
	series := model.Series{
		bar(0, 10, 10, 10, 10),
		bar(1, 10, 13.1, 9.9, 11),
		bar(2, 11, 14.1, 10.9, 12),
	}
	res := Run(series, defaultParams())
	require.Len(t, res.Trades, 2)
	assert.Equal(t, model.ActionBuy, res.Trades[0].Action)
	assert.Equal(t, int64(45), res.Trades[0].Quantity)
	assert.Equal(t, model.ActionSell, res.Trades[1].Action)
	assert.InDelta(t, 44.0, *res.Trades[1].ProfitLoss, 1e-9) // 45*12-1 - 45*11
}

func TestRunWithPatterns_UsesGivenOccurrences(t *testing.T) {
	series := model.Series{bar(0, 10, 10, 10, 10), bar(1, 10, 10, 10, 10), bar(2, 20, 20, 20, 20)}
	occs := []model.Occurrence{
		{Kind: model.DarkCloudCover, Indices: []int{0, 1}, Anchor: 1},
		{Kind: model.BearishEngulfing, Indices: []int{0, 1}, Anchor: 1},
		{Kind: model.Hammer, Indices: []int{2}, Anchor: 2},
	}
	res := RunWithPatterns(series, occs, defaultParams())
	require.Len(t, res.Trades, 2)
	assert.Equal(t, model.ActionBuy, res.Trades[0].Action)
	assert.Equal(t, int64(50), res.Trades[0].Quantity)
	assert.Equal(t, model.ActionSell, res.Trades[1].Action)
	assert.InDelta(t, 499.0, *res.Trades[1].ProfitLoss, 1e-9)
}

func randomWalk(n int, seed int64) model.Series {
	rng := rand.New(rand.NewSource(seed))
	s := make(model.Series, n)
	price := 50.0
	for i := range s {
		o := price
		c := o + (rng.Float64()-0.5)*2
		if c < 1 {
			c = 1
		}
		h := max(o, c) + rng.Float64()*1.5
		l := min(o, c) - rng.Float64()*1.5
		if l < 0.5 {
			l = 0.5
		}
		s[i] = bar(i, o, h, l, c)
		price = c
	}
	return s
}

func TestRun_LedgerInvariants(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		series := randomWalk(390, seed)
		p := Params{Symbol: "spy", InitialCapital: 10000, RiskPct: 30, Commission: calculator.FlatFee(1)}
		res := Run(series, p)

		var buys int
		var plSum float64
		open := false
		for i, tr := range res.Trades {
			assert.Greater(t, tr.Quantity, int64(0), "seed %d trade %d", seed, i)
			switch tr.Action {
			case model.ActionBuy:
				assert.False(t, open, "seed %d: buy while long", seed)
				open = true
				buys++
			case model.ActionSell:
				assert.True(t, open, "seed %d: sell while flat", seed)
				open = false
				plSum += *tr.ProfitLoss
			case model.ActionSellEOD:
				assert.True(t, open, "seed %d: eod while flat", seed)
				assert.Equal(t, len(res.Trades)-1, i, "seed %d: eod must be last", seed)
				open = false
				plSum += *tr.ProfitLoss
			}
		}
		assert.False(t, open, "seed %d: position left open", seed)
		assert.Equal(t, len(res.Trades), res.Summary.TradeCount)
		// per-trade P/L excludes the entry commission
		assert.InDelta(t, plSum-float64(buys), res.Summary.TotalProfitLoss, 1e-6, "seed %d", seed)
		assert.InDelta(t, res.Summary.FinalCapital, res.Equity[len(res.Equity)-1].Value, 1e-6)
	}
}

func TestRun_Deterministic(t *testing.T) {
	series := randomWalk(200, 7)
	assert.Equal(t, Run(series, defaultParams()), Run(series, defaultParams()))
}

func TestSignals(t *testing.T) {
	bearish := []model.PatternKind{model.BearishMarubozu, model.BearishEngulfing, model.BearishHarami, model.ShootingStar, model.EveningStar}
	bullish := []model.PatternKind{model.BullishMarubozu, model.BullishEngulfing, model.BullishHarami, model.Hammer, model.MorningStar, model.InvertedHammer}
	neutral := []model.PatternKind{model.Doji, model.SpinningTop, model.PiercingPattern, model.DarkCloudCover, model.TweezerTops, model.TweezerBottoms}

	for _, k := range bearish {
		assert.True(t, IsBearishSignal(k), k)
		assert.False(t, IsBullishSignal(k), k)
	}
	for _, k := range bullish {
		assert.True(t, IsBullishSignal(k), k)
		assert.False(t, IsBearishSignal(k), k)
	}
	for _, k := range neutral {
		assert.False(t, IsBullishSignal(k), k)
		assert.False(t, IsBearishSignal(k), k)
	}
}
