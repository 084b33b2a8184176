package scheduler

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CandleSentinel/internal/calculator"
	"CandleSentinel/internal/collector"
	"CandleSentinel/internal/fund"
	"CandleSentinel/internal/market"
	"CandleSentinel/internal/model"
	"CandleSentinel/internal/publisher"
	"CandleSentinel/internal/recorder"
)

var t0 = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func bar(i int, o, h, l, c float64) model.Candle {
	return model.Candle{Time: t0.Add(time.Duration(i) * time.Minute), Open: o, High: h, Low: l, Close: c, Volume: 1000}
}

// bearish marubozu, bearish marubozu, bullish marubozu
func session() model.Series {
	return model.Series{
		bar(0, 10, 10.1, 4.9, 5),
		bar(1, 6, 6.05, 3.95, 4),
		bar(2, 4, 8.05, 3.95, 8),
	}
}

type captureSender struct {
	mu   sync.Mutex
	msgs []string
}

func (c *captureSender) Send(_ context.Context, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, text)
	return nil
}

type capturePublisher struct {
	publisher.NoopPublisher
	runID  string
	trades []model.Trade
}

func (c *capturePublisher) PublishTrades(_ context.Context, runID, _ string, trades []model.Trade) error {
	c.runID, c.trades = runID, trades
	return nil
}

type fixture struct {
	sched  *Scheduler
	sender *captureSender
	pub    *capturePublisher
	rec    *recorder.SQLRecorder
	mock   *collector.MockFetcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	settings, err := fund.NewManager("", fund.Settings{
		Symbol: "IBM", InitialCapital: 1000, RiskPct: 50, GreedPct: 20, Platform: calculator.GenericUSPlatform,
	})
	require.NoError(t, err)

	mock := &collector.MockFetcher{Intraday: session()}
	pub := &capturePublisher{}
	runner := &Runner{
		Collector: collector.NewCollector(mock, nil, "1min", false),
		Settings:  settings,
		Recorder:  rec,
		Publisher: pub,
	}
	sender := &captureSender{}
	s := NewScheduler(context.Background(), runner, market.NYSE(), sender)
	return &fixture{sched: s, sender: sender, pub: pub, rec: rec, mock: mock}
}

func TestRunner_Run(t *testing.T) {
	f := newFixture(t)
	run, err := f.sched.Runner.Run(context.Background(), Request{})
	require.NoError(t, err)

	assert.Equal(t, "IBM", run.Symbol)
	assert.Equal(t, "mock", run.Source)
	assert.NotEmpty(t, run.ID)
	require.Len(t, run.Trades, 2)
	assert.Equal(t, 1498.0, run.Summary.FinalCapital)
	assert.Equal(t, 498.0, run.Summary.TotalProfitLoss)
	assert.Equal(t, 50.0, run.Params.RiskPct)

	assert.Equal(t, run.ID, f.pub.runID)
	assert.Len(t, f.pub.trades, 2)

	stored, err := f.rec.LatestRun(context.Background(), "IBM")
	require.NoError(t, err)
	assert.Equal(t, run.ID, stored.ID)
}

func TestRunner_RunWithRequestSeries(t *testing.T) {
	f := newFixture(t)
	f.mock.Err = errors.New("should not be called")

	st := f.sched.Runner.Settings.GetState()
	st.Commission = new(float64)
	run, err := f.sched.Runner.Run(context.Background(), Request{Symbol: "msft", Settings: &st, Series: session()})
	require.NoError(t, err)
	assert.Equal(t, "MSFT", run.Symbol)
	assert.Equal(t, "request", run.Source)
	assert.Equal(t, 1500.0, run.Summary.FinalCapital)
}

func TestRunner_FetchError(t *testing.T) {
	f := newFixture(t)
	f.mock.Err = collector.ErrRateLimited
	_, err := f.sched.Runner.Run(context.Background(), Request{})
	assert.ErrorIs(t, err, collector.ErrRateLimited)
}

func TestHandleCommand_Backtest(t *testing.T) {
	f := newFixture(t)
	reply := f.sched.HandleCommand(context.Background(), "/backtest aapl")
	assert.Empty(t, reply)
	require.Len(t, f.sender.msgs, 1)
	assert.Contains(t, f.sender.msgs[0], "Intraday Simulation for AAPL (Reversed Logic)")

	last := f.sched.HandleCommand(context.Background(), "/last aapl")
	assert.Contains(t, last, "Final Capital: $1498.00")
}

func TestHandleCommand_BacktestFailure(t *testing.T) {
	f := newFixture(t)
	f.mock.Err = errors.New("offline")
	f.sched.HandleCommand(context.Background(), "/backtest")
	require.Len(t, f.sender.msgs, 1)
	assert.Contains(t, f.sender.msgs[0], "Backtest failed")
}

func TestHandleCommand_Last_Empty(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, "No recorded runs yet.", f.sched.HandleCommand(context.Background(), "/last"))
}

func TestHandleCommand_Settings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	reply := f.sched.HandleCommand(ctx, "/set capital 2500")
	assert.Contains(t, reply, "Capital: $2500.00")

	reply = f.sched.HandleCommand(ctx, "/set platform Generic US Platform")
	assert.Contains(t, reply, "Commission: Generic US Platform")

	reply = f.sched.HandleCommand(ctx, "/set risk 400")
	assert.Contains(t, reply, "❌")

	reply = f.sched.HandleCommand(ctx, "/set risk")
	assert.Contains(t, reply, "Usage")

	reply = f.sched.HandleCommand(ctx, "/reset")
	assert.Contains(t, reply, "Capital: $1000.00")
}

func TestHandleCommand_StatusAndHelp(t *testing.T) {
	f := newFixture(t)
	loc := f.sched.Calendar.Location()
	f.sched.Now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, loc) }

	assert.Contains(t, f.sched.HandleCommand(context.Background(), "/status"), "Market closed")
	assert.Contains(t, f.sched.HandleCommand(context.Background(), "hello"), "/backtest")
	assert.Contains(t, f.sched.HandleCommand(context.Background(), ""), "/backtest")
}

func TestBacktestTask_SkipsNonTradingDay(t *testing.T) {
	f := newFixture(t)
	loc := f.sched.Calendar.Location()

	f.sched.Now = func() time.Time { return time.Date(2025, 3, 15, 16, 5, 0, 0, loc) }
	f.sched.backtestTask()
	assert.Empty(t, f.sender.msgs)

	f.sched.Now = func() time.Time { return time.Date(2025, 3, 14, 16, 5, 0, 0, loc) }
	f.sched.backtestTask()
	assert.Len(t, f.sender.msgs, 1)
}

func TestRegister(t *testing.T) {
	f := newFixture(t)
	assert.NoError(t, f.sched.Register("0 5 16 * * 1-5"))
	assert.Error(t, f.sched.Register("not a cron"))
}
