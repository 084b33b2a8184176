package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CandleSentinel/internal/calculator"
	"CandleSentinel/internal/collector"
	"CandleSentinel/internal/fund"
	"CandleSentinel/internal/market"
	"CandleSentinel/internal/model"
	"CandleSentinel/internal/publisher"
	"CandleSentinel/internal/recorder"
	"CandleSentinel/internal/scheduler"
)

var t0 = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func bar(i int, o, h, l, c float64) model.Candle {
	return model.Candle{Time: t0.Add(time.Duration(i) * time.Minute), Open: o, High: h, Low: l, Close: c}
}

func session() model.Series {
	return model.Series{
		bar(0, 10, 10.1, 4.9, 5),
		bar(1, 6, 6.05, 3.95, 4),
		bar(2, 4, 8.05, 3.95, 8),
	}
}

func newTestServer(t *testing.T, fetcher collector.Fetcher) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	rec, err := recorder.NewSQLiteRecorder(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	settings, err := fund.NewManager("", fund.Settings{
		Symbol: "IBM", InitialCapital: 1000, RiskPct: 50, GreedPct: 20, Platform: calculator.GenericUSPlatform,
	})
	require.NoError(t, err)

	runner := &scheduler.Runner{
		Collector: collector.NewCollector(fetcher, nil, "1min", false),
		Settings:  settings,
		Recorder:  rec,
		Publisher: publisher.NoopPublisher{},
	}
	return New(":0", runner, market.NYSE(), true)
}

func do(t *testing.T, s *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	w := do(t, s, http.MethodGet, "/api/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func TestMarketStatus(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	loc := s.calendar.Location()
	s.now = func() time.Time { return time.Date(2025, 3, 15, 12, 0, 0, 0, loc) }

	w := do(t, s, http.MethodGet, "/api/market/status", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode[map[string]any](t, w)
	assert.Equal(t, false, body["open"])
	assert.Contains(t, body["message"], "Market closed")
}

func TestPatterns(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	w := do(t, s, http.MethodPost, "/api/patterns", patternsRequest{Candles: session()})
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Patterns []model.Occurrence `json:"patterns"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.Patterns)
	assert.Equal(t, model.BearishMarubozu, body.Patterns[0].Kind)
}

func TestPatterns_Empty(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	w := do(t, s, http.MethodPost, "/api/patterns", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"patterns":[]`)
}

func TestPatterns_BadJSON(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	req := httptest.NewRequest(http.MethodPost, "/api/patterns", bytes.NewBufferString("{"))
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestBacktest_WithCandles(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	w := do(t, s, http.MethodPost, "/api/backtest", map[string]any{
		"symbol":     "aapl",
		"capital":    1000,
		"risk":       50,
		"commission": 1,
		"candles":    session(),
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	resp := decode[runResponse](t, w)
	assert.Equal(t, "AAPL", resp.Summary.Symbol)
	assert.Equal(t, 1498.0, resp.Summary.FinalCapital)
	assert.Len(t, resp.Trades, 2)
	assert.Len(t, resp.Equity, 3)
	assert.Contains(t, resp.Analysis, "Intraday Simulation for AAPL (Reversed Logic)")
	assert.Equal(t, "Buy", resp.Markers[0].Type)
	assert.NotEmpty(t, resp.RunID)

	latest := do(t, s, http.MethodGet, "/api/runs/latest?symbol=aapl", nil)
	require.Equal(t, http.StatusOK, latest.Code)
	assert.Equal(t, resp.RunID, decode[runResponse](t, latest).RunID)
}

func TestBacktest_EmptyCandles(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	w := do(t, s, http.MethodPost, "/api/backtest", map[string]any{"symbol": "IBM", "candles": []any{}})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[runResponse](t, w)
	assert.Empty(t, resp.Trades)
	assert.Equal(t, 1000.0, resp.Summary.FinalCapital)
	assert.Contains(t, resp.Analysis, "Date Range: N/A")
}

func TestBacktest_FetchesWhenNoCandles(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{Intraday: session()})
	w := do(t, s, http.MethodPost, "/api/backtest", map[string]any{})
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[runResponse](t, w)
	assert.Equal(t, "mock", resp.Source)
	assert.Equal(t, "IBM", resp.Summary.Symbol)
}

func TestBacktest_Validation(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	for _, body := range []map[string]any{
		{"risk": 0.0 - 1},
		{"risk": 120},
		{"capital": -5},
		{"commission": -1},
	} {
		w := do(t, s, http.MethodPost, "/api/backtest", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestBacktest_FetchErrors(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{collector.ErrRateLimited, http.StatusTooManyRequests},
		{collector.ErrNoData, http.StatusNotFound},
		{context.DeadlineExceeded, http.StatusBadGateway},
	}
	for _, tt := range tests {
		s := newTestServer(t, &collector.MockFetcher{Err: tt.err})
		w := do(t, s, http.MethodPost, "/api/backtest", map[string]any{"symbol": "IBM"})
		assert.Equal(t, tt.want, w.Code, tt.err.Error())
	}
}

func TestLatestRun_NotFound(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	w := do(t, s, http.MethodGet, "/api/runs/latest", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPlatformsAndSettings(t *testing.T) {
	s := newTestServer(t, &collector.MockFetcher{})
	w := do(t, s, http.MethodGet, "/api/platforms", nil)
	assert.Contains(t, w.Body.String(), calculator.GenericUSPlatform)

	w = do(t, s, http.MethodGet, "/api/settings", nil)
	st := decode[fund.Settings](t, w)
	assert.Equal(t, "IBM", st.Symbol)
}
