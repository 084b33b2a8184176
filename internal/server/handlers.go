package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"CandleSentinel/internal/calculator"
	"CandleSentinel/internal/collector"
	"CandleSentinel/internal/model"
	"CandleSentinel/internal/notifier"
	"CandleSentinel/internal/pattern"
	"CandleSentinel/internal/recorder"
	"CandleSentinel/internal/scheduler"
)

type patternsRequest struct {
	Candles model.Series `json:"candles"`
}

type backtestRequest struct {
	Symbol     string       `json:"symbol" binding:"omitempty,max=12"`
	Capital    *float64     `json:"capital" binding:"omitempty,gt=0"`
	Risk       *float64     `json:"risk" binding:"omitempty,gt=0,lte=100"`
	Greed      *float64     `json:"greed" binding:"omitempty,gte=0"`
	Commission *float64     `json:"commission" binding:"omitempty,gte=0"`
	Platform   string       `json:"platform"`
	Candles    model.Series `json:"candles"`
}

type runResponse struct {
	RunID    string              `json:"run_id"`
	Source   string              `json:"source"`
	Summary  model.Summary       `json:"summary"`
	Analysis string              `json:"analysis"`
	TradeLog string              `json:"trade_log"`
	Trades   []model.Trade       `json:"trades"`
	Equity   []model.EquityPoint `json:"equity"`
	Patterns []model.Occurrence  `json:"patterns"`
	Markers  []notifier.Marker   `json:"markers"`
	Stats    model.SessionStats  `json:"stats"`
}

func newRunResponse(run *model.RunRecord) runResponse {
	return runResponse{
		RunID:    run.ID,
		Source:   run.Source,
		Summary:  run.Summary,
		Analysis: notifier.FormatAnalysis(run.Summary),
		TradeLog: notifier.FormatTradeLog(run.Trades),
		Trades:   run.Trades,
		Equity:   run.Equity,
		Patterns: run.Patterns,
		Markers:  notifier.Markers(run.Series, run.Trades, run.Patterns),
		Stats:    calculator.Stats(run.Series),
	}
}

func errorJSON(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "time": s.now()})
}

func (s *Server) getMarketStatus(c *gin.Context) {
	st := s.calendar.Status(s.now())
	c.JSON(http.StatusOK, gin.H{
		"open":      st.Open,
		"now":       st.Now,
		"next_open": st.NextOpen,
		"countdown": st.Countdown.String(),
		"message":   notifier.FormatMarketStatus(st),
	})
}

func (s *Server) getPlatforms(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"platforms": calculator.Platforms()})
}

func (s *Server) getSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.runner.Settings.GetState())
}

func (s *Server) postPatterns(c *gin.Context) {
	var req patternsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}
	occs := pattern.Detect(req.Candles)
	c.JSON(http.StatusOK, gin.H{
		"patterns": occs,
		"markers":  notifier.Markers(req.Candles, nil, occs),
	})
}

func (s *Server) postBacktest(c *gin.Context) {
	var req backtestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorJSON(c, http.StatusBadRequest, err)
		return
	}

	settings := s.runner.Settings.GetState()
	if req.Capital != nil {
		settings.InitialCapital = *req.Capital
	}
	if req.Risk != nil {
		settings.RiskPct = *req.Risk
	}
	if req.Greed != nil {
		settings.GreedPct = *req.Greed
	}
	if req.Platform != "" {
		settings.Platform = req.Platform
		settings.Commission = nil
	}
	if req.Commission != nil {
		settings.Commission = req.Commission
	}

	run, err := s.runner.Run(c.Request.Context(), scheduler.Request{
		Symbol:   req.Symbol,
		Settings: &settings,
		Series:   req.Candles,
	})
	if err != nil {
		errorJSON(c, fetchStatus(err), err)
		return
	}
	c.JSON(http.StatusOK, newRunResponse(run))
}

func (s *Server) getLatestRun(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Query("symbol")))
	run, err := s.runner.Recorder.LatestRun(c.Request.Context(), symbol)
	if errors.Is(err, recorder.ErrNotFound) {
		errorJSON(c, http.StatusNotFound, err)
		return
	}
	if err != nil {
		errorJSON(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, newRunResponse(run))
}

func fetchStatus(err error) int {
	switch {
	case errors.Is(err, collector.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, collector.ErrNoData):
		return http.StatusNotFound
	default:
		return http.StatusBadGateway
	}
}
