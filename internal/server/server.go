// Package server exposes pattern detection and backtesting over a JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"CandleSentinel/internal/market"
	"CandleSentinel/internal/scheduler"
)

// Server is the HTTP front end.
type Server struct {
	engine   *gin.Engine
	runner   *scheduler.Runner
	calendar *market.Calendar
	now      func() time.Time
	http     *http.Server
}

// New builds the router. debug switches gin out of release mode.
func New(addr string, runner *scheduler.Runner, cal *market.Calendar, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), requestLogger())

	s := &Server{
		engine:   engine,
		runner:   runner,
		calendar: cal,
		now:      time.Now,
	}
	s.http = &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.getHealth)
	api.GET("/market/status", s.getMarketStatus)
	api.GET("/platforms", s.getPlatforms)
	api.GET("/settings", s.getSettings)
	api.POST("/patterns", s.postPatterns)
	api.POST("/backtest", s.postBacktest)
	api.GET("/runs/latest", s.getLatestRun)
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.engine }

// Start blocks serving HTTP until Shutdown is called.
func (s *Server) Start() error {
	log.Info().Str("addr", s.http.Addr).Msg("http server listening")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Debug().Str("method", c.Request.Method).Str("path", c.FullPath()).
			Int("status", c.Writer.Status()).Dur("took", time.Since(start)).Msg("http request")
	}
}
