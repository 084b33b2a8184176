package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"CandleSentinel/internal/calculator"
	"CandleSentinel/internal/fund"
	"CandleSentinel/internal/market"
	"CandleSentinel/internal/notifier"
	"CandleSentinel/internal/recorder"
)

// Scheduler manages cron tasks and chat commands.
type Scheduler struct {
	Cron     *cron.Cron
	Runner   *Runner
	Calendar *market.Calendar
	Notifier notifier.Sender
	Ctx      context.Context
	Now      func() time.Time
}

// NewScheduler creates a new Scheduler whose cron expressions are read in
// the exchange time zone.
func NewScheduler(ctx context.Context, runner *Runner, cal *market.Calendar, sender notifier.Sender) *Scheduler {
	return &Scheduler{
		Cron:     cron.New(cron.WithSeconds(), cron.WithLocation(cal.Location())),
		Runner:   runner,
		Calendar: cal,
		Notifier: sender,
		Ctx:      ctx,
		Now:      time.Now,
	}
}

// Register adds the post-close backtest job.
func (s *Scheduler) Register(backtestCron string) error {
	if _, err := s.Cron.AddFunc(backtestCron, s.backtestTask); err != nil {
		return fmt.Errorf("register backtest task: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (s *Scheduler) Start() {
	s.Cron.Start()
	log.Info().Msg("scheduler started")
}

// Stop stops the cron scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	<-s.Cron.Stop().Done()
	log.Info().Msg("scheduler stopped")
}

// RunBacktestNow executes the backtest task immediately (RUN_ON_START).
func (s *Scheduler) RunBacktestNow() {
	s.report(s.Ctx, "")
}

func (s *Scheduler) backtestTask() {
	if now := s.Now(); !s.Calendar.IsTradingDay(now) {
		log.Info().Time("now", now).Msg("not a trading day, skipping backtest")
		return
	}
	log.Info().Msg("running scheduled backtest")
	s.report(s.Ctx, "")
}

// report runs a backtest and pushes the report; it returns the text sent.
func (s *Scheduler) report(ctx context.Context, symbol string) string {
	run, err := s.Runner.Run(ctx, Request{Symbol: symbol})
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Msg("backtest")
		msg := fmt.Sprintf("❌ Backtest failed: %v", err)
		s.trySend(ctx, msg)
		return msg
	}
	msg := notifier.FormatRunReport(run, calculator.Stats(run.Series))
	s.trySend(ctx, msg)
	return msg
}

// HandleCommand processes a user command and returns a reply.
func (s *Scheduler) HandleCommand(ctx context.Context, command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return notifier.FormatHelp()
	}
	arg := ""
	if len(fields) > 1 {
		arg = fields[1]
	}

	switch strings.ToLower(fields[0]) {
	case "/backtest":
		s.report(ctx, arg)
		return ""
	case "/last":
		return s.lastRun(ctx, arg)
	case "/status":
		return notifier.FormatMarketStatus(s.Calendar.Status(s.Now()))
	case "/settings":
		return formatSettings(s.Runner.Settings.GetState())
	case "/set":
		if len(fields) < 3 {
			return "Usage: /set capital|risk|greed|commission|platform|symbol VALUE"
		}
		value := strings.Join(fields[2:], " ")
		if err := s.Runner.Settings.Set(fields[1], value); err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return formatSettings(s.Runner.Settings.GetState())
	case "/reset":
		if err := s.Runner.Settings.Reset(); err != nil {
			return fmt.Sprintf("❌ %v", err)
		}
		return formatSettings(s.Runner.Settings.GetState())
	default:
		return notifier.FormatHelp()
	}
}

func (s *Scheduler) lastRun(ctx context.Context, symbol string) string {
	run, err := s.Runner.Recorder.LatestRun(ctx, strings.ToUpper(symbol))
	if errors.Is(err, recorder.ErrNotFound) {
		return "No recorded runs yet."
	}
	if err != nil {
		log.Error().Err(err).Msg("load latest run")
		return fmt.Sprintf("❌ %v", err)
	}
	return notifier.FormatRunReport(run, calculator.Stats(run.Series))
}

func formatSettings(st fund.Settings) string {
	commission := st.Platform
	if st.Commission != nil {
		commission = fmt.Sprintf("$%.2f per trade", *st.Commission)
	}
	return fmt.Sprintf("⚙️ Settings\nSymbol: %s\nCapital: $%.2f\nRisk: %.1f%%\nGreed: %.1f%%\nCommission: %s",
		st.Symbol, st.InitialCapital, st.RiskPct, st.GreedPct, commission)
}

func (s *Scheduler) trySend(ctx context.Context, text string) {
	if err := notifier.Deliver(ctx, s.Notifier, text, 3); err != nil {
		log.Error().Err(err).Msg("send notification")
	}
}
