package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"CandleSentinel/internal/collector"
	"CandleSentinel/internal/config"
	"CandleSentinel/internal/fund"
	"CandleSentinel/internal/market"
	"CandleSentinel/internal/notifier"
	"CandleSentinel/internal/publisher"
	"CandleSentinel/internal/recorder"
	"CandleSentinel/internal/scheduler"
	"CandleSentinel/internal/server"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	log.Info().Msg("CandleSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	cal := market.ForMIC(cfg.DataSource.MIC)

	// Init fetcher
	var fetcher collector.Fetcher
	switch cfg.DataSource.Provider {
	case "yahoo":
		fetcher = collector.NewYahooFetcher(cfg.Proxy)
	case "mock":
		fetcher = &collector.MockFetcher{Price: 100}
	default:
		fetcher = collector.NewAlphaVantageFetcher(cfg.DataSource.APIKey, cfg.Proxy)
	}
	log.Info().Str("source", fetcher.Name()).Str("symbol", cfg.DataSource.Symbol).Msg("data source ready")
	col := collector.NewCollector(fetcher, cal, cfg.DataSource.Interval, cfg.DataSource.RegularHoursOnly)

	// Init settings store
	settings, err := fund.NewManager(cfg.Backtest.StateFile, fund.Settings{
		Symbol:         cfg.DataSource.Symbol,
		InitialCapital: cfg.Backtest.InitialCapital,
		RiskPct:        cfg.Backtest.RiskPct,
		GreedPct:       *cfg.Backtest.GreedPct,
		Platform:       cfg.Backtest.Platform,
		Commission:     cfg.Backtest.Commission,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("init settings")
	}

	// Init recorder: Postgres when configured, else SQLite, else noop
	var rec recorder.Recorder = recorder.NewNoopRecorder()
	switch {
	case cfg.Database.PostgresDSN != "":
		if pr, err := recorder.NewPostgresRecorder(cfg.Database.PostgresDSN); err != nil {
			log.Warn().Err(err).Msg("init postgres recorder failed, using noop")
		} else {
			rec = pr
		}
	case cfg.Database.SQLitePath != "":
		if sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath); err != nil {
			log.Warn().Err(err).Msg("init sqlite recorder failed, using noop")
		} else {
			rec = sr
		}
	}
	defer rec.Close()

	// Init publisher
	var pub publisher.Publisher = publisher.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		pub = publisher.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka publisher enabled")
	}
	defer pub.Close()

	// Init Telegram notifier
	var sender notifier.Sender = notifier.NoopSender{}
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)
		sender = tn
	} else {
		log.Warn().Msg("telegram not configured, reports are only logged and recorded")
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := &scheduler.Runner{Collector: col, Settings: settings, Recorder: rec, Publisher: pub}

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, runner, cal, sender)
	if err := sched.Register(cfg.Schedule.BacktestCron); err != nil {
		log.Fatal().Err(err).Msg("register cron tasks")
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Info().Msg("telegram polling started")
	}

	// Start HTTP API
	srv := server.New(cfg.HTTP.Addr, runner, cal, cfg.LogLevel == "debug")
	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("http server")
			cancel()
		}
	}()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing backtest now")
		go sched.RunBacktestNow()
	}

	log.Info().Msg("CandleSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigCh:
		log.Info().Msg("shutdown signal received, stopping...")
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
	defer stop()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("http shutdown")
	}
	cancel()
	log.Info().Msg("CandleSentinel stopped")
}
