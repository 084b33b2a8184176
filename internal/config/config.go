package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"CandleSentinel/internal/calculator"
)

// Config holds all application configuration.
type Config struct {
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id" validate:"required_with=BotToken"`
	} `yaml:"telegram"`
	DataSource struct {
		Provider         string `yaml:"provider" validate:"oneof=alphavantage yahoo mock"`
		APIKey           string `yaml:"api_key" validate:"required_if=Provider alphavantage"`
		Symbol           string `yaml:"symbol" validate:"required,max=12"`
		Interval         string `yaml:"interval" validate:"oneof=1min 5min 15min 30min 60min"`
		RegularHoursOnly bool   `yaml:"regular_hours_only"`
		MIC              string `yaml:"mic"`
	} `yaml:"data_source"`
	Backtest struct {
		InitialCapital float64 `yaml:"initial_capital" validate:"gt=0"`
		RiskPct        float64 `yaml:"risk_pct" validate:"gt=0,lte=100"`
		// GreedPct is nil when unset so an explicit 0 survives defaulting.
		GreedPct *float64 `yaml:"greed_pct" validate:"omitempty,gte=0"`
		Platform string   `yaml:"platform"`
		// Commission overrides the platform schedule with a flat per-leg fee when set.
		Commission *float64 `yaml:"commission" validate:"omitempty,gte=0"`
		// StateFile persists settings changed through chat commands.
		StateFile string `yaml:"state_file"`
	} `yaml:"backtest"`
	Schedule struct {
		BacktestCron string `yaml:"backtest_cron" validate:"required"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath  string `yaml:"sqlite_path"`
		PostgresDSN string `yaml:"postgres_dsn"`
	} `yaml:"database"`
	Kafka struct {
		Brokers []string `yaml:"brokers"`
		Topic   string   `yaml:"topic" validate:"required_with=Brokers"`
	} `yaml:"kafka"`
	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(cfg)
	applyDefaults(cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("DATA_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("SYMBOL"); v != "" {
		cfg.DataSource.Symbol = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("INITIAL_CAPITAL"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backtest.InitialCapital = f
		}
	}
	if v := os.Getenv("RISK_PCT"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Backtest.RiskPct = f
		}
	}
	if v := os.Getenv("CRON_BACKTEST"); v != "" {
		cfg.Schedule.BacktestCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("POSTGRES_DSN"); v != "" {
		cfg.Database.PostgresDSN = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		cfg.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.DataSource.Provider == "" {
		cfg.DataSource.Provider = "alphavantage"
	}
	if cfg.DataSource.Symbol == "" {
		cfg.DataSource.Symbol = "IBM"
	}
	cfg.DataSource.Symbol = strings.ToUpper(strings.TrimSpace(cfg.DataSource.Symbol))
	if cfg.DataSource.Interval == "" {
		cfg.DataSource.Interval = "1min"
	}
	if cfg.DataSource.MIC == "" {
		cfg.DataSource.MIC = "xnys"
	}
	if cfg.Backtest.InitialCapital == 0 {
		cfg.Backtest.InitialCapital = 1000
	}
	if cfg.Backtest.RiskPct == 0 {
		cfg.Backtest.RiskPct = 30
	}
	if cfg.Backtest.GreedPct == nil {
		greed := 20.0
		cfg.Backtest.GreedPct = &greed
	}
	if cfg.Backtest.Platform == "" {
		cfg.Backtest.Platform = calculator.GenericUSPlatform
	}
	if cfg.Backtest.StateFile == "" {
		cfg.Backtest.StateFile = "data/settings.json"
	}
	if cfg.Schedule.BacktestCron == "" {
		// 16:05 New York time, Monday to Friday
		cfg.Schedule.BacktestCron = "0 5 16 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/candle_sentinel.db"
	}
	if cfg.Kafka.Topic == "" && len(cfg.Kafka.Brokers) > 0 {
		cfg.Kafka.Topic = "candle-sentinel.trades"
	}
	if cfg.HTTP.Addr == "" {
		cfg.HTTP.Addr = ":8080"
	}
}

// TelegramEnabled reports whether reports should be pushed to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != ""
}

var validate = validator.New()

// Validate checks field constraints and reports every failing field.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validate config: %w", err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}
