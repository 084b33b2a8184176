package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CandleSentinel/internal/calculator"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "alphavantage", cfg.DataSource.Provider)
	assert.Equal(t, "IBM", cfg.DataSource.Symbol)
	assert.Equal(t, "1min", cfg.DataSource.Interval)
	assert.Equal(t, 1000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 30.0, cfg.Backtest.RiskPct)
	require.NotNil(t, cfg.Backtest.GreedPct)
	assert.Equal(t, 20.0, *cfg.Backtest.GreedPct)
	assert.Equal(t, calculator.GenericUSPlatform, cfg.Backtest.Platform)
	assert.Equal(t, "0 5 16 * * 1-5", cfg.Schedule.BacktestCron)
	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
data_source:
  provider: yahoo
  symbol: " aapl "
backtest:
  initial_capital: 5000
  commission: 0.5
kafka:
  brokers: ["localhost:9092"]
`)
	t.Setenv("RISK_PCT", "10")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "yahoo", cfg.DataSource.Provider)
	assert.Equal(t, "AAPL", cfg.DataSource.Symbol)
	assert.Equal(t, 5000.0, cfg.Backtest.InitialCapital)
	assert.Equal(t, 10.0, cfg.Backtest.RiskPct)
	assert.Equal(t, "candle-sentinel.trades", cfg.Kafka.Topic)
	assert.True(t, cfg.TelegramEnabled())
	require.NotNil(t, cfg.Backtest.Commission)
	assert.Equal(t, 0.5, *cfg.Backtest.Commission)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_BadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "backtest: [unclosed"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestLoad_ExplicitZeroGreed(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
backtest:
  greed_pct: 0
`))
	require.NoError(t, err)
	require.NotNil(t, cfg.Backtest.GreedPct)
	assert.Equal(t, 0.0, *cfg.Backtest.GreedPct)
	assert.Nil(t, cfg.Backtest.Commission)
	assert.Equal(t, calculator.GenericUSPlatform, cfg.Backtest.Platform)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		cfg.DataSource.APIKey = "key"
		return cfg
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"missing api key", func(c *Config) { c.DataSource.APIKey = "" }, "APIKey"},
		{"unknown provider", func(c *Config) { c.DataSource.Provider = "bloomberg" }, "Provider"},
		{"negative capital", func(c *Config) { c.Backtest.InitialCapital = -1 }, "InitialCapital"},
		{"risk over 100", func(c *Config) { c.Backtest.RiskPct = 150 }, "RiskPct"},
		{"token without chat", func(c *Config) { c.Telegram.BotToken = "tok" }, "ChatID"},
		{"bad interval", func(c *Config) { c.DataSource.Interval = "2min" }, "Interval"},
		{"negative commission", func(c *Config) { f := -1.0; c.Backtest.Commission = &f }, "Commission"},
		{"negative greed", func(c *Config) { f := -1.0; c.Backtest.GreedPct = &f }, "GreedPct"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestValidate_MockNeedsNoKey(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)
	cfg.DataSource.Provider = "mock"
	assert.NoError(t, cfg.Validate())
}
