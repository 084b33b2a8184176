// Package fund keeps the user's simulation inputs (capital, risk, greed,
// commission, symbol) across restarts.
package fund

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"CandleSentinel/internal/backtest"
	"CandleSentinel/internal/calculator"
	"CandleSentinel/internal/model"
)

// Manager guards the settings file with concurrency safety.
type Manager struct {
	mu       sync.Mutex
	state    *Settings
	defaults Settings
	filePath string
}

// NewManager creates a Manager. Settings are loaded from filePath when it
// exists; otherwise they start from defaults and are written out. An empty
// filePath keeps settings in memory only.
func NewManager(filePath string, defaults Settings) (*Manager, error) {
	state := defaults.clone()
	if filePath != "" {
		_, err := os.Stat(filePath)
		switch {
		case err == nil:
			if state, err = LoadState(filePath); err != nil {
				return nil, err
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("stat settings: %w", err)
		}
	}

	m := &Manager{state: state, defaults: defaults, filePath: filePath}
	if err := m.save(); err != nil {
		return nil, err
	}
	return m, nil
}

func (s Settings) clone() *Settings {
	c := s
	if s.Commission != nil {
		v := *s.Commission
		c.Commission = &v
	}
	return &c
}

// GetState returns a copy of the current settings.
func (m *Manager) GetState() Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.state
}

// Set updates one named field from its text form, as typed in a chat command.
func (m *Manager) Set(field, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	next := *m.state
	value = strings.TrimSpace(value)
	switch strings.ToLower(field) {
	case "symbol":
		if value == "" {
			return fmt.Errorf("symbol must not be empty")
		}
		next.Symbol = strings.ToUpper(value)
	case "capital":
		v, err := parsePositive(value)
		if err != nil {
			return fmt.Errorf("capital: %w", err)
		}
		next.InitialCapital = v
	case "risk":
		v, err := parsePositive(value)
		if err != nil || v > 100 {
			return fmt.Errorf("risk must be in (0, 100]")
		}
		next.RiskPct = v
	case "greed":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("greed must be a non-negative number")
		}
		next.GreedPct = v
	case "commission":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("commission must be a non-negative number")
		}
		next.Commission = &v
	case "platform":
		next.Platform = value
		next.Commission = nil
	default:
		return fmt.Errorf("unknown setting %q", field)
	}

	*m.state = next
	if err := m.save(); err != nil {
		log.Error().Err(err).Msg("failed to save settings")
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// Reset restores the defaults.
func (m *Manager) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state = m.defaults.clone()
	return m.save()
}

func (m *Manager) save() error {
	if m.filePath == "" {
		return nil
	}
	return SaveState(m.filePath, m.state)
}

func parsePositive(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("not a number: %q", s)
	}
	if !(v > 0) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("must be positive")
	}
	return v, nil
}

// Schedule resolves the commission: an explicit flat fee wins over the platform.
func (s Settings) Schedule() calculator.CommissionSchedule {
	if s.Commission != nil {
		return calculator.FlatFee(*s.Commission)
	}
	return calculator.PlatformCommission(s.Platform)
}

// Params converts settings into simulator parameters for symbol.
func (s Settings) Params(symbol string) backtest.Params {
	return backtest.Params{
		Symbol:         symbol,
		InitialCapital: s.InitialCapital,
		RiskPct:        s.RiskPct,
		Commission:     s.Schedule(),
	}
}

// RunParams is the persisted form of the settings.
func (s Settings) RunParams() model.RunParams {
	return model.RunParams{
		InitialCapital: s.InitialCapital,
		RiskPct:        s.RiskPct,
		GreedPct:       s.GreedPct,
		Platform:       s.Platform,
		Commission:     s.Commission,
	}
}
