package fund

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Settings are the simulation inputs a user tunes between runs.
type Settings struct {
	Symbol         string    `json:"symbol"`
	InitialCapital float64   `json:"initial_capital"`
	RiskPct        float64   `json:"risk_pct"`
	GreedPct       float64   `json:"greed_pct"`
	Platform       string    `json:"platform"`
	Commission     *float64  `json:"commission,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LoadState reads settings from a JSON file. Returns zero settings if the file doesn't exist.
func LoadState(filePath string) (*Settings, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Settings{}, nil
		}
		return nil, fmt.Errorf("read settings: %w", err)
	}
	var s Settings
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode settings: %w", err)
	}
	return &s, nil
}

// SaveState writes settings to a JSON file, creating the directory if needed.
func SaveState(filePath string, s *Settings) error {
	s.UpdatedAt = time.Now()
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	if dir := filepath.Dir(filePath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	return os.WriteFile(filePath, data, 0o644)
}
