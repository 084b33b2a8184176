package model

import "time"

// RunParams records the inputs a backtest was run with.
type RunParams struct {
	InitialCapital float64  `json:"initial_capital"`
	RiskPct        float64  `json:"risk_pct"`
	GreedPct       float64  `json:"greed_pct"`
	Platform       string   `json:"platform,omitempty"`
	Commission     *float64 `json:"commission,omitempty"`
}

// RunRecord is a persisted backtest: inputs, detected patterns and outcome.
type RunRecord struct {
	ID        string        `json:"id"`
	Symbol    string        `json:"symbol"`
	Source    string        `json:"source"`
	CreatedAt time.Time     `json:"created_at"`
	Params    RunParams     `json:"params"`
	Series    Series        `json:"series"`
	Patterns  []Occurrence  `json:"patterns"`
	Trades    []Trade       `json:"trades"`
	Equity    []EquityPoint `json:"equity"`
	Summary   Summary       `json:"summary"`
}
