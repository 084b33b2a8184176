package model

import "time"

// Action is the ledger verb of a trade.
type Action string

const (
	ActionBuy     Action = "Buy"
	ActionSell    Action = "Sell"
	ActionSellEOD Action = "Sell-EOD"
)

// IsSell reports whether the action closes a position.
func (a Action) IsSell() bool {
	return a == ActionSell || a == ActionSellEOD
}

// Trade is one ledger entry. Buy entries carry BuyPrice only; sells carry
// SellPrice and ProfitLoss.
type Trade struct {
	Time       time.Time `json:"time"`
	Action     Action    `json:"action"`
	Ticker     string    `json:"ticker"`
	BuyPrice   *float64  `json:"buy_price"`
	SellPrice  *float64  `json:"sell_price"`
	Quantity   int64     `json:"quantity"`
	ProfitLoss *float64  `json:"profit_loss"`
}

// EquityPoint is the account value (cash plus marked position) after a candle.
type EquityPoint struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// Summary is the headline outcome of a backtest run.
type Summary struct {
	Symbol          string    `json:"symbol"`
	From            time.Time `json:"from"`
	To              time.Time `json:"to"`
	InitialCapital  float64   `json:"initial_capital"`
	FinalCapital    float64   `json:"final_capital"`
	TotalProfitLoss float64   `json:"total_profit_loss"`
	TradeCount      int       `json:"trade_count"`
}

// Empty reports whether the run covered no candles.
func (s Summary) Empty() bool {
	return s.From.IsZero() && s.To.IsZero()
}
