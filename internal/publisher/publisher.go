// Package publisher streams simulated trades to downstream consumers.
package publisher

import (
	"context"

	"CandleSentinel/internal/model"
)

// TradeEvent is the message published for each ledger entry of a run.
type TradeEvent struct {
	RunID  string      `json:"run_id"`
	Seq    int         `json:"seq"`
	Symbol string      `json:"symbol"`
	Trade  model.Trade `json:"trade"`
}

// Publisher delivers trade events.
type Publisher interface {
	PublishTrades(ctx context.Context, runID, symbol string, trades []model.Trade) error
	Close() error
}

// NoopPublisher drops everything; used when no broker is configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishTrades(context.Context, string, string, []model.Trade) error { return nil }
func (NoopPublisher) Close() error                                                       { return nil }
