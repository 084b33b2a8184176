package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"CandleSentinel/internal/model"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes one JSON message per trade, keyed by symbol so a
// symbol's trades stay ordered within a partition.
type KafkaPublisher struct {
	writer messageWriter
}

// NewKafkaPublisher creates a publisher for the given brokers and topic.
func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return &KafkaPublisher{writer: &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
	}}
}

func (p *KafkaPublisher) PublishTrades(ctx context.Context, runID, symbol string, trades []model.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(trades))
	for i, t := range trades {
		value, err := json.Marshal(TradeEvent{RunID: runID, Seq: i, Symbol: symbol, Trade: t})
		if err != nil {
			return fmt.Errorf("encode trade %d: %w", i, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(symbol), Value: value, Time: t.Time})
	}
	if err := p.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	log.Debug().Str("run", runID).Int("trades", len(trades)).Msg("published trades")
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}
