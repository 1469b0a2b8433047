// Package kafka publishes outbox messages to Kafka.
package kafka

import (
	"context"

	"ordermgmt/internal/core/domain/model/outbox"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const headerEventType = "event_type"

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// OrderEventPublisher writes messages keyed by order id, so all events of one
// order land on one partition in order.
type OrderEventPublisher struct {
	logger *zap.Logger
	writer messageWriter
	topic  string
}

// NewOrderEventPublisher creates a publisher that waits for every in-sync
// replica to acknowledge a batch.
//
// Parameters:
//   - logger: receives per-batch diagnostics
//   - brokers: bootstrap addresses, host:port
//   - topic: destination topic for every message
//
// Example:
//
//	publisher := NewOrderEventPublisher(logger, []string{"localhost:9092"}, "order.status_changed")
//	defer publisher.Close()
func NewOrderEventPublisher(logger *zap.Logger, brokers []string, topic string) *OrderEventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
	}
	return newOrderEventPublisher(logger, writer, topic)
}

func newOrderEventPublisher(logger *zap.Logger, writer messageWriter, topic string) *OrderEventPublisher {
	return &OrderEventPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Close flushes pending writes and releases the connections.
func (p *OrderEventPublisher) Close() error {
	return p.writer.Close()
}

// Publish writes messages as one batch. The event type travels in a header
// so consumers can route without decoding the payload. On error, none of the
// messages should be treated as delivered; the outbox retries them.
func (p *OrderEventPublisher) Publish(ctx context.Context, messages ...*outbox.Message) error {
	if len(messages) == 0 {
		return nil
	}

	batch := make([]kafka.Message, 0, len(messages))
	for _, m := range messages {
		batch = append(batch, kafka.Message{
			Key:   []byte(m.AggregateID().String()),
			Value: m.Payload(),
			Time:  m.OccurredAt(),
			Headers: []kafka.Header{
				{Key: headerEventType, Value: []byte(m.EventType())},
			},
		})
	}

	if err := p.writer.WriteMessages(ctx, batch...); err != nil {
		p.logger.Error("failed to publish order events",
			zap.String("topic", p.topic),
			zap.Int("count", len(batch)),
			zap.Error(err),
		)
		return err
	}

	p.logger.Debug("order events published",
		zap.String("topic", p.topic),
		zap.Int("count", len(batch)),
	)
	return nil
}
