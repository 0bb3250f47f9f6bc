package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/config"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
	"github.com/vuducanh221104/server-ecommerce-shopp/internal/events"
)

// Producer publishes auth events to a Kafka topic. Event delivery is best
// effort: a broker outage must never fail a login.
type Producer struct {
	writer *kafka.Writer
	logger *zap.Logger
}

// NewProducer creates a Kafka producer for the configured topic.
func NewProducer(cfg config.KafkaConfig, logger *zap.Logger) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.LeastBytes{},
		RequiredAcks: kafka.RequireOne,
		Async:        true,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Error("Failed to deliver auth events", zap.Int("count", len(messages)), zap.Error(err))
			}
		},
	}
	return &Producer{writer: writer, logger: logger}
}

type envelope struct {
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

func (p *Producer) publish(ctx context.Context, eventType, key string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal %s event: %w", eventType, err)
	}
	value, err := json.Marshal(envelope{Type: eventType, OccurredAt: time.Now(), Payload: raw})
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", eventType, err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
	if err != nil {
		p.logger.Error("Failed to publish auth event", zap.String("type", eventType), zap.Error(err))
		return fmt.Errorf("failed to publish %s event: %w", eventType, err)
	}
	return nil
}

// PublishUserEvent publishes a user lifecycle event keyed by user id.
func (p *Producer) PublishUserEvent(ctx context.Context, eventType string, payload models.UserEvent) error {
	return p.publish(ctx, eventType, payload.UserID, payload)
}

// PublishSessionEvent publishes a session lifecycle event keyed by user id,
// so all events for one account land in the same partition.
func (p *Producer) PublishSessionEvent(ctx context.Context, eventType string, payload models.SessionEvent) error {
	return p.publish(ctx, eventType, payload.UserID, payload)
}

// Close flushes pending messages and closes the writer.
func (p *Producer) Close() error {
	return p.writer.Close()
}

var _ events.Producer = (*Producer)(nil)
