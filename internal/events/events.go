package events

import (
	"context"

	"github.com/vuducanh221104/server-ecommerce-shopp/internal/domain/models"
)

// Producer publishes auth lifecycle events for downstream consumers such as
// the notification and analytics services.
type Producer interface {
	PublishUserEvent(ctx context.Context, eventType string, payload models.UserEvent) error
	PublishSessionEvent(ctx context.Context, eventType string, payload models.SessionEvent) error
	Close() error
}

// NoopProducer discards every event. Used when Kafka is disabled and in
// tests.
type NoopProducer struct{}

func (NoopProducer) PublishUserEvent(context.Context, string, models.UserEvent) error {
	return nil
}

func (NoopProducer) PublishSessionEvent(context.Context, string, models.SessionEvent) error {
	return nil
}

func (NoopProducer) Close() error { return nil }

var _ Producer = NoopProducer{}
