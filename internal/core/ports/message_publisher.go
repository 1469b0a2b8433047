package ports

import (
	"context"

	"ordermgmt/internal/core/domain/model/outbox"
)

// MessagePublisher delivers outbox messages to the message broker.
type MessagePublisher interface {
	Publish(ctx context.Context, messages ...*outbox.Message) error
}
