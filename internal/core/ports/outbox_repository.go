package ports

import (
	"context"

	"ordermgmt/internal/core/domain/model/outbox"
)

// OutboxRepository stores messages waiting for the broker. Add runs inside the
// transaction that produced the message; ListPending and MarkSent run inside
// the dispatcher's own transaction.
type OutboxRepository interface {
	Add(ctx context.Context, message *outbox.Message) error
	// ListPending returns up to limit unsent messages, oldest first.
	ListPending(ctx context.Context, limit int) ([]*outbox.Message, error)
	MarkSent(ctx context.Context, message *outbox.Message) error
}
