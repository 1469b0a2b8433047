package ports

import (
	"context"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
)

// HistoryRepository is the append-only log of order events.
type HistoryRepository interface {
	// Append assigns the next per-order sequence and a timestamp not earlier than
	// the order's previous event, stores the event and returns the stored copy.
	Append(ctx context.Context, event *history.Event) (*history.Event, error)

	// ListByOrder returns every event of the order ascending by (timestamp, sequence).
	ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*history.Event, error)
}
