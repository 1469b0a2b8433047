package memory

import (
	"cmp"
	"context"
	"slices"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/domain/model/outbox"
	"ordermgmt/internal/pkg/errs"
)

// orderRepository stores order snapshots, the way orderrepo stores rows.
type orderRepository struct {
	uow *UnitOfWork
}

// Add fails with a conflict if the id is taken, like the primary key would.
func (r *orderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.write(ctx, "add order", func(tx *UnitOfWork) error {
		if _, exists := tx.order(aggregate.ID()); exists {
			return errs.NewConcurrencyConflictError("order", aggregate.ID().String(), 0)
		}
		tx.orders[aggregate.ID()] = aggregate.Snapshot()
		aggregate.MarkPersisted()
		tx.track(aggregate.ID())
		return nil
	})
}

// Update compares the stored version with the one the aggregate was read at.
func (r *orderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	return r.uow.write(ctx, "update order", func(tx *UnitOfWork) error {
		current, exists := tx.order(aggregate.ID())
		if !exists {
			return errs.NewObjectNotFoundError("order", aggregate.ID().String())
		}
		if current.Version != aggregate.PersistedVersion() {
			return errs.NewConcurrencyConflictError("order", aggregate.ID().String(), aggregate.PersistedVersion())
		}
		tx.orders[aggregate.ID()] = aggregate.Snapshot()
		aggregate.MarkPersisted()
		tx.track(aggregate.ID())
		return nil
	})
}

// Get sees the transaction's own writes before committed state.
func (r *orderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := r.uow.store.check(ctx, "get order"); err != nil {
		return nil, err
	}
	snapshot, ok := r.uow.order(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(snapshot)
}

// historyRepository keeps one append-only log per order.
type historyRepository struct {
	uow *UnitOfWork
}

// Append numbers the event after the current tail and clamps its time to the
// tail's, so a clock that went backwards cannot reorder the timeline. The
// write lock held by the unit of work stands in for the order row lock.
func (r *historyRepository) Append(ctx context.Context, event *history.Event) (*history.Event, error) {
	if err := event.Validate(); err != nil {
		return nil, err
	}

	var stored *history.Event
	err := r.uow.write(ctx, "append history", func(tx *UnitOfWork) error {
		orderID := event.OrderID()
		if _, exists := tx.order(orderID); !exists {
			return errs.NewObjectNotFoundError("order", orderID.String())
		}

		var sequence int64
		occurredAt := event.OccurredAt()
		if log := tx.history(orderID); len(log) > 0 {
			tail := log[len(log)-1]
			sequence = tail.Sequence
			if occurredAt.Before(tail.OccurredAt) {
				occurredAt = tail.OccurredAt
			}
		}

		stored = event.Stored(sequence+1, occurredAt)
		tx.events[orderID] = append(tx.events[orderID], stored.Record())
		tx.track(orderID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// ListByOrder returns the log sorted like the postgres query.
func (r *historyRepository) ListByOrder(ctx context.Context, orderID kernel.UUID) ([]*history.Event, error) {
	if err := orderID.Validate(); err != nil {
		return nil, err
	}
	if err := r.uow.store.check(ctx, "list history"); err != nil {
		return nil, err
	}

	records := r.uow.history(orderID)
	events := make([]*history.Event, 0, len(records))
	for _, rec := range records {
		e, err := history.RestoreEvent(rec)
		if err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	slices.SortStableFunc(events, func(a, b *history.Event) int {
		switch {
		case a.Before(b):
			return -1
		case b.Before(a):
			return 1
		default:
			return 0
		}
	})
	return events, nil
}

type outboxRepository struct {
	uow *UnitOfWork
}

// Add buffers the message with the rest of the transaction.
func (r *outboxRepository) Add(ctx context.Context, message *outbox.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	return r.uow.write(ctx, "add outbox message", func(tx *UnitOfWork) error {
		tx.messages[message.ID()] = messageRow{
			id:          message.ID(),
			aggregateID: message.AggregateID(),
			eventType:   message.EventType(),
			payload:     message.Payload(),
			occurredAt:  message.OccurredAt(),
			sentAt:      message.SentAt(),
		}
		return nil
	})
}

// ListPending returns unsent messages oldest first, ties broken by id.
func (r *outboxRepository) ListPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	if limit <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("limit", limit, 1, "unbounded")
	}
	if err := r.uow.store.check(ctx, "list outbox messages"); err != nil {
		return nil, err
	}

	rows := r.uow.messageRows()
	rows = slices.DeleteFunc(rows, func(row messageRow) bool { return row.sentAt != nil })
	slices.SortFunc(rows, func(a, b messageRow) int {
		if c := a.occurredAt.Compare(b.occurredAt); c != 0 {
			return c
		}
		return cmp.Compare(a.id.String(), b.id.String())
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}

	messages := make([]*outbox.Message, 0, len(rows))
	for _, row := range rows {
		m, err := outbox.RestoreMessage(row.id, row.aggregateID, row.eventType, row.payload, row.occurredAt, row.sentAt)
		if err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, nil
}

// MarkSent stores the delivery time; an unknown message is not found.
func (r *outboxRepository) MarkSent(ctx context.Context, message *outbox.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	if !message.IsSent() {
		return errs.NewValueIsRequiredError("sentAt")
	}
	return r.uow.write(ctx, "mark outbox message sent", func(tx *UnitOfWork) error {
		row, ok := tx.messageRow(message.ID())
		if !ok {
			return errs.NewObjectNotFoundError("outbox message", message.ID().String())
		}
		row.sentAt = message.SentAt()
		tx.messages[row.id] = row
		return nil
	})
}

// messageRow reads through the transaction's own writes to committed state.
func (u *UnitOfWork) messageRow(id kernel.UUID) (messageRow, bool) {
	if u.active {
		if row, ok := u.messages[id]; ok {
			return row, true
		}
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()
	row, ok := u.store.messages[id]
	return row, ok
}

// messageRows merges committed rows with the ones written in this transaction.
func (u *UnitOfWork) messageRows() []messageRow {
	u.store.mu.RLock()
	merged := make(map[kernel.UUID]messageRow, len(u.store.messages)+len(u.messages))
	for id, row := range u.store.messages {
		merged[id] = row
	}
	u.store.mu.RUnlock()
	for id, row := range u.messages {
		merged[id] = row
	}

	rows := make([]messageRow, 0, len(merged))
	for _, row := range merged {
		rows = append(rows, row)
	}
	return rows
}
