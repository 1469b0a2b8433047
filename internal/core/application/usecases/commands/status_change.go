package commands

import (
	"context"
	"time"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/domain/model/outbox"
)

// recordStatusChange appends the audit event of a status change and queues its
// notification. Both writes join the caller's transaction.
func recordStatusChange(
	ctx context.Context,
	uow LifecycleUoW,
	o *order.Order,
	from *order.Status,
	actor string,
	comment string,
	at time.Time,
) (*history.Event, error) {
	event, err := history.NewStatusChangeEvent(o.ID(), from, o.Status(), actor, comment, at)
	if err != nil {
		return nil, err
	}

	stored, err := uow.HistoryRepository().Append(ctx, event)
	if err != nil {
		return nil, err
	}

	message, err := outbox.NewStatusChangedMessage(o, stored)
	if err != nil {
		return nil, err
	}
	if err = uow.OutboxRepository().Add(ctx, message); err != nil {
		return nil, err
	}
	return stored, nil
}
