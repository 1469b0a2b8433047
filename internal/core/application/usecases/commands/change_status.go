package commands

import (
	"context"
	"time"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"
)

type statusMutation func(o *order.Order, at time.Time) (order.Status, error)

// changeStatus runs one attempt of a status change: load, graph check,
// permission check, CAS update, history append, outbox write, commit.
func changeStatus(
	ctx context.Context,
	uowFactory LifecycleUoWFactory,
	clock ports.Clock,
	checker ports.PermissionChecker,
	orderID kernel.UUID,
	target order.Status,
	actor ports.Actor,
	comment string,
	mutate statusMutation,
) (*order.Order, order.Status, error) {
	uow := uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, order.Unknown, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	o, err := uow.OrderRepository().Get(ctx, orderID)
	if err != nil {
		return nil, order.Unknown, err
	}

	now := clock.Now()
	from, err := mutate(o, now)
	if err != nil {
		return nil, from, err
	}
	if err = authorize(ctx, checker, actor, ports.TransitionAction(from, target)); err != nil {
		return nil, from, err
	}

	if err = uow.OrderRepository().Update(ctx, o); err != nil {
		return nil, from, err
	}

	if comment == "" {
		comment = order.DefaultTransitionComment(from, target)
	}
	if _, err = recordStatusChange(ctx, uow, o, &from, actor.ID, comment, now); err != nil {
		return nil, from, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, from, err
	}
	return o, from, nil
}
