package commands

import (
	"context"
	"time"

	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"

	"go.uber.org/zap"
)

// TransitionStatusCommandHandler applies one edge of the status graph. The
// order row is written with a compare-and-swap on its version, so of two
// concurrent writers starting from the same version exactly one commits and
// the other receives errs.ConcurrencyConflictError.
//
// Moving to cancelled through this handler refunds a paid order the same way
// CancelOrderCommandHandler does.
type TransitionStatusCommandHandler struct {
	uowFactory LifecycleUoWFactory
	clock      ports.Clock
	checker    ports.PermissionChecker
	retrier    retrier
	metrics    ports.LifecycleMetrics
	logger     *zap.Logger
}

// NewTransitionStatusCommandHandler creates a handler for status moves.
//
// Example:
//
//	handler := NewTransitionStatusCommandHandler(uowFactory, clock, checker,
//	    DefaultRetryPolicy(), metrics, logger)
//	cmd, _ := NewTransitionStatusCommand(orderID, order.Processing, "", actor)
//
//	updated, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, order.ErrInvalidTransition):
//	    // the stored status has no edge to the target
//	case errs.IsConflict(err):
//	    // another writer got there first; re-read and decide again
//	}
func NewTransitionStatusCommandHandler(
	uowFactory LifecycleUoWFactory,
	clock ports.Clock,
	checker ports.PermissionChecker,
	policy RetryPolicy,
	metrics ports.LifecycleMetrics,
	logger *zap.Logger,
) TransitionStatusCommandHandler {
	return TransitionStatusCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		checker:    checker,
		retrier:    retrier{policy: policy, metrics: metrics, logger: logger},
		metrics:    metrics,
		logger:     logger,
	}
}

// Handle loads the order, checks the edge and the actor's permission, writes
// the order with a version check and appends the history event. Conflicts are
// returned to the caller, never retried.
//
// Example:
//
//	updated, err := handler.Handle(ctx, cmd)
//	if errs.IsConflict(err) {
//	    // another writer moved the order first; reload and decide again
//	}
func (h *TransitionStatusCommandHandler) Handle(ctx context.Context, cmd TransitionStatusCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	mutate := func(o *order.Order, at time.Time) (order.Status, error) {
		if cmd.Target() == order.Cancelled {
			return o.Cancel(cmd.Comment(), at)
		}
		return o.TransitionTo(cmd.Target(), at)
	}

	var (
		updated *order.Order
		from    order.Status
	)
	err := h.retrier.run(ctx, "transition status", func(ctx context.Context) error {
		o, f, err := changeStatus(ctx, h.uowFactory, h.clock, h.checker, cmd.OrderID(), cmd.Target(), cmd.Actor(), cmd.Comment(), mutate)
		if err != nil {
			return err
		}
		updated, from = o, f
		return nil
	})
	if err != nil {
		h.logger.Info("status transition rejected",
			zap.String("order_id", cmd.OrderID().String()),
			zap.String("to", cmd.Target().String()),
			zap.String("actor", cmd.Actor().ID),
			zap.Error(err),
		)
		return nil, err
	}

	h.metrics.TransitionApplied(from, updated.Status())
	h.logger.Info("order status changed",
		zap.String("order_id", updated.ID().String()),
		zap.String("from", from.String()),
		zap.String("to", updated.Status().String()),
		zap.String("actor", cmd.Actor().ID),
		zap.Int64("version", updated.Version()),
	)
	return updated, nil
}
