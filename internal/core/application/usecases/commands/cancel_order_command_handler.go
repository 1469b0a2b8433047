package commands

import (
	"context"
	"time"

	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"

	"go.uber.org/zap"
)

// CancelOrderCommandHandler moves an order to cancelled, stamps the reason
// into its notes and refunds a paid order. Cancelling a cancelled or returned
// order fails with order.AlreadyTerminalError.
type CancelOrderCommandHandler struct {
	uowFactory LifecycleUoWFactory
	clock      ports.Clock
	checker    ports.PermissionChecker
	retrier    retrier
	metrics    ports.LifecycleMetrics
	logger     *zap.Logger
}

// NewCancelOrderCommandHandler creates a handler for cancellations.
//
// Example:
//
//	handler := NewCancelOrderCommandHandler(uowFactory, clock, checker,
//	    DefaultRetryPolicy(), metrics, logger)
//	cancelled, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, order.ErrAlreadyTerminal) {
//	    // nothing left to cancel
//	}
func NewCancelOrderCommandHandler(
	uowFactory LifecycleUoWFactory,
	clock ports.Clock,
	checker ports.PermissionChecker,
	policy RetryPolicy,
	metrics ports.LifecycleMetrics,
	logger *zap.Logger,
) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		checker:    checker,
		retrier:    retrier{policy: policy, metrics: metrics, logger: logger},
		metrics:    metrics,
		logger:     logger,
	}
}

// Handle cancels the order in one transaction with its history event and
// outbox message. Orders past processing report InvalidTransitionError.
//
// Example:
//
//	cmd, _ := NewCancelOrderCommand(orderID, "Changed my mind", actor)
//	cancelled, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, order.ErrInvalidTransition) {
//	    // already shipped
//	}
//	// cancelled.PaymentStatus() is refunded when it was paid
func (h *CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	mutate := func(o *order.Order, at time.Time) (order.Status, error) {
		return o.Cancel(cmd.Reason(), at)
	}

	var (
		cancelled *order.Order
		from      order.Status
	)
	err := h.retrier.run(ctx, "cancel order", func(ctx context.Context) error {
		o, f, err := changeStatus(ctx, h.uowFactory, h.clock, h.checker, cmd.OrderID(), order.Cancelled, cmd.Actor(), cmd.Reason(), mutate)
		if err != nil {
			return err
		}
		cancelled, from = o, f
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.metrics.TransitionApplied(from, order.Cancelled)
	h.logger.Info("order cancelled",
		zap.String("order_id", cancelled.ID().String()),
		zap.String("from", from.String()),
		zap.String("payment_status", cancelled.PaymentStatus().String()),
		zap.String("actor", cmd.Actor().ID),
	)
	return cancelled, nil
}
