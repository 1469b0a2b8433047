package commands

import (
	"context"

	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"

	"go.uber.org/zap"
)

const orderCreatedComment = "Order created"

// CreateOrderCommandHandler places a pending order together with its first
// history event (none -> pending) and the matching outbox message, all in one
// transaction.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, clock, checker,
//	    DefaultRetryPolicy(), metrics, logger)
//	cmd, _ := NewCreateOrderCommand(actor, customerID, items, "SEK", &shipping, &billing, "")
//
//	created, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    return fmt.Errorf("order creation failed: %w", err)
//	}
//	// created.Status() == order.Pending
type CreateOrderCommandHandler struct {
	uowFactory LifecycleUoWFactory
	clock      ports.Clock
	checker    ports.PermissionChecker
	retrier    retrier
	logger     *zap.Logger
}

// NewCreateOrderCommandHandler creates a handler for order creation. policy
// bounds the retries of transient storage failures; metrics counts them.
//
// Example:
//
//	handler := NewCreateOrderCommandHandler(uowFactory, kernel.NewMonotonicClock(),
//	    policy.NewRolePolicy(), DefaultRetryPolicy(), metrics.Nop{}, logger)
func NewCreateOrderCommandHandler(
	uowFactory LifecycleUoWFactory,
	clock ports.Clock,
	checker ports.PermissionChecker,
	policy RetryPolicy,
	metrics ports.LifecycleMetrics,
	logger *zap.Logger,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		checker:    checker,
		retrier:    retrier{policy: policy, metrics: metrics, logger: logger},
		logger:     logger,
	}
}

// Handle authorizes the actor, then stores the order and its creation event.
// A transient storage failure is retried under the policy with a fresh unit of
// work per attempt, reusing the order id the command generated.
//
// Example:
//
//	created, err := handler.Handle(ctx, cmd)
//	switch {
//	case errs.IsValidation(err):
//	    // 400
//	case errors.Is(err, errs.ErrOperationIsForbidden):
//	    // 403
//	case err != nil:
//	    // storage failure after the retries ran out
//	}
func (h *CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	if err := authorize(ctx, h.checker, cmd.Actor(), ports.ActionCreateOrder); err != nil {
		return nil, err
	}

	var created *order.Order
	err := h.retrier.run(ctx, "create order", func(ctx context.Context) error {
		o, err := h.create(ctx, cmd)
		if err != nil {
			return err
		}
		created = o
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("order created",
		zap.String("order_id", created.ID().String()),
		zap.String("customer_id", created.CustomerID().String()),
		zap.String("total", created.Total().String()),
		zap.String("actor", cmd.Actor().ID),
	)
	return created, nil
}

func (h *CreateOrderCommandHandler) create(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	now := h.clock.Now()
	o, err := order.NewOrder(
		cmd.OrderID(),
		cmd.CustomerID(),
		cmd.Items(),
		cmd.Currency(),
		cmd.ShippingAddress(),
		cmd.BillingAddress(),
		cmd.Notes(),
		now,
	)
	if err != nil {
		return nil, err
	}

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}
	if _, err = recordStatusChange(ctx, uow, o, nil, cmd.Actor().ID, orderCreatedComment, now); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return o, nil
}
