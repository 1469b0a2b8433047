package queries

import (
	"context"
	"errors"
	"time"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/pkg/guard"
)

// ErrListValidNextStatusesQueryIsNotConstructed is returned by Validate on a zero query.
var ErrListValidNextStatusesQueryIsNotConstructed = errors.New(
	"ListValidNextStatusesQuery must be created via NewListValidNextStatusesQuery constructor",
)

// ListValidNextStatusesQuery asks for the statuses one order can move to.
type ListValidNextStatusesQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewListValidNextStatusesQuery rejects an empty order id.
//
// Example:
//
//	query, err := NewListValidNextStatusesQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	next, err := handler.Handle(ctx, query)
func NewListValidNextStatusesQuery(orderID kernel.UUID) (ListValidNextStatusesQuery, error) {
	if err := validOrderID(orderID); err != nil {
		return ListValidNextStatusesQuery{}, err
	}
	return ListValidNextStatusesQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate reports whether the query was built by its constructor.
func (q ListValidNextStatusesQuery) Validate() error {
	return q.guard.Validate(ErrListValidNextStatusesQueryIsNotConstructed)
}

// OrderID returns the identifier of the order.
func (q ListValidNextStatusesQuery) OrderID() kernel.UUID {
	return q.orderID
}

// ListValidNextStatusesQueryHandler answers which statuses the order can move
// to now. Terminal orders get an empty list.
type ListValidNextStatusesQueryHandler struct {
	readers LifecycleReaderFactory
	timeout time.Duration
}

// NewListValidNextStatusesQueryHandler creates the handler; timeout bounds each read.
//
// Example:
//
//	handler := NewListValidNextStatusesQueryHandler(readers, 5*time.Second)
func NewListValidNextStatusesQueryHandler(readers LifecycleReaderFactory, timeout time.Duration) ListValidNextStatusesQueryHandler {
	return ListValidNextStatusesQueryHandler{readers: readers, timeout: timeout}
}

// Handle loads the order and returns its next statuses in graph order.
//
// Returns:
//   - []order.Status: the reachable statuses, empty for a terminal order
//   - error: ObjectNotFoundError or StorageError from the store
//
// Example:
//
//	next, err := handler.Handle(ctx, query)
//	// a shipped order yields [delivered returned]
func (h ListValidNextStatusesQueryHandler) Handle(ctx context.Context, query ListValidNextStatusesQuery) ([]order.Status, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	o, err := h.readers.Create().OrderRepository().Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}
	return o.NextStates(), nil
}
