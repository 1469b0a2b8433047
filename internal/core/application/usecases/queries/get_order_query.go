package queries

import (
	"context"
	"errors"
	"time"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/pkg/guard"
)

// ErrGetOrderQueryIsNotConstructed is returned by Validate on a zero GetOrderQuery.
var ErrGetOrderQueryIsNotConstructed = errors.New(
	"GetOrderQuery must be created via NewGetOrderQuery constructor",
)

// GetOrderQuery reads one order with its items.
type GetOrderQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderQuery creates a query for the order with the given id.
//
// Parameters:
//   - orderID: identifier of the order, must not be the nil UUID
//
// Returns:
//   - GetOrderQuery: the validated query
//   - error: ValueIsRequiredError if orderID is empty
//
// Example:
//
//	query, err := NewGetOrderQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	o, err := handler.Handle(ctx, query)
func NewGetOrderQuery(orderID kernel.UUID) (GetOrderQuery, error) {
	if err := validOrderID(orderID); err != nil {
		return GetOrderQuery{}, err
	}
	return GetOrderQuery{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

// Validate reports whether the query was built by NewGetOrderQuery.
func (q GetOrderQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderQueryIsNotConstructed)
}

// OrderID returns the identifier of the requested order.
func (q GetOrderQuery) OrderID() kernel.UUID {
	return q.orderID
}

// GetOrderQueryHandler loads one order with its items.
type GetOrderQueryHandler struct {
	readers LifecycleReaderFactory
	timeout time.Duration
}

// NewGetOrderQueryHandler creates the handler. A non-positive timeout leaves
// the caller's deadline alone.
//
// Example:
//
//	handler := NewGetOrderQueryHandler(readers, 5*time.Second)
func NewGetOrderQueryHandler(readers LifecycleReaderFactory, timeout time.Duration) GetOrderQueryHandler {
	return GetOrderQueryHandler{readers: readers, timeout: timeout}
}

// Handle loads the order. A missing order is an ObjectNotFoundError; the
// store's failures come back as StorageError.
//
// Example:
//
//	o, err := handler.Handle(ctx, query)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // 404
//	}
func (h GetOrderQueryHandler) Handle(ctx context.Context, query GetOrderQuery) (*order.Order, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	return h.readers.Create().OrderRepository().Get(ctx, query.OrderID())
}
