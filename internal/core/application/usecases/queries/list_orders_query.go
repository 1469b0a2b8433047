package queries

import (
	"errors"
	"time"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/pkg/errs"
	"ordermgmt/internal/pkg/guard"

	"github.com/shopspring/decimal"
)

// ErrListOrdersQueryIsNotConstructed is returned by Validate on a zero ListOrdersQuery.
var ErrListOrdersQueryIsNotConstructed = errors.New(
	"ListOrdersQuery must be created via NewListOrdersQuery constructor",
)

// Page size bounds. A zero limit means DefaultListLimit.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// ListOrdersQuery pages through orders newest first, optionally filtered by
// customer and status.
//
// Example:
//
//	pending := order.Pending
//	query, err := NewListOrdersQuery(&customerID, &pending, 20, 0)
//	if err != nil {
//	    return err
//	}
//	page, err := handler.Handle(ctx, query)
type ListOrdersQuery struct {
	customerID *kernel.UUID
	status     *order.Status
	limit      int
	offset     int

	guard guard.ConstructorGuard
}

// NewListOrdersQuery treats a zero limit as DefaultListLimit.
//
// Example:
//
//	query, err := NewListOrdersQuery(nil, nil, 0, 0)
//	// query.Limit() == DefaultListLimit
func NewListOrdersQuery(customerID *kernel.UUID, status *order.Status, limit, offset int) (ListOrdersQuery, error) {
	q := ListOrdersQuery{limit: limit, offset: offset}
	if q.limit == 0 {
		q.limit = DefaultListLimit
	}

	var customerErr, statusErr, limitErr, offsetErr error
	if customerID != nil {
		if err := customerID.Validate(); err != nil {
			customerErr = errs.NewValueIsInvalidErrorWithCause("customerId", err)
		}
		id := *customerID
		q.customerID = &id
	}
	if status != nil {
		statusErr = status.Validate()
		s := *status
		q.status = &s
	}
	if q.limit < 1 || q.limit > MaxListLimit {
		limitErr = errs.NewValueIsOutOfRangeError("limit", limit, 1, MaxListLimit)
	}
	if offset < 0 {
		offsetErr = errs.NewValueIsOutOfRangeError("offset", offset, 0, "unbounded")
	}

	if err := errors.Join(customerErr, statusErr, limitErr, offsetErr); err != nil {
		return ListOrdersQuery{}, err
	}
	q.guard = guard.NewConstructorGuard()
	return q, nil
}

// Validate reports whether the query was built by NewListOrdersQuery.
func (q ListOrdersQuery) Validate() error {
	return q.guard.Validate(ErrListOrdersQueryIsNotConstructed)
}

// CustomerID returns the customer filter, or nil when every customer matches.
func (q ListOrdersQuery) CustomerID() *kernel.UUID { return q.customerID }

// Status returns the status filter, or nil when any status matches.
func (q ListOrdersQuery) Status() *order.Status { return q.status }

// Limit returns the page size, between 1 and MaxListLimit.
func (q ListOrdersQuery) Limit() int { return q.limit }

// Offset returns the number of rows skipped.
func (q ListOrdersQuery) Offset() int { return q.offset }

// ListOrdersQueryResponse is one summary row; items are left out.
type ListOrdersQueryResponse struct {
	ID            kernel.UUID
	CustomerID    kernel.UUID
	Status        order.Status
	PaymentStatus order.PaymentStatus
	Total         decimal.Decimal
	Currency      string
	ItemCount     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
