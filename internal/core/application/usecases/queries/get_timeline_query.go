package queries

import (
	"errors"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/services"
	"ordermgmt/internal/pkg/guard"
)

// ErrGetTimelineQueryIsNotConstructed is returned by Validate on a zero GetTimelineQuery.
var ErrGetTimelineQueryIsNotConstructed = errors.New(
	"GetTimelineQuery must be created via NewGetTimelineQuery constructor",
)

// GetTimelineQuery reads the audit trail of one order. includeInternal is
// decided by the caller's permissions.
type GetTimelineQuery struct {
	orderID         kernel.UUID
	includeInternal bool

	guard guard.ConstructorGuard
}

// NewGetTimelineQuery creates a timeline query.
//
// Parameters:
//   - orderID: identifier of the order, must not be empty
//   - includeInternal: whether internal notes are returned
//
// Example:
//
//	query, err := NewGetTimelineQuery(orderID, includeInternal)
//	if err != nil {
//	    return err
//	}
//	events, err := handler.Handle(ctx, query)
func NewGetTimelineQuery(orderID kernel.UUID, includeInternal bool) (GetTimelineQuery, error) {
	if err := validOrderID(orderID); err != nil {
		return GetTimelineQuery{}, err
	}
	return GetTimelineQuery{
		orderID:         orderID,
		includeInternal: includeInternal,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// Validate reports whether the query was built by NewGetTimelineQuery.
func (q GetTimelineQuery) Validate() error {
	return q.guard.Validate(ErrGetTimelineQueryIsNotConstructed)
}

// OrderID returns the identifier of the order.
func (q GetTimelineQuery) OrderID() kernel.UUID {
	return q.orderID
}

// Visibility maps the includeInternal flag to the filter the history service applies.
func (q GetTimelineQuery) Visibility() services.Visibility {
	if q.includeInternal {
		return services.IncludeInternal
	}
	return services.PublicOnly
}
