// Package ports declares what the application core needs from the outside world.
package ports

import (
	"context"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
)

// OrderRepository persists order aggregates.
type OrderRepository interface {
	// Add stores a new order.
	Add(ctx context.Context, aggregate *order.Order) error

	// Update stores the aggregate only if the stored version still equals
	// aggregate.PersistedVersion(). A lost race yields errs.ConcurrencyConflictError.
	Update(ctx context.Context, aggregate *order.Order) error

	// Get returns errs.ObjectNotFoundError for an unknown id.
	Get(ctx context.Context, id kernel.UUID) (*order.Order, error)
}
