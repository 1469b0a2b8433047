package ports

import (
	"context"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
)

// TimelineEntry is the result of a TimelineCache read.
//
// Generation counts the invalidations of the order the cache has seen. It is
// read together with the entry, so on a miss it is older than any history the
// caller lists afterwards. Passing it back to Set lets the cache refuse a fill
// that an invalidation overtook.
type TimelineEntry struct {
	Events     []*history.Event
	Found      bool
	Generation int64
}

// TimelineCache keeps the unfiltered event list of an order.
//
// A reader fills it in three steps: Get, list the history, Set with the
// generation from Get. Writers call Invalidate after their commit. Set must
// not store anything once Invalidate ran for the order after the generation
// was read, otherwise a fill that listed history before a commit could
// outlive that commit's invalidation.
type TimelineCache interface {
	// Get reports a miss as a TimelineEntry with Found false.
	Get(ctx context.Context, orderID kernel.UUID) (TimelineEntry, error)
	// Set stores events unless orderID was invalidated since generation.
	Set(ctx context.Context, orderID kernel.UUID, generation int64, events []*history.Event) error
	Invalidate(ctx context.Context, orderIDs ...kernel.UUID) error
}
