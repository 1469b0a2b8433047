package ports

import "ordermgmt/internal/core/domain/model/order"

// LifecycleMetrics receives lifecycle counters. Implementations must be safe
// for concurrent use.
type LifecycleMetrics interface {
	TransitionApplied(from, to order.Status)
	ConflictDetected(operation string)
	StorageRetried(operation string)
}
