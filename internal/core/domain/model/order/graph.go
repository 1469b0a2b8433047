package order

// transitions is the single authoritative edge table of the lifecycle.
// Slices are listed in the order NextStates reports them.
//
//	pending ──► processing ──► shipped ──► delivered
//	   │             │            │            │
//	   ▼             ▼            ▼            ▼
//	cancelled    cancelled     returned     returned
//
// Cancelled and returned have no outbound edges. Delivered is not terminal:
// a delivered order can still be returned.
var transitions = map[Status][]Status{
	Pending:    {Processing, Cancelled},
	Processing: {Shipped, Cancelled},
	Shipped:    {Delivered, Returned},
	Delivered:  {Returned},
	Cancelled:  {},
	Returned:   {},
}

// allStatuses lists the graph nodes in lifecycle order.
var allStatuses = []Status{Pending, Processing, Shipped, Delivered, Cancelled, Returned}

// IsValidTransition reports whether from -> to is a legal move.
// Unknown statuses on either side yield false, and so does a self-transition.
//
// Example:
//
//	order.IsValidTransition(order.Pending, order.Processing) // true
//	order.IsValidTransition(order.Shipped, order.Cancelled)  // false
//	order.IsValidTransition(order.Pending, order.Pending)    // false
func IsValidTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// NextStates returns the legal targets from a status. The result is a fresh
// slice; unknown statuses and terminal ones yield an empty slice.
//
// Example:
//
//	next := order.NextStates(order.Shipped) // [delivered returned]
func NextStates(from Status) []Status {
	next := transitions[from]
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// IsTerminal reports whether s is a known status without outbound edges.
func IsTerminal(s Status) bool {
	next, ok := transitions[s]
	return ok && len(next) == 0
}

// AllStatuses returns every node of the graph.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// DefaultTransitionComment is recorded when a status change carries no comment.
// It names both statuses with their descriptions, for example:
//
//	Status changed from 'pending' (Order has been confirmed and is awaiting
//	processing.) to 'processing' (Order is being prepared for shipping.)
func DefaultTransitionComment(from, to Status) string {
	return "Status changed from '" + from.String() + "' (" + from.Description() + ") to '" +
		to.String() + "' (" + to.Description() + ")"
}
