// Package order implements the Order aggregate and the order lifecycle state machine.
//
// The package includes:
//   - Status: the lifecycle states and their human readable descriptions
//   - the status graph: IsValidTransition, NextStates and IsTerminal answer which moves are legal
//   - Order: the aggregate root holding items, totals, addresses and the current status
//   - Item: an immutable line with a product snapshot taken at order time
//
// Lifecycle:
//
//	pending ──> processing ──> shipped ──> delivered
//	   │             │            │            │
//	   └─> cancelled <┘            └─> returned <┘
//
// cancelled and returned are terminal. The graph is fixed and shared by the whole
// process; nothing mutates it after package initialization.
//
// Invariants kept by the aggregate:
//   - the total always equals the sum of unit price times quantity over all items
//   - the status is always a node of the graph
//   - status changes only happen through TransitionTo and Cancel
package order
