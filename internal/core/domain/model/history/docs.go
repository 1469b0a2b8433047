// Package history defines the immutable lifecycle events of an order.
//
// An Event is either a status change or a note. Events are created once by the
// lifecycle service and never updated or deleted. The store assigns a per-order
// sequence number on append; (OccurredAt, Sequence) gives a total order of the
// events of one order even when timestamps collide.
package history
