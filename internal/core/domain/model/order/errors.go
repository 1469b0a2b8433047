package order

import (
	"errors"
	"fmt"

	"ordermgmt/internal/core/domain/model/kernel"
)

var (
	// ErrInvalidTransition is the sentinel behind InvalidTransitionError. Match it
	// with errors.Is; use errors.As for the statuses involved.
	ErrInvalidTransition = errors.New("invalid status transition")
	// ErrAlreadyTerminal is the sentinel behind AlreadyTerminalError.
	ErrAlreadyTerminal   = errors.New("order is already in a terminal status")
)

// InvalidTransitionError is returned when the graph has no edge From -> To.
//
// It is a client error: retrying the same request can never succeed. The HTTP
// adapter maps it to 409 together with the allowed targets of From.
//
// Example:
//
//	var invalid *order.InvalidTransitionError
//	if errors.As(err, &invalid) {
//	    allowed := order.NextStates(invalid.From)
//	    ...
//	}
type InvalidTransitionError struct {
	OrderID kernel.UUID
	From    Status
	To      Status
}

// NewInvalidTransitionError builds the error for a rejected move of orderID.
//
// Example:
//
//	err := order.NewInvalidTransitionError(id, order.Shipped, order.Cancelled)
//	errors.Is(err, order.ErrInvalidTransition) // true
func NewInvalidTransitionError(orderID kernel.UUID, from, to Status) *InvalidTransitionError {
	return &InvalidTransitionError{OrderID: orderID, From: from, To: to}
}

// Error names the order and both statuses.
func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s: order %s cannot move from '%s' to '%s'", ErrInvalidTransition, e.OrderID, e.From, e.To)
}

// Unwrap returns ErrInvalidTransition so errors.Is matches every instance.
func (e *InvalidTransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// AlreadyTerminalError is returned for any status change attempted on a
// cancelled or returned order. Current is the terminal status the order is in,
// Attempted the status the caller asked for.
//
// It is reported ahead of InvalidTransitionError: a terminal order has no edges
// at all, and saying so is more useful than listing an empty set of targets.
type AlreadyTerminalError struct {
	OrderID   kernel.UUID
	Current   Status
	Attempted Status
}

// NewAlreadyTerminalError builds the error for orderID sitting in current.
//
// Example:
//
//	err := order.NewAlreadyTerminalError(id, order.Cancelled, order.Processing)
//	errors.Is(err, order.ErrAlreadyTerminal) // true
func NewAlreadyTerminalError(orderID kernel.UUID, current, attempted Status) *AlreadyTerminalError {
	return &AlreadyTerminalError{OrderID: orderID, Current: current, Attempted: attempted}
}

// Error names the order, its terminal status and the refused target.
func (e *AlreadyTerminalError) Error() string {
	return fmt.Sprintf("%s: order %s is already '%s', cannot move to '%s'", ErrAlreadyTerminal, e.OrderID, e.Current, e.Attempted)
}

// Unwrap returns ErrAlreadyTerminal.
func (e *AlreadyTerminalError) Unwrap() error {
	return ErrAlreadyTerminal
}
