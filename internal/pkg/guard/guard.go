// Package guard detects zero-value domain objects that bypassed their constructor.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no specific error is supplied.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard is embedded into value objects, commands and queries.
// Only NewConstructorGuard produces a guard that passes validation, so a struct
// literal or zero value of the owner is reported as not constructed.
//
// Example:
//
//	type TransitionStatusCommand struct {
//	    orderID kernel.UUID
//	    target  order.Status
//	    guard   guard.ConstructorGuard
//	}
//
//	func (c TransitionStatusCommand) Validate() error {
//	    return c.guard.Validate(ErrTransitionStatusCommandIsNotConstructed)
//	}
type ConstructorGuard struct {
	isConstructed bool
}

// NewConstructorGuard marks the owner as built by its constructor.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{isConstructed: true}
}

// Validate returns validationError (or ErrDefaultConstructorGuard when it is nil)
// for a guard that was not produced by NewConstructorGuard.
func (g ConstructorGuard) Validate(validationError error) error {
	if g.isConstructed {
		return nil
	}
	if validationError == nil {
		return ErrDefaultConstructorGuard
	}
	return validationError
}
