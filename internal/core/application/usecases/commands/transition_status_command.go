package commands

import (
	"errors"
	"strings"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"
	"ordermgmt/internal/pkg/errs"
	"ordermgmt/internal/pkg/guard"
)

// ErrTransitionStatusCommandIsNotConstructed is returned by Handle for a zero value command.
var ErrTransitionStatusCommandIsNotConstructed = errors.New(
	"TransitionStatusCommand must be created via NewTransitionStatusCommand constructor",
)

// TransitionStatusCommand moves an order to target. An empty comment is
// replaced by a description of the move. A cancelled target is handled like
// CancelOrderCommand, with the comment as the cancellation reason.
//
// Example:
//
//	cmd, err := NewTransitionStatusCommand(orderID, order.Shipped, "Left the warehouse", actor)
//	if err != nil {
//	    return err
//	}
//	updated, err := handler.Handle(ctx, cmd)
type TransitionStatusCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	target  order.Status
	comment string
	actor   ports.Actor

	guard guard.ConstructorGuard
}

// NewTransitionStatusCommand validates the identifiers, that target is a node
// of the graph and the comment length. Whether the move is allowed is decided
// by the handler against the stored status.
//
// Example:
//
//	cmd, err := NewTransitionStatusCommand(orderID, order.Cancelled, "Out of stock", actor)
//	// handled like NewCancelOrderCommand(orderID, "Out of stock", actor)
func NewTransitionStatusCommand(
	orderID kernel.UUID,
	target order.Status,
	comment string,
	actor ports.Actor,
) (TransitionStatusCommand, error) {
	cmd := TransitionStatusCommand{
		comment: strings.TrimSpace(comment),
		guard:   guard.NewConstructorGuard(),
	}

	var idErr error
	if err := orderID.Validate(); err != nil {
		idErr = errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	cmd.orderID = orderID

	targetErr := target.Validate()
	cmd.target = target

	var commentErr error
	if len(cmd.comment) > history.MaxContentLength {
		commentErr = errs.NewValueIsOutOfRangeError("comment", len(cmd.comment), 0, history.MaxContentLength)
	}

	validated, actorErr := validActor(actor)
	cmd.actor = validated

	if err := errors.Join(idErr, targetErr, commentErr, actorErr); err != nil {
		return TransitionStatusCommand{}, err
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c TransitionStatusCommand) Validate() error {
	return c.guard.Validate(ErrTransitionStatusCommandIsNotConstructed)
}

// OrderID returns the order to move.
func (c TransitionStatusCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Target returns the requested status.
func (c TransitionStatusCommand) Target() order.Status {
	return c.target
}

// Comment returns the trimmed comment, empty when none was given.
func (c TransitionStatusCommand) Comment() string {
	return c.comment
}

// Actor returns who requested the move.
func (c TransitionStatusCommand) Actor() ports.Actor {
	return c.actor
}
