package commands

import (
	"errors"
	"strings"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"
	"ordermgmt/internal/pkg/errs"
	"ordermgmt/internal/pkg/guard"
)

// ErrCancelOrderCommandIsNotConstructed is returned by Handle for a zero value command.
var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand cancels an order. The reason is optional; when given it
// becomes the comment of the status change and is stamped into the order notes.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderID kernel.UUID
	reason  string
	actor   ports.Actor

	guard guard.ConstructorGuard
}

// NewCancelOrderCommand validates the order id, the actor and the reason length.
//
// Example:
//
//	cmd, err := NewCancelOrderCommand(orderID, "Changed my mind", actor)
//	if err != nil {
//	    return err
//	}
//	cancelled, err := handler.Handle(ctx, cmd)
func NewCancelOrderCommand(orderID kernel.UUID, reason string, actor ports.Actor) (CancelOrderCommand, error) {
	cmd := CancelOrderCommand{
		orderID: orderID,
		reason:  strings.TrimSpace(reason),
		guard:   guard.NewConstructorGuard(),
	}

	var idErr error
	if err := orderID.Validate(); err != nil {
		idErr = errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}

	var reasonErr error
	if len(cmd.reason) > order.MaxNotesLength {
		reasonErr = errs.NewValueIsOutOfRangeError("reason", len(cmd.reason), 0, order.MaxNotesLength)
	}

	validated, actorErr := validActor(actor)
	cmd.actor = validated

	if err := errors.Join(idErr, reasonErr, actorErr); err != nil {
		return CancelOrderCommand{}, err
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

// OrderID returns the order to cancel.
func (c CancelOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Reason returns the trimmed reason, empty when none was given.
func (c CancelOrderCommand) Reason() string {
	return c.reason
}

// Actor returns who cancels.
func (c CancelOrderCommand) Actor() ports.Actor {
	return c.actor
}
