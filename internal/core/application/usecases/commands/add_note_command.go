package commands

import (
	"errors"
	"strings"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/ports"
	"ordermgmt/internal/pkg/errs"
	"ordermgmt/internal/pkg/guard"
)

// ErrAddNoteCommandIsNotConstructed is returned by Handle for a zero value command.
var ErrAddNoteCommandIsNotConstructed = errors.New(
	"AddNoteCommand must be created via NewAddNoteCommand constructor",
)

// AddNoteCommand annotates an order without changing its status. Notes are
// accepted in every status, terminal ones included.
//
// Example:
//
//	cmd, err := NewAddNoteCommand(orderID, "Customer asked for a call", true, actor)
//	if err != nil {
//	    return err
//	}
//	event, err := handler.Handle(ctx, cmd)
type AddNoteCommand struct { //nolint:recvcheck //using for validation
	orderID    kernel.UUID
	content    string
	isInternal bool
	actor      ports.Actor

	guard guard.ConstructorGuard
}

// NewAddNoteCommand trims content and rejects it when nothing is left.
//
// Example:
//
//	cmd, err := NewAddNoteCommand(orderID, "Customer called about delivery", true, actor)
//	if err != nil {
//	    return err
//	}
//	note, err := handler.Handle(ctx, cmd)
//	// note.Sequence() is the position in the order's log
func NewAddNoteCommand(orderID kernel.UUID, content string, isInternal bool, actor ports.Actor) (AddNoteCommand, error) {
	cmd := AddNoteCommand{
		orderID:    orderID,
		content:    strings.TrimSpace(content),
		isInternal: isInternal,
		guard:      guard.NewConstructorGuard(),
	}

	var idErr error
	if err := orderID.Validate(); err != nil {
		idErr = errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}

	var contentErr error
	switch {
	case cmd.content == "":
		contentErr = errs.NewValueIsRequiredError("content")
	case len(cmd.content) > history.MaxContentLength:
		contentErr = errs.NewValueIsOutOfRangeError("content", len(cmd.content), 1, history.MaxContentLength)
	}

	validated, actorErr := validActor(actor)
	cmd.actor = validated

	if err := errors.Join(idErr, contentErr, actorErr); err != nil {
		return AddNoteCommand{}, err
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c AddNoteCommand) Validate() error {
	return c.guard.Validate(ErrAddNoteCommandIsNotConstructed)
}

// OrderID returns the annotated order.
func (c AddNoteCommand) OrderID() kernel.UUID {
	return c.orderID
}

// Content returns the trimmed, non-empty note text.
func (c AddNoteCommand) Content() string {
	return c.content
}

// IsInternal reports whether the note is hidden from customers.
func (c AddNoteCommand) IsInternal() bool {
	return c.isInternal
}

// Actor returns who writes the note.
func (c AddNoteCommand) Actor() ports.Actor {
	return c.actor
}
