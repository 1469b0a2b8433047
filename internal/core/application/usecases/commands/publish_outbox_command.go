package commands

import (
	"errors"

	"ordermgmt/internal/pkg/errs"
	"ordermgmt/internal/pkg/guard"
)

// ErrPublishOutboxCommandIsNotConstructed is returned by Handle for a zero value command.
var ErrPublishOutboxCommandIsNotConstructed = errors.New(
	"PublishOutboxCommand must be created via NewPublishOutboxCommand constructor",
)

// MaxOutboxBatchSize caps the messages read per dispatch.
const MaxOutboxBatchSize = 1000

// PublishOutboxCommand asks for one batch of pending messages to be delivered.
type PublishOutboxCommand struct { //nolint:recvcheck //using for validation
	batchSize int

	guard guard.ConstructorGuard
}

// NewPublishOutboxCommand accepts a batch size between 1 and MaxOutboxBatchSize.
//
// Example:
//
//	cmd, err := NewPublishOutboxCommand(100)
//	if err != nil {
//	    return err
//	}
//	sent, err := handler.Handle(ctx, cmd)
func NewPublishOutboxCommand(batchSize int) (PublishOutboxCommand, error) {
	if batchSize < 1 || batchSize > MaxOutboxBatchSize {
		return PublishOutboxCommand{}, errs.NewValueIsOutOfRangeError("batchSize", batchSize, 1, MaxOutboxBatchSize)
	}
	return PublishOutboxCommand{
		batchSize: batchSize,
		guard:     guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c PublishOutboxCommand) Validate() error {
	return c.guard.Validate(ErrPublishOutboxCommandIsNotConstructed)
}

// BatchSize returns the maximum number of messages to publish.
func (c PublishOutboxCommand) BatchSize() int {
	return c.batchSize
}
