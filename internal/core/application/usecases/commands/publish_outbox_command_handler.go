package commands

import (
	"context"

	"ordermgmt/internal/core/ports"

	"go.uber.org/zap"
)

// PublishOutboxCommandHandler delivers a batch of pending outbox messages and
// marks them sent in the transaction that locked them. A failed publish rolls
// back and leaves the batch pending, so delivery is at least once.
type PublishOutboxCommandHandler struct {
	uowFactory OutboxUoWFactory
	publisher  ports.MessagePublisher
	clock      ports.Clock
	logger     *zap.Logger
}

// NewPublishOutboxCommandHandler creates a dispatcher over publisher.
//
// Example:
//
//	handler := NewPublishOutboxCommandHandler(uowFactory, publisher, clock, logger)
//	cmd, _ := NewPublishOutboxCommand(100)
//	sent, err := handler.Handle(ctx, cmd)
func NewPublishOutboxCommandHandler(
	uowFactory OutboxUoWFactory,
	publisher ports.MessagePublisher,
	clock ports.Clock,
	logger *zap.Logger,
) PublishOutboxCommandHandler {
	return PublishOutboxCommandHandler{
		uowFactory: uowFactory,
		publisher:  publisher,
		clock:      clock,
		logger:     logger,
	}
}

// Handle returns the number of messages published.
//
// Example:
//
//	cmd, _ := NewPublishOutboxCommand(100)
//	sent, err := handler.Handle(ctx, cmd)
//	if err != nil {
//	    // the batch stays pending and is retried on the next tick
//	}
func (h *PublishOutboxCommandHandler) Handle(ctx context.Context, cmd PublishOutboxCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.OutboxRepository()
	messages, err := repo.ListPending(ctx, cmd.BatchSize())
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, uow.Commit(ctx)
	}

	if err = h.publisher.Publish(ctx, messages...); err != nil {
		h.logger.Warn("outbox publish failed",
			zap.Int("batch", len(messages)),
			zap.Error(err),
		)
		return 0, err
	}

	sentAt := h.clock.Now()
	for _, m := range messages {
		m.MarkSent(sentAt)
		if err = repo.MarkSent(ctx, m); err != nil {
			return 0, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	h.logger.Debug("outbox batch published", zap.Int("count", len(messages)))
	return len(messages), nil
}
