package commands

import (
	"context"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/ports"

	"go.uber.org/zap"
)

// AddNoteCommandHandler appends a note to an order's history. Notes are
// accepted in every status, terminal ones included, and leave the order
// version untouched.
type AddNoteCommandHandler struct {
	uowFactory LifecycleUoWFactory
	clock      ports.Clock
	checker    ports.PermissionChecker
	retrier    retrier
	logger     *zap.Logger
}

// NewAddNoteCommandHandler creates a handler for notes.
//
// Example:
//
//	handler := NewAddNoteCommandHandler(uowFactory, clock, checker,
//	    DefaultRetryPolicy(), metrics, logger)
//	event, err := handler.Handle(ctx, cmd)
//	// event.Sequence() is the note's position in the order history
func NewAddNoteCommandHandler(
	uowFactory LifecycleUoWFactory,
	clock ports.Clock,
	checker ports.PermissionChecker,
	policy RetryPolicy,
	metrics ports.LifecycleMetrics,
	logger *zap.Logger,
) AddNoteCommandHandler {
	return AddNoteCommandHandler{
		uowFactory: uowFactory,
		clock:      clock,
		checker:    checker,
		retrier:    retrier{policy: policy, metrics: metrics, logger: logger},
		logger:     logger,
	}
}

// Handle checks the actor may write the note (internal notes need their own
// permission), then appends it to an existing order. The stored event carries
// its sequence number.
//
// Example:
//
//	note, err := handler.Handle(ctx, cmd)
//	if errors.Is(err, errs.ErrObjectNotFound) {
//	    // no such order
//	}
func (h *AddNoteCommandHandler) Handle(ctx context.Context, cmd AddNoteCommand) (*history.Event, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	action := ports.ActionAddNote
	if cmd.IsInternal() {
		action = ports.ActionAddInternalNote
	}
	if err := authorize(ctx, h.checker, cmd.Actor(), action); err != nil {
		return nil, err
	}

	var stored *history.Event
	err := h.retrier.run(ctx, "add note", func(ctx context.Context) error {
		e, err := h.add(ctx, cmd)
		if err != nil {
			return err
		}
		stored = e
		return nil
	})
	if err != nil {
		return nil, err
	}

	h.logger.Info("note added",
		zap.String("order_id", cmd.OrderID().String()),
		zap.Int64("sequence", stored.Sequence()),
		zap.Bool("internal", stored.IsInternal()),
		zap.String("actor", cmd.Actor().ID),
	)
	return stored, nil
}

func (h *AddNoteCommandHandler) add(ctx context.Context, cmd AddNoteCommand) (*history.Event, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if _, err := uow.OrderRepository().Get(ctx, cmd.OrderID()); err != nil {
		return nil, err
	}

	event, err := history.NewNoteEvent(cmd.OrderID(), cmd.Actor().ID, cmd.Content(), cmd.IsInternal(), h.clock.Now())
	if err != nil {
		return nil, err
	}

	stored, err := uow.HistoryRepository().Append(ctx, event)
	if err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}
	return stored, nil
}
