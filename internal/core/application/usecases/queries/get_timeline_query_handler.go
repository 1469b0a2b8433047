package queries

import (
	"context"
	"time"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/services"
	"ordermgmt/internal/core/ports"

	"go.uber.org/zap"
)

// GetTimelineQueryHandler returns an order's events oldest first. The cache,
// when present, holds the unfiltered list; visibility is applied per call.
//
// A miss is filled with the generation read before the history was listed, so
// a fill that raced with a commit is dropped rather than served until it
// expires. Cache failures are logged and the store answers instead.
//
// Example:
//
//	handler := NewGetTimelineQueryHandler(readers, cache, 5*time.Second, logger)
//	query, _ := NewGetTimelineQuery(orderID, false)
//
//	events, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return err
//	}
//	for _, e := range events {
//	    fmt.Println(e.Sequence(), e.Kind())
//	}
type GetTimelineQueryHandler struct {
	readers LifecycleReaderFactory
	cache   ports.TimelineCache
	timeout time.Duration
	logger  *zap.Logger
}

// NewGetTimelineQueryHandler accepts a nil cache.
//
// Example:
//
//	handler := NewGetTimelineQueryHandler(readers, nil, 5*time.Second, logger) // uncached
func NewGetTimelineQueryHandler(
	readers LifecycleReaderFactory,
	cache ports.TimelineCache,
	timeout time.Duration,
	logger *zap.Logger,
) GetTimelineQueryHandler {
	return GetTimelineQueryHandler{
		readers: readers,
		cache:   cache,
		timeout: timeout,
		logger:  logger,
	}
}

// Handle returns the order's events oldest first, filtered by the query's
// visibility. The cache holds the unfiltered list, so public and internal
// readers share one entry. Cache failures fall back to the store.
//
// Returns:
//   - []*history.Event: the visible events, never nil for an existing order
//   - error: ObjectNotFoundError if the order does not exist, StorageError otherwise
//
// Example:
//
//	staff, _ := NewGetTimelineQuery(orderID, true)
//	all, _ := handler.Handle(ctx, staff)
//	customer, _ := NewGetTimelineQuery(orderID, false)
//	public, _ := handler.Handle(ctx, customer)
//	// len(public) <= len(all); both come from the same cache entry
func (h GetTimelineQueryHandler) Handle(ctx context.Context, query GetTimelineQuery) ([]*history.Event, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := withTimeout(ctx, h.timeout)
	defer cancel()

	reader := h.readers.Create()
	if _, err := reader.OrderRepository().Get(ctx, query.OrderID()); err != nil {
		return nil, err
	}

	events, err := h.load(ctx, reader, query)
	if err != nil {
		return nil, err
	}
	return services.BuildTimeline(events, query.Visibility()), nil
}

func (h GetTimelineQueryHandler) load(ctx context.Context, reader LifecycleReader, query GetTimelineQuery) ([]*history.Event, error) {
	if h.cache == nil {
		return reader.HistoryRepository().ListByOrder(ctx, query.OrderID())
	}

	entry, err := h.cache.Get(ctx, query.OrderID())
	if err != nil {
		h.logger.Warn("timeline cache read failed",
			zap.String("order_id", query.OrderID().String()),
			zap.Error(err),
		)
		// Without a generation a fill cannot be checked against invalidations.
		return reader.HistoryRepository().ListByOrder(ctx, query.OrderID())
	}
	if entry.Found {
		return entry.Events, nil
	}

	events, err := reader.HistoryRepository().ListByOrder(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}

	if err = h.cache.Set(ctx, query.OrderID(), entry.Generation, events); err != nil {
		h.logger.Warn("timeline cache write failed",
			zap.String("order_id", query.OrderID().String()),
			zap.Error(err),
		)
	}
	return events, nil
}
