// Package redis caches order timelines in Redis. The cache is optional: every
// caller treats its errors as a miss and goes to the history store.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// generationTTL outlives any fill by far; an expired counter restarts at zero,
// which only a fill still holding a much older generation could mistake.
const generationTTL = 24 * time.Hour

// setIfGeneration stores KEYS[1] only while KEYS[2] still holds ARGV[1].
// ARGV[3] is the entry TTL in milliseconds, 0 for none.
var setIfGeneration = redis.NewScript(`
local current = redis.call('GET', KEYS[2]) or '0'
if current ~= ARGV[1] then
	return 0
end
if tonumber(ARGV[3]) > 0 then
	redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
else
	redis.call('SET', KEYS[1], ARGV[2])
end
return 1
`)

// TimelineCache stores the unfiltered timeline of an order as one JSON value
// next to a per-order generation counter. Invalidate bumps the counter before
// deleting the entry, and Set only writes while the counter is unchanged, so
// a fill computed before a commit never outlives the commit's invalidation.
//
// Both keys of an order carry the same hash tag and land in one cluster slot.
//
// Example:
//
//	client := redis.NewClient(&redis.Options{Addr: "localhost:6379"})
//	cache := NewTimelineCache(client, 10*time.Minute, logger)
//	factory := postgres.NewGormUnitOfWorkFactory(db,
//	    postgres.WithCommitHook(cache.InvalidateAfterCommit))
type TimelineCache struct {
	client redis.UniversalClient
	ttl    time.Duration
	logger *zap.Logger
}

var _ ports.TimelineCache = (*TimelineCache)(nil)

// NewTimelineCache returns a cache whose entries expire after ttl; zero keeps
// them until the next invalidation.
func NewTimelineCache(client redis.UniversalClient, ttl time.Duration, logger *zap.Logger) *TimelineCache {
	return &TimelineCache{
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

func timelineKey(orderID kernel.UUID) string {
	return fmt.Sprintf("timeline:{%s}", orderID)
}

func generationKey(orderID kernel.UUID) string {
	return fmt.Sprintf("timeline:{%s}:gen", orderID)
}

type eventJSON struct {
	ID         string    `json:"id"`
	OrderID    string    `json:"order_id"`
	Kind       string    `json:"kind"`
	OccurredAt time.Time `json:"occurred_at"`
	Sequence   int64     `json:"sequence"`
	Actor      string    `json:"actor"`
	FromStatus *string   `json:"from_status,omitempty"`
	ToStatus   *string   `json:"to_status,omitempty"`
	Comment    string    `json:"comment,omitempty"`
	Content    string    `json:"content,omitempty"`
	IsInternal bool      `json:"is_internal,omitempty"`
}

// Get reads the entry and the generation in one round trip. An entry that
// does not decode is deleted and reported as a miss.
func (c *TimelineCache) Get(ctx context.Context, orderID kernel.UUID) (ports.TimelineEntry, error) {
	values, err := c.client.MGet(ctx, timelineKey(orderID), generationKey(orderID)).Result()
	if err != nil {
		return ports.TimelineEntry{}, err
	}

	generation, err := parseGeneration(values[1])
	if err != nil {
		return ports.TimelineEntry{}, err
	}
	entry := ports.TimelineEntry{Generation: generation}

	raw, ok := values[0].(string)
	if !ok {
		return entry, nil
	}

	var items []eventJSON
	if err = json.Unmarshal([]byte(raw), &items); err != nil {
		c.logger.Warn("dropping undecodable timeline cache entry",
			zap.String("order_id", orderID.String()),
			zap.Error(err),
		)
		_ = c.client.Del(ctx, timelineKey(orderID)).Err()
		return entry, nil
	}

	events := make([]*history.Event, 0, len(items))
	for _, item := range items {
		e, decodeErr := decode(item)
		if decodeErr != nil {
			return ports.TimelineEntry{}, decodeErr
		}
		events = append(events, e)
	}
	entry.Events = events
	entry.Found = true
	return entry, nil
}

// Set writes events unless the order was invalidated after generation was
// read. A refused write is not an error.
func (c *TimelineCache) Set(ctx context.Context, orderID kernel.UUID, generation int64, events []*history.Event) error {
	items := make([]eventJSON, 0, len(events))
	for _, e := range events {
		items = append(items, encode(e))
	}

	data, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("failed to marshal timeline: %w", err)
	}

	stored, err := setIfGeneration.Run(ctx, c.client,
		[]string{timelineKey(orderID), generationKey(orderID)},
		strconv.FormatInt(generation, 10), data, c.ttl.Milliseconds(),
	).Int()
	if err != nil {
		return err
	}
	if stored == 0 {
		c.logger.Debug("skipped timeline fill overtaken by an invalidation",
			zap.String("order_id", orderID.String()),
			zap.Int64("generation", generation),
		)
	}
	return nil
}

// Invalidate bumps the generation of every order, then drops its entry.
func (c *TimelineCache) Invalidate(ctx context.Context, orderIDs ...kernel.UUID) error {
	if len(orderIDs) == 0 {
		return nil
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range orderIDs {
			pipe.Incr(ctx, generationKey(id))
			pipe.Expire(ctx, generationKey(id), generationTTL)
			pipe.Del(ctx, timelineKey(id))
		}
		return nil
	})
	return err
}

// InvalidateAfterCommit is a commit hook for the unit of work. Failures are
// logged; the entry then expires with its TTL.
func (c *TimelineCache) InvalidateAfterCommit(ctx context.Context, orderIDs []kernel.UUID) {
	if err := c.Invalidate(context.WithoutCancel(ctx), orderIDs...); err != nil {
		c.logger.Warn("failed to invalidate timeline cache",
			zap.Int("orders", len(orderIDs)),
			zap.Error(err),
		)
	}
}

func parseGeneration(value any) (int64, error) {
	raw, ok := value.(string)
	if !ok {
		return 0, nil
	}
	generation, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timeline generation %q: %w", raw, err)
	}
	return generation, nil
}

func encode(e *history.Event) eventJSON {
	r := e.Record()
	item := eventJSON{
		ID:         r.ID.String(),
		OrderID:    r.OrderID.String(),
		Kind:       r.Kind.String(),
		OccurredAt: r.OccurredAt,
		Sequence:   r.Sequence,
		Actor:      r.Actor,
		Comment:    r.Comment,
		Content:    r.Content,
		IsInternal: r.IsInternal,
	}
	if r.Kind == history.KindStatusChange {
		to := r.ToStatus.String()
		item.ToStatus = &to
	}
	if r.FromStatus != nil {
		from := r.FromStatus.String()
		item.FromStatus = &from
	}
	return item
}

func decode(item eventJSON) (*history.Event, error) {
	id, err := kernel.UUIDFromString(item.ID)
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromString(item.OrderID)
	if err != nil {
		return nil, err
	}
	kind, err := history.ParseKind(item.Kind)
	if err != nil {
		return nil, err
	}

	r := history.Record{
		ID:         id,
		OrderID:    orderID,
		Kind:       kind,
		OccurredAt: item.OccurredAt,
		Sequence:   item.Sequence,
		Actor:      item.Actor,
		Comment:    item.Comment,
		Content:    item.Content,
		IsInternal: item.IsInternal,
	}
	if item.ToStatus != nil {
		if r.ToStatus, err = order.ParseStatus(*item.ToStatus); err != nil {
			return nil, err
		}
	}
	if item.FromStatus != nil {
		from, fromErr := order.ParseStatus(*item.FromStatus)
		if fromErr != nil {
			return nil, fromErr
		}
		r.FromStatus = &from
	}
	return history.RestoreEvent(r)
}
