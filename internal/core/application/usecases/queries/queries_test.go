package queries_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ordermgmt/internal/adapters/out/memory"
	"ordermgmt/internal/core/application/usecases/queries"
	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

type storeReaders struct {
	store *memory.Store
}

func (f storeReaders) Create() queries.LifecycleReader {
	return f.store.Create()
}

type MockTimelineCache struct{ mock.Mock }

func (m *MockTimelineCache) Get(ctx context.Context, id kernel.UUID) (ports.TimelineEntry, error) {
	args := m.Called(ctx, id)
	entry, _ := args.Get(0).(ports.TimelineEntry)
	return entry, args.Error(1)
}

func (m *MockTimelineCache) Set(ctx context.Context, id kernel.UUID, generation int64, events []*history.Event) error {
	return m.Called(ctx, id, generation, events).Error(0)
}

func (m *MockTimelineCache) Invalidate(ctx context.Context, ids ...kernel.UUID) error {
	return m.Called(ctx, ids).Error(0)
}

// generationCache is an in-process TimelineCache with the same fill guard as
// the Redis one. beforeSet, when set, runs once at the start of the next Set.
type generationCache struct {
	mu          sync.Mutex
	entries     map[kernel.UUID][]*history.Event
	generations map[kernel.UUID]int64
	beforeSet   func()
}

func newGenerationCache() *generationCache {
	return &generationCache{
		entries:     make(map[kernel.UUID][]*history.Event),
		generations: make(map[kernel.UUID]int64),
	}
}

func (c *generationCache) Get(_ context.Context, id kernel.UUID) (ports.TimelineEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	events, ok := c.entries[id]
	return ports.TimelineEntry{Events: events, Found: ok, Generation: c.generations[id]}, nil
}

func (c *generationCache) Set(_ context.Context, id kernel.UUID, generation int64, events []*history.Event) error {
	c.mu.Lock()
	hook := c.beforeSet
	c.beforeSet = nil
	c.mu.Unlock()
	if hook != nil {
		hook()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.generations[id] == generation {
		c.entries[id] = events
	}
	return nil
}

func (c *generationCache) Invalidate(_ context.Context, ids ...kernel.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		c.generations[id]++
		delete(c.entries, id)
	}
	return nil
}

var errCacheDown = errors.New("cache down")

// seedOrder stores an order moved along path with one event per step plus
// the given notes appended at the end.
func seedOrder(t *testing.T, store *memory.Store, path []order.Status, notes ...*history.Event) *order.Order {
	t.Helper()
	ctx := t.Context()

	price, err := kernel.NewMoney(decimal.RequireFromString("10"), "SEK")
	require.NoError(t, err)
	item, err := order.NewItem(kernel.NewUUID(), "Mug", "MUG-01", 1, price)
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), []order.Item{item}, "SEK", nil, nil, "", base)
	require.NoError(t, err)

	uow := store.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.OrderRepository().Add(ctx, o))

	created, err := history.NewStatusChangeEvent(o.ID(), nil, order.Pending, "customer-7", "Order created", base)
	require.NoError(t, err)
	_, err = uow.HistoryRepository().Append(ctx, created)
	require.NoError(t, err)

	at := base
	for _, target := range path {
		at = at.Add(time.Minute)
		from, err := o.TransitionTo(target, at)
		require.NoError(t, err)
		require.NoError(t, uow.OrderRepository().Update(ctx, o))
		e, err := history.NewStatusChangeEvent(o.ID(), &from, target, "staff-1", "", at)
		require.NoError(t, err)
		_, err = uow.HistoryRepository().Append(ctx, e)
		require.NoError(t, err)
	}
	require.NoError(t, uow.Commit(ctx))
	return o
}

func note(t *testing.T, orderID kernel.UUID, content string, internal bool, at time.Time) *history.Event {
	t.Helper()
	e, err := history.NewNoteEvent(orderID, "staff-1", content, internal, at)
	require.NoError(t, err)
	return e
}

func appendNote(t *testing.T, store *memory.Store, e *history.Event) {
	t.Helper()
	_, err := store.Create().HistoryRepository().Append(t.Context(), e)
	require.NoError(t, err)
}
