package commands_test

import (
	"context"
	"testing"
	"time"

	"ordermgmt/internal/core/application/usecases/commands"
	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/domain/model/outbox"
	"ordermgmt/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	base     = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	customer = ports.Actor{ID: "customer-7", Role: "customer"}
	staff    = ports.Actor{ID: "staff-1", Role: "staff"}
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	o, _ := args.Get(0).(*order.Order)
	return o, args.Error(1)
}

type MockHistoryRepository struct{ mock.Mock }

func (m *MockHistoryRepository) Append(ctx context.Context, e *history.Event) (*history.Event, error) {
	args := m.Called(ctx, e)
	switch v := args.Get(0).(type) {
	case func(*history.Event) *history.Event:
		return v(e), args.Error(1)
	case *history.Event:
		return v, args.Error(1)
	}
	return nil, args.Error(1)
}

// storedAs makes Append return its argument stamped with sequence.
func storedAs(sequence int64) func(*history.Event) *history.Event {
	return func(e *history.Event) *history.Event {
		return e.Stored(sequence, e.OccurredAt())
	}
}

func (m *MockHistoryRepository) ListByOrder(ctx context.Context, id kernel.UUID) ([]*history.Event, error) {
	args := m.Called(ctx, id)
	events, _ := args.Get(0).([]*history.Event)
	return events, args.Error(1)
}

type MockOutboxRepository struct{ mock.Mock }

func (m *MockOutboxRepository) Add(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

func (m *MockOutboxRepository) ListPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	messages, _ := args.Get(0).([]*outbox.Message)
	return messages, args.Error(1)
}

func (m *MockOutboxRepository) MarkSent(ctx context.Context, msg *outbox.Message) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type MockLifecycleUoW struct{ mock.Mock }

func (m *MockLifecycleUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLifecycleUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLifecycleUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockLifecycleUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockLifecycleUoW) HistoryRepository() ports.HistoryRepository {
	args := m.Called()
	return args.Get(0).(ports.HistoryRepository)
}

func (m *MockLifecycleUoW) OutboxRepository() ports.OutboxRepository {
	args := m.Called()
	return args.Get(0).(ports.OutboxRepository)
}

type MockLifecycleUoWFactory struct{ mock.Mock }

func (m *MockLifecycleUoWFactory) Create() commands.LifecycleUoW {
	args := m.Called()
	return args.Get(0).(commands.LifecycleUoW)
}

type MockOutboxUoWFactory struct{ mock.Mock }

func (m *MockOutboxUoWFactory) Create() commands.OutboxUoW {
	args := m.Called()
	return args.Get(0).(commands.OutboxUoW)
}

type MockMessagePublisher struct{ mock.Mock }

func (m *MockMessagePublisher) Publish(ctx context.Context, messages ...*outbox.Message) error {
	args := m.Called(ctx, messages)
	return args.Error(0)
}

type denyAll struct{}

func (denyAll) CanPerform(context.Context, ports.Actor, ports.Action) bool { return false }

func money(t *testing.T, amount string) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoney(decimal.RequireFromString(amount), "SEK")
	require.NoError(t, err)
	return m
}

func item(t *testing.T, name string, quantity int, unitPrice string) order.Item {
	t.Helper()
	i, err := order.NewItem(kernel.NewUUID(), name, "SKU-"+name, quantity, money(t, unitPrice))
	require.NoError(t, err)
	return i
}

func address(t *testing.T, name string) *kernel.Address {
	t.Helper()
	a, err := kernel.NewNamedAddress(name, "Storgatan 1", "Stockholm", "Stockholm", "11122", "SE")
	require.NoError(t, err)
	return &a
}

func createCommand(t *testing.T, items ...order.Item) commands.CreateOrderCommand {
	t.Helper()
	if len(items) == 0 {
		items = []order.Item{item(t, "mug", 2, "10"), item(t, "spoon", 1, "5")}
	}
	cmd, err := commands.NewCreateOrderCommand(
		customer, kernel.NewUUID(), items, "", address(t, "shippingAddress"), address(t, "billingAddress"), "",
	)
	require.NoError(t, err)
	return cmd
}

// existingOrder is an order as a repository would return it.
func existingOrder(t *testing.T, status order.Status, payment order.PaymentStatus) *order.Order {
	t.Helper()
	o, err := order.RestoreOrder(order.Snapshot{
		ID:            kernel.NewUUID(),
		CustomerID:    kernel.NewUUID(),
		Status:        status,
		Items:         []order.Item{item(t, "mug", 1, "10")},
		Currency:      "SEK",
		PaymentStatus: payment,
		CreatedAt:     base,
		UpdatedAt:     base,
		Version:       3,
	})
	require.NoError(t, err)
	return o
}
