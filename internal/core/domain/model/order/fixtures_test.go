package order_test

import (
	"testing"
	"time"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var createdAt = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func money(t *testing.T, amount string) kernel.Money {
	t.Helper()
	m, err := kernel.NewMoney(decimal.RequireFromString(amount), "USD")
	require.NoError(t, err)
	return m
}

func item(t *testing.T, name string, quantity int, unitPrice string) order.Item {
	t.Helper()
	it, err := order.NewItem(kernel.NewUUID(), name, "SKU-"+name, quantity, money(t, unitPrice))
	require.NoError(t, err)
	return it
}

func address(t *testing.T) *kernel.Address {
	t.Helper()
	a, err := kernel.NewAddress("1 Infinite Loop", "Cupertino", "CA", "95014", "US")
	require.NoError(t, err)
	return &a
}

// newOrder builds the canonical two line order: 10 x 2 + 5 x 1 = 25.
func newOrder(t *testing.T) *order.Order {
	t.Helper()
	o, err := order.NewOrder(
		kernel.NewUUID(),
		kernel.NewUUID(),
		[]order.Item{item(t, "mug", 2, "10"), item(t, "pen", 1, "5")},
		"USD",
		address(t),
		address(t),
		"leave at the door",
		createdAt,
	)
	require.NoError(t, err)
	return o
}
