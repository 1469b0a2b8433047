package order_test

import (
	"testing"

	"ordermgmt/internal/core/domain/model/order"

	"github.com/stretchr/testify/assert"
)

func TestIsValidTransition_EdgeTable(t *testing.T) {
	edges := map[order.Status][]order.Status{
		order.Pending:    {order.Processing, order.Cancelled},
		order.Processing: {order.Shipped, order.Cancelled},
		order.Shipped:    {order.Delivered, order.Returned},
		order.Delivered:  {order.Returned},
	}

	for _, from := range order.AllStatuses() {
		for _, to := range order.AllStatuses() {
			expected := false
			for _, allowed := range edges[from] {
				if allowed == to {
					expected = true
				}
			}
			assert.Equal(t, expected, order.IsValidTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestIsValidTransition_UnknownStatuses(t *testing.T) {
	assert.False(t, order.IsValidTransition(order.Unknown, order.Pending))
	assert.False(t, order.IsValidTransition(order.Pending, order.Unknown))
	assert.False(t, order.IsValidTransition(order.Status(42), order.Processing))
}

func TestNextStates(t *testing.T) {
	testCases := []struct {
		from     order.Status
		expected []order.Status
	}{
		{from: order.Pending, expected: []order.Status{order.Processing, order.Cancelled}},
		{from: order.Processing, expected: []order.Status{order.Shipped, order.Cancelled}},
		{from: order.Shipped, expected: []order.Status{order.Delivered, order.Returned}},
		{from: order.Delivered, expected: []order.Status{order.Returned}},
		{from: order.Cancelled, expected: []order.Status{}},
		{from: order.Returned, expected: []order.Status{}},
		{from: order.Unknown, expected: []order.Status{}},
	}

	for _, tc := range testCases {
		t.Run(tc.from.String(), func(t *testing.T) {
			assert.Equal(t, tc.expected, order.NextStates(tc.from))
		})
	}
}

func TestNextStates_ReturnsIndependentCopies(t *testing.T) {
	first := order.NextStates(order.Pending)
	first[0] = order.Returned

	assert.Equal(t, []order.Status{order.Processing, order.Cancelled}, order.NextStates(order.Pending))
}

func TestIsTerminal(t *testing.T) {
	assert.True(t, order.IsTerminal(order.Cancelled))
	assert.True(t, order.IsTerminal(order.Returned))
	assert.False(t, order.IsTerminal(order.Delivered))
	assert.False(t, order.IsTerminal(order.Pending))
	assert.False(t, order.IsTerminal(order.Unknown))
}

func TestDefaultTransitionComment(t *testing.T) {
	assert.Equal(t,
		"Status changed from 'pending' (Order has been confirmed and is awaiting processing.) "+
			"to 'processing' (Order is being prepared for shipping.)",
		order.DefaultTransitionComment(order.Pending, order.Processing))
}
