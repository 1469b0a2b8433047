package order_test

import (
	"testing"
	"time"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_StartsPendingWithComputedTotal(t *testing.T) {
	o := newOrder(t)

	require.NoError(t, o.Validate())
	assert.Equal(t, order.Pending, o.Status())
	assert.Equal(t, order.PaymentPending, o.PaymentStatus())
	assert.True(t, o.Total().Amount().Equal(decimal.NewFromInt(25)))
	assert.Equal(t, "USD", o.Currency())
	assert.Equal(t, int64(1), o.Version())
	assert.Equal(t, int64(0), o.PersistedVersion())
	assert.Equal(t, createdAt, o.CreatedAt())
	assert.Equal(t, createdAt, o.UpdatedAt())
}

func TestNewOrder_Validation(t *testing.T) {
	validItems := []order.Item{item(t, "mug", 1, "1")}

	testCases := []struct {
		name     string
		customer kernel.UUID
		items    []order.Item
		currency string
		wantErr  error
	}{
		{name: "no items", customer: kernel.NewUUID(), currency: "USD", wantErr: errs.ErrValueIsRequired},
		{name: "no customer", items: validItems, currency: "USD", wantErr: errs.ErrValueIsRequired},
		{name: "bad currency", customer: kernel.NewUUID(), items: validItems, currency: "dollars", wantErr: errs.ErrValueIsInvalid},
		{name: "item currency differs", customer: kernel.NewUUID(), items: validItems, currency: "SEK", wantErr: kernel.ErrCurrencyMismatch},
		{name: "unconstructed item", customer: kernel.NewUUID(), items: []order.Item{{}}, currency: "USD", wantErr: order.ErrItemIsNotConstructed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := order.NewOrder(kernel.NewUUID(), tc.customer, tc.items, tc.currency, nil, nil, "", createdAt)
			require.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestNewOrder_RejectsUnconstructedAddress(t *testing.T) {
	_, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), []order.Item{item(t, "mug", 1, "1")}, "USD",
		&kernel.Address{}, nil, "", createdAt)

	require.ErrorIs(t, err, kernel.ErrAddressIsNotConstructed)
}

func TestOrder_ZeroValueIsNotConstructed(t *testing.T) {
	var o order.Order
	require.ErrorIs(t, o.Validate(), order.ErrOrderIsNotConstructed)

	var nilOrder *order.Order
	require.ErrorIs(t, nilOrder.Validate(), order.ErrOrderIsNotConstructed)
}

func TestOrder_TransitionTo_HappyPath(t *testing.T) {
	o := newOrder(t)
	steps := []order.Status{order.Processing, order.Shipped, order.Delivered, order.Returned}

	at := createdAt
	for i, target := range steps {
		at = at.Add(time.Minute)
		previous := o.Status()

		from, err := o.TransitionTo(target, at)

		require.NoError(t, err)
		assert.Equal(t, previous, from)
		assert.Equal(t, target, o.Status())
		assert.Equal(t, at, o.UpdatedAt())
		assert.Equal(t, int64(i+2), o.Version())
	}
	assert.True(t, o.Status().IsTerminal())
}

func TestOrder_TransitionTo_InvalidEdgeLeavesOrderUntouched(t *testing.T) {
	o := newOrder(t)
	_, err := o.TransitionTo(order.Processing, createdAt.Add(time.Minute))
	require.NoError(t, err)
	before := o.Snapshot()

	_, err = o.TransitionTo(order.Delivered, createdAt.Add(2*time.Minute))

	var invalid *order.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, order.Processing, invalid.From)
	assert.Equal(t, order.Delivered, invalid.To)
	assert.True(t, invalid.OrderID.IsEqual(o.ID()))
	assert.Equal(t, before, o.Snapshot())
}

func TestOrder_TransitionTo_FromTerminal(t *testing.T) {
	for _, terminal := range []order.Status{order.Cancelled, order.Returned} {
		t.Run(terminal.String(), func(t *testing.T) {
			o := restore(t, terminal, order.PaymentPending)

			for _, target := range order.AllStatuses() {
				_, err := o.TransitionTo(target, createdAt.Add(time.Hour))

				var terminalErr *order.AlreadyTerminalError
				require.ErrorAs(t, err, &terminalErr)
				assert.Equal(t, terminal, terminalErr.Current)
				assert.Equal(t, target, terminalErr.Attempted)
				assert.Equal(t, terminal, o.Status())
			}
		})
	}
}

func TestOrder_TransitionTo_StaleClockDoesNotMoveUpdatedAtBackwards(t *testing.T) {
	o := newOrder(t)

	_, err := o.TransitionTo(order.Processing, createdAt.Add(-time.Hour))

	require.NoError(t, err)
	assert.Equal(t, createdAt, o.UpdatedAt())
}

func TestOrder_Cancel(t *testing.T) {
	t.Run("stamps_reason_into_notes", func(t *testing.T) {
		o := newOrder(t)

		from, err := o.Cancel("  customer changed mind ", createdAt.Add(time.Minute))

		require.NoError(t, err)
		assert.Equal(t, order.Pending, from)
		assert.Equal(t, order.Cancelled, o.Status())
		assert.Equal(t, "leave at the door\nCancellation reason: customer changed mind", o.Notes())
	})

	t.Run("refunds_paid_order", func(t *testing.T) {
		o := restore(t, order.Processing, order.PaymentPaid)

		_, err := o.Cancel("out of stock", createdAt.Add(time.Minute))

		require.NoError(t, err)
		assert.Equal(t, order.PaymentRefunded, o.PaymentStatus())
	})

	t.Run("already_cancelled", func(t *testing.T) {
		o := restore(t, order.Cancelled, order.PaymentPending)

		_, err := o.Cancel("again", createdAt.Add(time.Minute))

		require.ErrorIs(t, err, order.ErrAlreadyTerminal)
		assert.Empty(t, o.Notes())
	})

	t.Run("shipped_order_cannot_be_cancelled", func(t *testing.T) {
		o := restore(t, order.Shipped, order.PaymentPaid)

		_, err := o.Cancel("too late", createdAt.Add(time.Minute))

		require.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Equal(t, order.PaymentPaid, o.PaymentStatus())
		assert.Empty(t, o.Notes())
	})
}

func TestRestoreOrder(t *testing.T) {
	original := newOrder(t)
	original.MarkPersisted()

	restored, err := order.RestoreOrder(original.Snapshot())

	require.NoError(t, err)
	assert.True(t, restored.IsEqual(original))
	assert.Equal(t, original.Snapshot(), restored.Snapshot())
	assert.True(t, restored.Total().Equal(original.Total()))
	assert.Equal(t, original.Version(), restored.PersistedVersion())
}

func TestRestoreOrder_RejectsCorruptState(t *testing.T) {
	snapshot := newOrder(t).Snapshot()

	t.Run("unknown status", func(t *testing.T) {
		s := snapshot
		s.Status = order.Unknown
		_, err := order.RestoreOrder(s)
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("zero version", func(t *testing.T) {
		s := snapshot
		s.Version = 0
		_, err := order.RestoreOrder(s)
		require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	})
}

func TestOrder_ItemsAreCopied(t *testing.T) {
	o := newOrder(t)
	items := o.Items()
	items[0] = item(t, "other", 9, "99")

	assert.Equal(t, "mug", o.Items()[0].ProductName())
}

func restore(t *testing.T, status order.Status, payment order.PaymentStatus) *order.Order {
	t.Helper()
	s := newOrder(t).Snapshot()
	s.Status = status
	s.PaymentStatus = payment
	s.Notes = ""
	o, err := order.RestoreOrder(s)
	require.NoError(t, err)
	return o
}
