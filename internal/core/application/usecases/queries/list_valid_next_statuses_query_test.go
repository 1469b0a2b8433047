package queries_test

import (
	"testing"
	"time"

	"ordermgmt/internal/adapters/out/memory"
	"ordermgmt/internal/core/application/usecases/queries"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListValidNextStatusesQueryHandler_Handle(t *testing.T) {
	testCases := []struct {
		name     string
		path     []order.Status
		expected []order.Status
	}{
		{name: "pending", expected: []order.Status{order.Processing, order.Cancelled}},
		{name: "processing", path: []order.Status{order.Processing}, expected: []order.Status{order.Shipped, order.Cancelled}},
		{name: "delivered", path: []order.Status{order.Processing, order.Shipped, order.Delivered}, expected: []order.Status{order.Returned}},
		{name: "cancelled", path: []order.Status{order.Cancelled}, expected: []order.Status{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			store := memory.NewStore()
			o := seedOrder(t, store, tc.path)
			h := queries.NewListValidNextStatusesQueryHandler(storeReaders{store: store}, time.Second)

			q, err := queries.NewListValidNextStatusesQuery(o.ID())
			require.NoError(t, err)

			first, err := h.Handle(t.Context(), q)
			require.NoError(t, err)
			assert.ElementsMatch(t, tc.expected, first)

			second, err := h.Handle(t.Context(), q)
			require.NoError(t, err)
			assert.Equal(t, first, second)
		})
	}
}

func TestListValidNextStatusesQueryHandler_Handle_UnknownOrder(t *testing.T) {
	h := queries.NewListValidNextStatusesQueryHandler(storeReaders{store: memory.NewStore()}, time.Second)
	q, err := queries.NewListValidNextStatusesQuery(kernel.NewUUID())
	require.NoError(t, err)

	_, err = h.Handle(t.Context(), q)
	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestGetOrderQueryHandler_Handle(t *testing.T) {
	store := memory.NewStore()
	o := seedOrder(t, store, []order.Status{order.Processing})
	h := queries.NewGetOrderQueryHandler(storeReaders{store: store}, time.Second)

	q, err := queries.NewGetOrderQuery(o.ID())
	require.NoError(t, err)
	got, err := h.Handle(t.Context(), q)
	require.NoError(t, err)

	assert.Equal(t, order.Processing, got.Status())
	assert.Len(t, got.Items(), 1)
	assert.True(t, got.Total().Equal(o.Total()))
}

func TestGetStatusCatalogueQueryHandler_Handle(t *testing.T) {
	catalogue := queries.NewGetStatusCatalogueQueryHandler().Handle()
	require.Len(t, catalogue, len(order.AllStatuses()))

	byStatus := make(map[order.Status]queries.StatusInfo, len(catalogue))
	for _, info := range catalogue {
		byStatus[info.Status] = info
		assert.NotEmpty(t, info.Description)
	}
	assert.True(t, byStatus[order.Returned].Terminal)
	assert.Empty(t, byStatus[order.Cancelled].Next)
	assert.False(t, byStatus[order.Delivered].Terminal)
	assert.Equal(t, []order.Status{order.Returned}, byStatus[order.Delivered].Next)
}

func TestNewListOrdersQuery(t *testing.T) {
	q, err := queries.NewListOrdersQuery(nil, nil, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, queries.DefaultListLimit, q.Limit())

	_, err = queries.NewListOrdersQuery(nil, nil, queries.MaxListLimit+1, -1)
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)

	unknown := order.Unknown
	_, err = queries.NewListOrdersQuery(nil, &unknown, 10, 0)
	require.Error(t, err)
}
