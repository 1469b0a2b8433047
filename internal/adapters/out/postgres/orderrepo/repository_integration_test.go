package orderrepo_test

import (
	"context"
	"testing"
	"time"

	"ordermgmt/internal/adapters/out/postgres/orderrepo"
	"ordermgmt/internal/adapters/out/postgres/pgtest"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type OrderRepositoryIntegrationTestSuite struct {
	suite.Suite
	pg         *pgtest.Database
	repository *orderrepo.GormOrderRepository
	tracker    *MockAggregateTracker
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupSuite() {
	pg, err := pgtest.Start(context.Background())
	suite.Require().NoError(err)
	suite.pg = pg
}

func (suite *OrderRepositoryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.pg.Truncate())

	suite.tracker = new(MockAggregateTracker)
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything).Maybe()
	suite.repository = orderrepo.NewGormOrderRepository(suite.pg.DB, suite.tracker)
}

func (suite *OrderRepositoryIntegrationTestSuite) TearDownSuite() {
	suite.Require().NoError(suite.pg.Terminate(context.Background()))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_ThenGet_RoundTrips() {
	ctx := context.Background()
	o := suite.newOrder()

	suite.Require().NoError(suite.repository.Add(ctx, o))
	suite.tracker.AssertCalled(suite.T(), "TrackAggregate", o.ID(), o)

	got, err := suite.repository.Get(ctx, o.ID())

	suite.Require().NoError(err)
	suite.True(o.IsEqual(got))
	suite.Equal(order.Pending, got.Status())
	suite.Equal(int64(1), got.Version())
	suite.Equal(int64(1), got.PersistedVersion())
	suite.True(decimal.RequireFromString("25").Equal(got.Total().Amount()))
	suite.Equal("USD", got.Currency())
	suite.Require().Len(got.Items(), 2)
	suite.Equal("Mug", got.Items()[0].ProductName())
	suite.Equal(2, got.Items()[0].Quantity())
	suite.Require().NotNil(got.ShippingAddress())
	suite.Equal("Stockholm", got.ShippingAddress().City())
	suite.Equal("leave at the door", got.Notes())
	suite.True(o.CreatedAt().Equal(got.CreatedAt()))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestAdd_WithoutAddresses() {
	ctx := context.Background()
	o := suite.newOrderWith(nil)

	suite.Require().NoError(suite.repository.Add(ctx, o))

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Nil(got.ShippingAddress())
	suite.Nil(got.BillingAddress())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_AdvancesVersion() {
	ctx := context.Background()
	o := suite.newOrder()
	suite.Require().NoError(suite.repository.Add(ctx, o))

	_, err := o.TransitionTo(order.Processing, o.CreatedAt().Add(time.Minute))
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repository.Update(ctx, o))
	suite.Equal(int64(2), o.PersistedVersion())

	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Processing, got.Status())
	suite.Equal(int64(2), got.Version())
	suite.True(got.UpdatedAt().Equal(o.UpdatedAt()))
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_StaleVersion_Conflicts() {
	ctx := context.Background()
	o := suite.newOrder()
	suite.Require().NoError(suite.repository.Add(ctx, o))

	first, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	second, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)

	at := o.CreatedAt().Add(time.Minute)
	_, err = first.TransitionTo(order.Processing, at)
	suite.Require().NoError(err)
	_, err = second.TransitionTo(order.Cancelled, at)
	suite.Require().NoError(err)

	suite.Require().NoError(suite.repository.Update(ctx, first))
	err = suite.repository.Update(ctx, second)

	suite.Require().ErrorIs(err, errs.ErrConcurrencyConflict)
	got, err := suite.repository.Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Equal(order.Processing, got.Status())
}

func (suite *OrderRepositoryIntegrationTestSuite) TestUpdate_UnknownOrder_NotFound() {
	o := suite.newOrder()
	_, err := o.TransitionTo(order.Processing, o.CreatedAt().Add(time.Second))
	suite.Require().NoError(err)

	err = suite.repository.Update(context.Background(), o)

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_UnknownOrder_NotFound() {
	_, err := suite.repository.Get(context.Background(), kernel.NewUUID())

	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *OrderRepositoryIntegrationTestSuite) TestGet_CancelledContext_StorageError() {
	o := suite.newOrder()
	suite.Require().NoError(suite.repository.Add(context.Background(), o))

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := suite.repository.Get(ctx, o.ID())

	suite.Require().ErrorIs(err, errs.ErrStorage)
	suite.True(errs.IsTransient(err))
}

func (suite *OrderRepositoryIntegrationTestSuite) newOrder() *order.Order {
	shipping, err := kernel.NewAddress("Drottninggatan 1", "Stockholm", "Stockholm", "111 51", "SE")
	suite.Require().NoError(err)
	return suite.newOrderWith(&shipping)
}

func (suite *OrderRepositoryIntegrationTestSuite) newOrderWith(address *kernel.Address) *order.Order {
	mugPrice, err := kernel.NewMoney(decimal.RequireFromString("10.00"), "USD")
	suite.Require().NoError(err)
	penPrice, err := kernel.NewMoney(decimal.RequireFromString("5.00"), "USD")
	suite.Require().NoError(err)

	mug, err := order.NewItem(kernel.NewUUID(), "Mug", "MUG-01", 2, mugPrice)
	suite.Require().NoError(err)
	pen, err := order.NewItem(kernel.NewUUID(), "Pen", "", 1, penPrice)
	suite.Require().NoError(err)

	createdAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), []order.Item{mug, pen}, "USD",
		address, address, "leave at the door", createdAt)
	suite.Require().NoError(err)
	return o
}

func TestOrderRepositoryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration tests in short mode")
	}
	suite.Run(t, new(OrderRepositoryIntegrationTestSuite))
}
