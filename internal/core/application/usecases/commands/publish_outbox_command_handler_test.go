package commands_test

import (
	"context"
	"errors"
	"testing"

	"ordermgmt/internal/core/application/usecases/commands"
	"ordermgmt/internal/core/domain/model/history"
	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/order"
	"ordermgmt/internal/core/domain/model/outbox"
	"ordermgmt/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockOutboxUoW struct{ mock.Mock }

func (m *MockOutboxUoW) Begin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockOutboxUoW) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockOutboxUoW) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockOutboxUoW) OutboxRepository() ports.OutboxRepository {
	return m.Called().Get(0).(ports.OutboxRepository)
}

func pendingMessage(t *testing.T) *outbox.Message {
	t.Helper()
	o := existingOrder(t, order.Pending, order.PaymentPending)
	event, err := history.NewStatusChangeEvent(o.ID(), nil, order.Pending, "customer-7", "Order created", base)
	require.NoError(t, err)
	m, err := outbox.NewStatusChangedMessage(o, event.Stored(1, base))
	require.NoError(t, err)
	return m
}

func TestNewPublishOutboxCommand(t *testing.T) {
	_, err := commands.NewPublishOutboxCommand(0)
	require.Error(t, err)

	cmd, err := commands.NewPublishOutboxCommand(50)
	require.NoError(t, err)
	assert.Equal(t, 50, cmd.BatchSize())
}

func TestPublishOutboxCommandHandler_Handle_PublishesAndMarksSent(t *testing.T) {
	ctx := t.Context()
	batch := []*outbox.Message{pendingMessage(t), pendingMessage(t)}
	cmd, err := commands.NewPublishOutboxCommand(10)
	require.NoError(t, err)

	repo := new(MockOutboxRepository)
	publisher := new(MockMessagePublisher)
	uow := new(MockOutboxUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OutboxRepository").Return(repo).Once(),
		repo.On("ListPending", ctx, 10).Return(batch, nil).Once(),
		publisher.On("Publish", ctx, batch).Return(nil).Once(),
		repo.On("MarkSent", ctx, batch[0]).Return(nil).Once(),
		repo.On("MarkSent", ctx, batch[1]).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewPublishOutboxCommandHandler(factory, publisher, kernel.NewMonotonicClock(), zap.NewNop())
	n, err := h.Handle(ctx, cmd)
	require.NoError(t, err)

	assert.Equal(t, 2, n)
	assert.True(t, batch[0].IsSent())
	assert.True(t, batch[1].IsSent())
	repo.AssertExpectations(t)
	publisher.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestPublishOutboxCommandHandler_Handle_PublishFailureKeepsBatchPending(t *testing.T) {
	ctx := t.Context()
	batch := []*outbox.Message{pendingMessage(t)}
	cmd, err := commands.NewPublishOutboxCommand(10)
	require.NoError(t, err)

	repo := new(MockOutboxRepository)
	publisher := new(MockMessagePublisher)
	uow := new(MockOutboxUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OutboxRepository").Return(repo).Once(),
		repo.On("ListPending", ctx, 10).Return(batch, nil).Once(),
		publisher.On("Publish", ctx, batch).Return(errors.New("broker unavailable")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewPublishOutboxCommandHandler(factory, publisher, kernel.NewMonotonicClock(), zap.NewNop())
	_, err = h.Handle(ctx, cmd)
	require.EqualError(t, err, "broker unavailable")
	assert.False(t, batch[0].IsSent())
	repo.AssertNotCalled(t, "MarkSent", mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestPublishOutboxCommandHandler_Handle_EmptyBatch(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewPublishOutboxCommand(10)
	require.NoError(t, err)

	repo := new(MockOutboxRepository)
	uow := new(MockOutboxUoW)
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("OutboxRepository").Return(repo).Once(),
		repo.On("ListPending", ctx, 10).Return([]*outbox.Message{}, nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)
	factory := new(MockOutboxUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewPublishOutboxCommandHandler(factory, new(MockMessagePublisher), kernel.NewMonotonicClock(), zap.NewNop())
	n, err := h.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Zero(t, n)
}
