package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	"ordermgmt/internal/core/domain/model/kernel"
	"ordermgmt/internal/core/domain/model/outbox"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockWriter struct{ mock.Mock }

func (m *mockWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *mockWriter) Close() error {
	return m.Called().Error(0)
}

func TestOrderEventPublisher_Publish(t *testing.T) {
	ctx := t.Context()
	aggregateID := kernel.NewUUID()
	at := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	msg, err := outbox.RestoreMessage(kernel.NewUUID(), aggregateID, outbox.EventTypeOrderStatusChanged,
		[]byte(`{"to_status":"shipped"}`), at, nil)
	require.NoError(t, err)

	writer := new(mockWriter)
	writer.On("WriteMessages", ctx, mock.MatchedBy(func(msgs []kafka.Message) bool {
		return len(msgs) == 1 &&
			string(msgs[0].Key) == aggregateID.String() &&
			string(msgs[0].Value) == `{"to_status":"shipped"}` &&
			string(msgs[0].Headers[0].Value) == outbox.EventTypeOrderStatusChanged
	})).Return(nil).Once()

	p := newOrderEventPublisher(zap.NewNop(), writer, "orders.status")

	require.NoError(t, p.Publish(ctx, msg))
	writer.AssertExpectations(t)
}

func TestOrderEventPublisher_PropagatesWriteError(t *testing.T) {
	ctx := t.Context()
	msg, err := outbox.RestoreMessage(kernel.NewUUID(), kernel.NewUUID(), "e", []byte(`{}`), time.Now(), nil)
	require.NoError(t, err)

	writer := new(mockWriter)
	writer.On("WriteMessages", ctx, mock.Anything).Return(errors.New("broker down")).Once()

	err = newOrderEventPublisher(zap.NewNop(), writer, "t").Publish(ctx, msg)

	assert.EqualError(t, err, "broker down")
}

func TestOrderEventPublisher_EmptyBatchIsNoop(t *testing.T) {
	writer := new(mockWriter)

	require.NoError(t, newOrderEventPublisher(zap.NewNop(), writer, "t").Publish(t.Context()))
	writer.AssertNotCalled(t, "WriteMessages", mock.Anything, mock.Anything)
}
