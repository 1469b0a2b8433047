package shutdown_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"ordermgmt/internal/pkg/shutdown"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestManager_RunsStepsInReverseOnce(t *testing.T) {
	m := shutdown.New(time.Second, zap.NewNop())
	var order []string
	m.Add("db", func(context.Context) error { order = append(order, "db"); return nil })
	m.Add("http", func(context.Context) error { order = append(order, "http"); return errors.New("busy") })
	m.Add("jobs", func(context.Context) error { order = append(order, "jobs"); return nil })

	m.Shutdown()
	m.Shutdown()

	assert.Equal(t, []string{"jobs", "http", "db"}, order)
}

func TestManager_WaitReturnsWhenContextEnds(t *testing.T) {
	m := shutdown.New(time.Second, zap.NewNop())
	called := false
	m.Add("step", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		called = hasDeadline
		return nil
	})

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	m.Wait(ctx)

	assert.True(t, called)
}
