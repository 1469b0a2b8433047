// Package shutdown runs cleanup functions when the process is asked to stop.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

type step struct {
	name string
	fn   func(context.Context) error
}

// Manager runs registered steps in reverse registration order, each under its
// own timeout.
type Manager struct {
	timeout time.Duration
	logger  *zap.Logger

	mu    sync.Mutex
	steps []step
}

// New returns a manager whose steps each get timeout to finish.
//
// Example:
//
//	sd := shutdown.New(cfg.ShutdownTimeout, logger)
//	sd.Add("http", e.Shutdown)
//	sd.Add("database", func(context.Context) error { return sqlDB.Close() })
//	sd.Wait(context.Background())
func New(timeout time.Duration, logger *zap.Logger) *Manager {
	return &Manager{
		timeout: timeout,
		logger:  logger,
	}
}

// Add registers a step. Steps added later run first.
func (m *Manager) Add(name string, fn func(context.Context) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.steps = append(m.steps, step{name: name, fn: fn})
}

// Wait blocks until SIGINT or SIGTERM, or until ctx is done, then shuts down.
func (m *Manager) Wait(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	m.logger.Info("shutdown requested")
	m.Shutdown()
}

// Shutdown runs every step once.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	steps := m.steps
	m.steps = nil
	m.mu.Unlock()

	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		start := time.Now()
		err := s.fn(ctx)
		cancel()

		if err != nil {
			m.logger.Error("shutdown step failed",
				zap.String("name", s.name),
				zap.Duration("duration", time.Since(start)),
				zap.Error(err),
			)
			continue
		}
		m.logger.Info("shutdown step completed",
			zap.String("name", s.name),
			zap.Duration("duration", time.Since(start)),
		)
	}
}
