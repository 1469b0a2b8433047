// Package queries contains read-only operations. None of them opens a write
// transaction; they are safe to run concurrently with commands and each other.
package queries

import (
	"context"
	"time"

	"ordermgmt/internal/core/ports"
)

type (
	// LifecycleReader exposes the repositories outside of a transaction.
	LifecycleReader interface {
		OrderRepository() ports.OrderRepository
		HistoryRepository() ports.HistoryRepository
	}

	// LifecycleReaderFactory hands out a LifecycleReader per query.
	LifecycleReaderFactory interface {
		Create() LifecycleReader
	}
)

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
