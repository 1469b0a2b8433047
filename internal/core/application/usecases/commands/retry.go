package commands

import (
	"context"
	"errors"
	"time"

	"ordermgmt/internal/core/ports"
	"ordermgmt/internal/pkg/errs"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
)

// RetryPolicy bounds the retries of transient storage failures. Conflicts,
// validation and graph errors are never retried.
type RetryPolicy struct {
	MaxRetries      uint64
	InitialInterval time.Duration
	MaxInterval     time.Duration
	// Timeout limits every attempt. Zero means no limit beyond the caller's context.
	Timeout time.Duration
}

// DefaultRetryPolicy retries three times with backoff from 50ms to 500ms and
// gives every attempt five seconds.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:      3,
		InitialInterval: 50 * time.Millisecond,
		MaxInterval:     500 * time.Millisecond,
		Timeout:         5 * time.Second,
	}
}

// NoRetry runs the operation once.
func NoRetry() RetryPolicy {
	return RetryPolicy{}
}

type retrier struct {
	policy  RetryPolicy
	metrics ports.LifecycleMetrics
	logger  *zap.Logger
}

// run executes attempt until it succeeds, fails permanently or the retries are
// spent. Each attempt gets a fresh context bounded by policy.Timeout.
func (r retrier) run(ctx context.Context, operation string, attempt func(ctx context.Context) error) error {
	exp := backoff.NewExponentialBackOff()
	if r.policy.InitialInterval > 0 {
		exp.InitialInterval = r.policy.InitialInterval
	}
	if r.policy.MaxInterval > 0 {
		exp.MaxInterval = r.policy.MaxInterval
	}
	exp.MaxElapsedTime = 0

	var b backoff.BackOff = backoff.WithMaxRetries(exp, r.policy.MaxRetries)
	b = backoff.WithContext(b, ctx)

	tries := 0
	op := func() error {
		tries++
		attemptCtx, cancel := r.attemptContext(ctx)
		defer cancel()

		err := attempt(attemptCtx)
		if err == nil {
			return nil
		}
		if errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, errs.ErrStorage) {
			err = errs.NewTransientStorageError(operation, err)
		}
		if errs.IsTransient(err) {
			return err
		}
		return backoff.Permanent(err)
	}

	notify := func(err error, wait time.Duration) {
		r.metrics.StorageRetried(operation)
		r.logger.Warn("retrying after transient storage failure",
			zap.String("operation", operation),
			zap.Int("attempt", tries),
			zap.Duration("backoff", wait),
			zap.Error(err),
		)
	}

	err := backoff.RetryNotify(op, b, notify)
	if err == nil {
		return nil
	}
	if errs.IsConflict(err) {
		r.metrics.ConflictDetected(operation)
	}
	if ctxErr := ctx.Err(); ctxErr != nil && !errors.Is(err, errs.ErrStorage) {
		return errs.NewStorageError(operation, ctxErr)
	}
	return err
}

func (r retrier) attemptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.policy.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.policy.Timeout)
}
