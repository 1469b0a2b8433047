package pgerr_test

import (
	"context"
	"errors"
	"fmt"
	"net"
	"syscall"
	"testing"

	"ordermgmt/internal/adapters/out/postgres/pgerr"
	"ordermgmt/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		transient bool
	}{
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, transient: true},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, transient: true},
		{name: "connection failure", err: &pgconn.PgError{Code: "08006"}, transient: true},
		{name: "statement timeout", err: &pgconn.PgError{Code: "57014"}, transient: true},
		{name: "deadline", err: fmt.Errorf("query: %w", context.DeadlineExceeded), transient: true},
		{name: "syntax error", err: &pgconn.PgError{Code: "42601"}, transient: false},
		{name: "check violation", err: &pgconn.PgError{Code: "23514"}, transient: false},
		{name: "plain error", err: errors.New("boom"), transient: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := pgerr.Classify("get order", tc.err)

			require.ErrorIs(t, err, errs.ErrStorage)
			require.ErrorIs(t, err, tc.err)
			assert.Equal(t, tc.transient, errs.IsTransient(err))
		})
	}
}

func TestClassify_PassesApplicationErrorsThrough(t *testing.T) {
	notFound := errs.NewObjectNotFoundError("order", "1")
	conflict := errs.NewConcurrencyConflictError("order", "1", 2)

	assert.Same(t, notFound, pgerr.Classify("get order", notFound))
	assert.Same(t, conflict, pgerr.Classify("update order", conflict))
	assert.NoError(t, pgerr.Classify("noop", nil))
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, pgerr.IsUniqueViolation(fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"})))
	assert.False(t, pgerr.IsUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, pgerr.IsUniqueViolation(errors.New("duplicate key")))
}

func TestClassifyCommit(t *testing.T) {
	testCases := []struct {
		name      string
		err       error
		transient bool
	}{
		{name: "serialization failure", err: &pgconn.PgError{Code: "40001"}, transient: true},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, transient: true},
		{name: "connection reset awaiting reply", err: &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}, transient: false},
		{name: "deadline awaiting reply", err: fmt.Errorf("commit: %w", context.DeadlineExceeded), transient: false},
		{name: "admin shutdown", err: &pgconn.PgError{Code: "57P01"}, transient: false},
		{name: "plain error", err: errors.New("unexpected EOF"), transient: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := pgerr.ClassifyCommit("commit transaction", tc.err)

			require.ErrorIs(t, err, errs.ErrStorage)
			require.ErrorIs(t, err, tc.err)
			assert.Equal(t, tc.transient, errs.IsTransient(err))
		})
	}
}

func TestClassifyCommit_DiffersFromClassifyOnLostConnection(t *testing.T) {
	lost := &net.OpError{Op: "read", Net: "tcp", Err: syscall.ECONNRESET}

	assert.True(t, errs.IsTransient(pgerr.Classify("get order", lost)))
	assert.False(t, errs.IsTransient(pgerr.ClassifyCommit("commit transaction", lost)))
	assert.NoError(t, pgerr.ClassifyCommit("commit transaction", nil))
}
