// Package pgerr maps PostgreSQL driver errors onto the application error types.
package pgerr

import (
	"context"
	"database/sql/driver"
	"errors"
	"net"

	"ordermgmt/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
)

const (
	uniqueViolation     = "23505"
	transactionRollback = "40"
)

// transientClasses are SQLSTATE classes after which the same statement may succeed.
var transientClasses = map[string]struct{}{
	"08": {}, // connection exception
	"40": {}, // transaction rollback: serialization failure, deadlock
	"53": {}, // insufficient resources
	"57": {}, // operator intervention: admin shutdown, statement timeout
}

// Classify wraps err into an errs.StorageError, flagged transient when a retry
// may succeed. Errors of the application's own families pass through.
func Classify(operation string, err error) error {
	if err == nil {
		return nil
	}
	if passThrough(err) {
		return err
	}
	if IsTransient(err) {
		return errs.NewTransientStorageError(operation, err)
	}
	return errs.NewStorageError(operation, err)
}

// ClassifyCommit is Classify for a failed COMMIT.
//
// A COMMIT that failed after it reached the server may have been applied, and
// replaying the transaction would then run its statements a second time. The
// result is transient only when the error proves nothing was applied: the
// driver never sent the statement (pgconn.SafeToRetry) or the server answered
// with a transaction rollback (SQLSTATE class 40). Everything else, including a
// deadline or a broken connection while waiting for the reply, is reported as a
// non-transient storage error whose outcome is unknown.
func ClassifyCommit(operation string, err error) error {
	if err == nil {
		return nil
	}
	if passThrough(err) {
		return err
	}
	if pgconn.SafeToRetry(err) || rolledBack(err) {
		return errs.NewTransientStorageError(operation, err)
	}
	return errs.NewStorageError(operation, err)
}

// IsTransient reports whether err looks like a temporary failure of the store.
func IsTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, driver.ErrBadConn) {
		return true
	}
	if pgconn.Timeout(err) || pgconn.SafeToRetry(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		_, ok := transientClasses[sqlStateClass(pgErr.Code)]
		return ok
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}

// IsUniqueViolation reports a unique constraint violation.
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

func passThrough(err error) bool {
	return errors.Is(err, errs.ErrStorage) ||
		errors.Is(err, errs.ErrObjectNotFound) ||
		errors.Is(err, errs.ErrConcurrencyConflict) ||
		errs.IsValidation(err)
}

func rolledBack(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && sqlStateClass(pgErr.Code) == transactionRollback
}

func sqlStateClass(code string) string {
	if len(code) < 2 {
		return ""
	}
	return code[:2]
}
