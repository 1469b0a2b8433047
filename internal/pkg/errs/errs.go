package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrObjectNotFound matches every ObjectNotFoundError.
	ErrObjectNotFound       = errors.New("object not found")
	// ErrValueIsInvalid matches every ValueIsInvalidError.
	ErrValueIsInvalid       = errors.New("value is invalid")
	// ErrValueIsOutOfRange matches every ValueIsOutOfRangeError.
	ErrValueIsOutOfRange    = errors.New("value is out of range")
	// ErrValueIsRequired matches every ValueIsRequiredError.
	ErrValueIsRequired      = errors.New("value is required")
	// ErrVersionIsInvalid matches every VersionIsInvalidError.
	ErrVersionIsInvalid     = errors.New("version is invalid")
	// ErrConcurrencyConflict matches every ConcurrencyConflictError.
	ErrConcurrencyConflict  = errors.New("concurrent modification")
	// ErrStorage matches every StorageError, transient or not.
	ErrStorage              = errors.New("storage failure")
	// ErrOperationIsForbidden matches every OperationIsForbiddenError.
	ErrOperationIsForbidden = errors.New("operation is forbidden")
)

// ObjectNotFoundError reports a lookup by identifier that matched nothing.
// ParamName names what was looked up ("order"), ID the identifier used.
//
// Example:
//
//	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
//	    return nil, errs.NewObjectNotFoundError("order", id.String())
//	}
type ObjectNotFoundError struct {
	ParamName string
	ID        any
	Cause     error
}

// NewObjectNotFoundError creates an ObjectNotFoundError without a cause.
//
// Example:
//
//	return nil, errs.NewObjectNotFoundError("order", id.String())
func NewObjectNotFoundError(paramName string, id any) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
	}
}

// NewObjectNotFoundErrorWithCause keeps the underlying error for logs.
func NewObjectNotFoundErrorWithCause(paramName string, id any, cause error) *ObjectNotFoundError {
	return &ObjectNotFoundError{
		ParamName: paramName,
		ID:        id,
		Cause:     cause,
	}
}

// Error includes the parameter name and the cause only when a cause is set.
// Line breaks in the identifier are replaced so the message stays on one line.
func (e *ObjectNotFoundError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: param is: %s, ID is: %s (cause: %v)",
			ErrObjectNotFound, e.ParamName, sanitize(fmt.Sprintf("%s", e.ID)), e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrObjectNotFound, sanitize(fmt.Sprintf("%s", e.ID)))
}

// Unwrap returns ErrObjectNotFound.
func (e *ObjectNotFoundError) Unwrap() error {
	return ErrObjectNotFound
}

// ValueIsInvalidError reports a value that failed a format or business rule.
type ValueIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewValueIsInvalidError creates a ValueIsInvalidError for paramName.
func NewValueIsInvalidError(paramName string) *ValueIsInvalidError {
	return &ValueIsInvalidError{ParamName: paramName}
}

// NewValueIsInvalidErrorWithCause attaches the reason the value was rejected.
//
// Example:
//
//	if len(code) != 3 {
//	    return errs.NewValueIsInvalidErrorWithCause("currency",
//	        fmt.Errorf("%q is not an ISO 4217 code", code))
//	}
func NewValueIsInvalidErrorWithCause(paramName string, cause error) *ValueIsInvalidError {
	return &ValueIsInvalidError{
		ParamName: paramName,
		Cause:     cause,
	}
}

// Error formats the parameter and, when present, the cause.
func (e *ValueIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsInvalid, e.ParamName)
}

// Unwrap returns ErrValueIsInvalid.
func (e *ValueIsInvalidError) Unwrap() error {
	return ErrValueIsInvalid
}

// ValueIsOutOfRangeError reports a value outside of [Min, Max].
type ValueIsOutOfRangeError struct {
	ParamName string
	Value     any
	Min       any
	Max       any
	Cause     error
}

// NewValueIsOutOfRangeError creates the error for value outside [minValue,
// maxValue]. Bounds are any so a side can be described, e.g. "unbounded".
//
// Example:
//
//	if quantity < 1 || quantity > MaxItemQuantity {
//	    return errs.NewValueIsOutOfRangeError("quantity", quantity, 1, MaxItemQuantity)
//	}
func NewValueIsOutOfRangeError(paramName string, value, minValue, maxValue any) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{
		ParamName: paramName,
		Value:     value,
		Min:       minValue,
		Max:       maxValue,
	}
}

// NewValueIsOutOfRangeErrorWithCause also records the cause.
func NewValueIsOutOfRangeErrorWithCause(
	paramName string,
	value, minValue, maxValue any,
	cause error,
) *ValueIsOutOfRangeError {
	return &ValueIsOutOfRangeError{
		ParamName: paramName,
		Value:     value,
		Min:       minValue,
		Max:       maxValue,
		Cause:     cause,
	}
}

// Error reports the value and both bounds.
func (e *ValueIsOutOfRangeError) Error() string {
	msg := fmt.Sprintf("%s: %v is %s, min value is %v, max value is %v",
		ErrValueIsInvalid, sanitize(fmt.Sprintf("%v", e.Value)), e.ParamName, e.Min, e.Max)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns ErrValueIsOutOfRange.
func (e *ValueIsOutOfRangeError) Unwrap() error {
	return ErrValueIsOutOfRange
}

// ValueIsRequiredError reports a missing mandatory value.
type ValueIsRequiredError struct {
	ParamName string
	Cause     error
}

// NewValueIsRequiredError creates the error for a missing paramName. Nested
// fields use dotted names, such as "shippingAddress.city".
//
// Example:
//
//	if strings.TrimSpace(actor) == "" {
//	    return errs.NewValueIsRequiredError("actor")
//	}
func NewValueIsRequiredError(paramName string) *ValueIsRequiredError {
	return &ValueIsRequiredError{ParamName: paramName}
}

// NewValueIsRequiredErrorWithCause also records the cause.
func NewValueIsRequiredErrorWithCause(paramName string, cause error) *ValueIsRequiredError {
	return &ValueIsRequiredError{
		ParamName: paramName,
		Cause:     cause,
	}
}

// Error formats the parameter and, when present, the cause.
func (e *ValueIsRequiredError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrValueIsRequired, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrValueIsRequired, e.ParamName)
}

// Unwrap returns ErrValueIsRequired.
func (e *ValueIsRequiredError) Unwrap() error {
	return ErrValueIsRequired
}

// VersionIsInvalidError reports a stored version that cannot belong to a
// persisted aggregate, such as zero. It is a data error, not a conflict.
type VersionIsInvalidError struct {
	ParamName string
	Cause     error
}

// NewVersionIsInvalidError creates the error without a cause.
func NewVersionIsInvalidError(paramName string) *VersionIsInvalidError {
	return &VersionIsInvalidError{ParamName: paramName}
}

// NewVersionIsInvalidErrorWithCause creates the error with the reason the
// version was rejected.
//
// Example:
//
//	if s.Version < 1 {
//	    return errs.NewVersionIsInvalidErrorWithCause("version", fmt.Errorf("%d is not positive", s.Version))
//	}
func NewVersionIsInvalidErrorWithCause(paramName string, cause error) *VersionIsInvalidError {
	return &VersionIsInvalidError{
		ParamName: paramName,
		Cause:     cause,
	}
}

// Error formats the parameter and, when present, the cause.
func (e *VersionIsInvalidError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrVersionIsInvalid, e.ParamName, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrVersionIsInvalid, e.ParamName)
}

// Unwrap returns ErrVersionIsInvalid.
func (e *VersionIsInvalidError) Unwrap() error {
	return ErrVersionIsInvalid
}

// ConcurrencyConflictError is returned to the writer that lost a compare-and-swap
// on an aggregate version. The caller must re-read before trying again.
//
// Conflicts are never retried inside the service: the state the caller decided
// on is gone, and only the caller can tell whether its change still applies.
type ConcurrencyConflictError struct {
	Aggregate       string
	ID              string
	ExpectedVersion int64
	Cause           error
}

// NewConcurrencyConflictError names the aggregate kind, its id and the version
// the writer expected to find.
//
// Example:
//
//	if result.RowsAffected == 0 {
//	    return errs.NewConcurrencyConflictError("order", o.ID().String(), o.PersistedVersion())
//	}
func NewConcurrencyConflictError(aggregate, id string, expectedVersion int64) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{
		Aggregate:       aggregate,
		ID:              id,
		ExpectedVersion: expectedVersion,
	}
}

// NewConcurrencyConflictErrorWithCause also records the cause, e.g. a unique violation.
func NewConcurrencyConflictErrorWithCause(
	aggregate, id string,
	expectedVersion int64,
	cause error,
) *ConcurrencyConflictError {
	return &ConcurrencyConflictError{
		Aggregate:       aggregate,
		ID:              id,
		ExpectedVersion: expectedVersion,
		Cause:           cause,
	}
}

// Error names the aggregate and the expected version.
func (e *ConcurrencyConflictError) Error() string {
	msg := fmt.Sprintf("%s: %s %s was modified concurrently (expected version %d)",
		ErrConcurrencyConflict, e.Aggregate, e.ID, e.ExpectedVersion)
	if e.Cause != nil {
		return fmt.Sprintf("%s (cause: %v)", msg, e.Cause)
	}
	return msg
}

// Unwrap returns ErrConcurrencyConflict.
func (e *ConcurrencyConflictError) Unwrap() error {
	return ErrConcurrencyConflict
}

// StorageError wraps a durable store failure. Transient failures (lost connection,
// serialization failure, deadline) may be retried by the caller.
//
// Transient is only set when the failed operation is known to have had no
// effect. A commit whose outcome is unknown is reported non-transient, since a
// replay could apply the same change twice.
//
// Example:
//
//	if err := tx.Commit().Error; err != nil {
//	    return errs.NewStorageError("commit transaction", err)
//	}
type StorageError struct {
	Operation string
	Transient bool
	Cause     error
}

// NewStorageError creates a non-transient StorageError.
//
// Example:
//
//	if err := tx.Commit().Error; err != nil {
//	    return errs.NewStorageError("commit transaction", err)
//	}
func NewStorageError(operation string, cause error) *StorageError {
	return &StorageError{
		Operation: operation,
		Cause:     cause,
	}
}

// NewTransientStorageError creates a StorageError that callers may retry.
//
// Example:
//
//	if errors.Is(err, context.DeadlineExceeded) {
//	    return errs.NewTransientStorageError("get order", err)
//	}
func NewTransientStorageError(operation string, cause error) *StorageError {
	return &StorageError{
		Operation: operation,
		Transient: true,
		Cause:     cause,
	}
}

// Error names the operation and the cause.
func (e *StorageError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", ErrStorage, e.Operation, e.Cause)
	}
	return fmt.Sprintf("%s: %s", ErrStorage, e.Operation)
}

// Unwrap returns ErrStorage and the cause, so errors.Is matches both, for
// example context.DeadlineExceeded.
func (e *StorageError) Unwrap() []error {
	if e.Cause != nil {
		return []error{ErrStorage, e.Cause}
	}
	return []error{ErrStorage}
}

// OperationIsForbiddenError reports an actor without the capability for an action.
type OperationIsForbiddenError struct {
	Actor  string
	Action string
}

// NewOperationIsForbiddenError creates the error for actor attempting action.
//
// Example:
//
//	if !checker.CanPerform(ctx, actor, ports.ActionAddInternalNote) {
//	    return nil, errs.NewOperationIsForbiddenError(actor.ID, string(ports.ActionAddInternalNote))
//	}
func NewOperationIsForbiddenError(actor, action string) *OperationIsForbiddenError {
	return &OperationIsForbiddenError{
		Actor:  actor,
		Action: action,
	}
}

// Error names the actor and the action.
func (e *OperationIsForbiddenError) Error() string {
	return fmt.Sprintf("%s: %s may not %s", ErrOperationIsForbidden, sanitize(e.Actor), e.Action)
}

// Unwrap returns ErrOperationIsForbidden.
func (e *OperationIsForbiddenError) Unwrap() error {
	return ErrOperationIsForbidden
}

// IsValidation reports whether err belongs to the input validation family.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValueIsInvalid) ||
		errors.Is(err, ErrValueIsRequired) ||
		errors.Is(err, ErrValueIsOutOfRange)
}

// IsConflict reports whether err is a lost optimistic concurrency race.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConcurrencyConflict)
}

// IsTransient reports whether err is a storage failure worth retrying.
//
// Example:
//
//	if errs.IsTransient(err) {
//	    return err // let the retry policy try again
//	}
//	return backoff.Permanent(err)
func IsTransient(err error) bool {
	var storageErr *StorageError
	return errors.As(err, &storageErr) && storageErr.Transient
}

func sanitize(s string) string {
	return strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ").Replace(s)
}
