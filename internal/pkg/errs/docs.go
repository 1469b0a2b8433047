// Package errs holds the error kinds shared by the domain, the use cases and
// the adapters.
//
// Every kind is a sentinel (ErrValueIsRequired, ErrStorage, ...) plus a struct
// carrying the details, with constructors with and without a cause. Callers
// classify with errors.Is on the sentinel or with the helpers:
//
//   - IsValidation: ValueIsRequiredError, ValueIsInvalidError, ValueIsOutOfRangeError
//   - IsConflict: ConcurrencyConflictError, a writer that lost the version check
//   - IsTransient: a StorageError worth retrying
//
// ObjectNotFoundError and OperationIsForbiddenError complete the set. Domain
// specific kinds, such as an invalid status transition, live next to their
// aggregate.
package errs
