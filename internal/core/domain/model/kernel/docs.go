// Package kernel holds the value objects shared by every aggregate of the order
// management domain: identifiers, money, postal addresses and the clock that
// stamps lifecycle events.
//
// All values are immutable once built and are safe to share between goroutines.
// Constructors validate their input and report failures with the errs package,
// so callers can tell a malformed request apart from a storage problem.
package kernel
