package models

import "errors"

// Error taxonomy shared by the stores and services. Callers classify with
// errors.Is; the excluded API layer maps these onto status codes.
var (
	// ErrNotFound covers absent records and mismatched parentage, e.g. a POC
	// that does not belong to the given lead.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput covers bad order lines, unknown time zones and
	// nonexistent local times.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDependencyUnavailable covers unreachable or timed-out stores. Safe
	// to retry.
	ErrDependencyUnavailable = errors.New("dependency unavailable")

	// ErrConflict covers mutations blocked by existing references, such as
	// deleting a lead that still has contacts or calls.
	ErrConflict = errors.New("conflict")
)
