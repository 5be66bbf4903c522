package ride

import "errors"

// Sentinel errors for the ride lifecycle. Handlers branch on these with
// errors.Is and translate them into short user-facing messages; the raw
// detail is only ever logged.
var (
	// ErrValidation marks malformed or missing input (absent pickup
	// coordinates, rating outside 1-5). Never retried.
	ErrValidation = errors.New("validation error")

	// ErrConflict marks an optimistic-concurrency failure: the ride was
	// accepted by another driver, or its status changed under the caller.
	// Surfaced to users as "ride no longer available".
	ErrConflict = errors.New("ride state conflict")

	// ErrInvalidTransition marks a status change with no edge from the
	// ride's current status. A UI-state bug rather than a race.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrNotFound marks a ride ID with no stored document.
	ErrNotFound = errors.New("ride not found")

	// ErrUnavailable marks an unreachable collaborator (store, directions,
	// notification dispatch). Lifecycle writes are not silently retried to
	// keep notification sends at-most-once.
	ErrUnavailable = errors.New("service unavailable")
)
