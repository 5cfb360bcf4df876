// Package apperrors defines the error taxonomy shared by the store,
// cascade engine and device boundary. Callers branch with errors.Is.
package apperrors

import "errors"

var (
	// ErrNotFound is returned when an entity id is absent from the store.
	ErrNotFound = errors.New("record not found")

	// ErrIllegalState is returned when a mutation violates a static
	// invariant, such as editing a bundled site or checking out of a
	// schedule that was never checked into.
	ErrIllegalState = errors.New("illegal state")

	// ErrValidation is returned for malformed input: a bad time string,
	// out-of-range coordinates, or a requiem schedule carrying a site id.
	ErrValidation = errors.New("validation failed")

	// ErrTransportUnavailable is returned when a device API (location,
	// camera, calendar) denies permission or times out.
	ErrTransportUnavailable = errors.New("device transport unavailable")

	// ErrStoreUnavailable is returned when the local store cannot be
	// opened or migrated. Fatal to startup.
	ErrStoreUnavailable = errors.New("store unavailable")
)
