package store

import "errors"

// Sentinel errors for the store package.
var (
	// ErrInvalidEntity is returned when an entity or capture fails validation.
	ErrInvalidEntity = errors.New("invalid entity")

	// ErrInvalidLimit is returned when a query limit is negative.
	ErrInvalidLimit = errors.New("invalid limit")

	// ErrRebuildClosed is returned when a finished rebuild is used again.
	ErrRebuildClosed = errors.New("rebuild already finished")
)
