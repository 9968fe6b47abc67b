package payload

import "errors"

// Sentinel errors shared by all payload store implementations. Volumes check
// for these with errors.Is and translate them into volume error codes.
//
// Implementations wrap them with context:
//
//	return fmt.Errorf("payload %s: %w", id, payload.ErrNotFound)
var (
	// ErrNotFound indicates the payload does not exist. Returned by ReadAt,
	// Size, and Truncate on absent IDs. Delete of an absent ID is not an
	// error (idempotent).
	ErrNotFound = errors.New("payload not found")

	// ErrInvalidOffset indicates a negative or otherwise impossible offset.
	// An offset beyond the current size is NOT an error: reads there return
	// zero bytes and writes extend sparsely.
	ErrInvalidOffset = errors.New("invalid offset")

	// ErrInvalidSize indicates a negative size argument.
	ErrInvalidSize = errors.New("invalid size")

	// ErrStorageFull indicates the backend has no space left. Transient.
	ErrStorageFull = errors.New("storage full")

	// ErrUnavailable indicates the backend cannot be reached right now.
	// Transient; S3 returns this after its retry budget is exhausted.
	ErrUnavailable = errors.New("storage unavailable")
)
