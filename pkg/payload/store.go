// Package payload defines byte storage for attribute stream contents.
//
// A payload is an uninterpreted, independently sized byte sequence identified
// by an opaque ID. Volumes keep object metadata (sizes, links, markers)
// themselves and delegate stream bytes here, so one volume implementation can
// pair with in-memory, local-filesystem, or S3 payload storage.
package payload

import "context"

// ID identifies one payload within a store. Volumes derive IDs from object
// identifiers; stores treat them as opaque keys.
type ID string

// Store is the payload storage contract.
//
// Positioned transfers may complete partially: ReadAt and WriteAt return the
// byte count actually transferred, which may be less than len(p) with a nil
// error. Callers loop as needed.
//
// Implementations must be safe for concurrent use by multiple goroutines.
type Store interface {
	// ReadAt reads into p from the given offset. Reading at or past the end
	// returns 0 with no error; reading an absent payload returns
	// ErrNotFound.
	ReadAt(ctx context.Context, id ID, p []byte, off int64) (int, error)

	// WriteAt writes p at the given offset, creating the payload if absent.
	// Writing past the end zero-fills the gap (sparse semantics).
	WriteAt(ctx context.Context, id ID, p []byte, off int64) (int, error)

	// Size returns the payload's current byte size.
	Size(ctx context.Context, id ID) (int64, error)

	// Truncate sets the payload to exactly size bytes, zero-filling growth
	// and discarding shrinkage. Truncating an absent payload returns
	// ErrNotFound.
	Truncate(ctx context.Context, id ID, size int64) error

	// WriteContent replaces the whole payload, creating it if absent.
	// Used by seeding and tooling; regular stream writes go through WriteAt.
	WriteContent(ctx context.Context, id ID, data []byte) error

	// Delete removes the payload. Deleting an absent payload succeeds.
	Delete(ctx context.Context, id ID) error

	// Close releases backend resources.
	Close() error
}
