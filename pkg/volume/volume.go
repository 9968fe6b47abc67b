// Package volume defines the storage contract the placeholder handler and the
// workbench consume: object records, named attribute streams with positioned
// partial I/O, directory indices, and object lifecycle primitives.
//
// Two backends implement it: memory (ephemeral) and badger (persistent).
// Stream payload bytes are delegated to a payload.Store, so either backend
// can pair with in-memory, filesystem, or S3 payload storage.
package volume

import "context"

// Stream name constants. Every leaf owns a data stream; every container owns
// a synthetic, read-only index stream describing its entries.
const (
	DataStream  = "data"
	IndexStream = "index"
)

// IndexBlockSize is the allocation unit the index stream reports: its
// allocated size is the serialized index rounded up to this boundary.
const IndexBlockSize = 4096

// DataBlockSize is the allocation unit for leaf data streams. Allocated
// sizes are data sizes rounded up to this boundary, matching the 512-byte
// block unit hosts use for block counts.
const DataBlockSize = 512

// EmitFunc receives directory entries during index enumeration. Returning
// false stops the walk; the cursor keeps the position so enumeration can
// resume.
type EmitFunc func(name string, id ObjectID, kind Kind) bool

// ============================================================================
// Stream Interface
// ============================================================================

// Stream is an open attribute stream. Streams are cheap, call-scoped handles:
// callers open, use, and close them within a single operation and never keep
// them across calls.
//
// Positioned transfers follow partial-completion semantics: ReadAt and
// WriteAt may transfer fewer bytes than requested and still succeed. Callers
// needing a full transfer must loop. This deliberately differs from
// io.ReaderAt, which forbids short reads.
type Stream interface {
	// Size returns the stream's data size as of open time, kept current
	// through this handle's own writes and resizes.
	Size() int64

	// AllocatedSize returns the bytes backing the stream on the volume.
	AllocatedSize() int64

	// ReadAt reads into p from the given offset. It returns the number of
	// bytes read, which may be less than len(p). A zero count with a nil
	// error means nothing was available at that offset.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// WriteAt writes p at the given offset, extending the stream as needed.
	// Writing past the current end zero-fills the gap. The count may be less
	// than len(p).
	WriteAt(ctx context.Context, p []byte, off int64) (int, error)

	// Resize grows (zero-filling) or shrinks (discarding) the stream.
	Resize(ctx context.Context, size int64) error

	// Close releases the handle. Close is idempotent.
	Close() error
}

// ============================================================================
// Volume Interface
// ============================================================================

// Volume is the storage collaborator: it owns object records, their markers,
// their streams, and the directory structure.
//
// Instance stability: Object, Lookup, Root, and Create return the same
// *Object pointer for a given ID for the lifetime of the volume handle.
// Record fields a caller fills in (the container size memo) are therefore
// visible to later calls. Structural state (entry tables, ID allocation) is
// guarded internally; individual records are not, because the host
// serializes calls on the same object.
//
// All operations respect context cancellation.
type Volume interface {
	// Root returns the volume's root container.
	Root(ctx context.Context) (*Object, error)

	// Object resolves an ID to its record.
	//
	// Returns ErrNotFound if no such object exists.
	Object(ctx context.Context, id ObjectID) (*Object, error)

	// Lookup resolves a name within a container.
	//
	// Returns ErrNotDirectory if dir is a leaf, ErrNotFound if the name has
	// no entry.
	Lookup(ctx context.Context, dir *Object, name string) (*Object, error)

	// Marker returns the object's raw reparse marker, or nil if the object
	// carries none. Absence is not an error: the host passes a nil marker to
	// the handler, which rejects the call as out of scope.
	Marker(ctx context.Context, id ObjectID) ([]byte, error)

	// SetMarker attaches a raw marker blob to an object, replacing any
	// previous one. A nil or empty blob detaches the marker. The volume
	// stores the blob verbatim; it never interprets it.
	SetMarker(ctx context.Context, id ObjectID, marker []byte) error

	// SetOffline flips the object's offline flag.
	SetOffline(ctx context.Context, id ObjectID, offline bool) error

	// OpenStream opens a named attribute stream on an object.
	//
	// DataStream is valid on leaves only (ErrIsDirectory on containers);
	// IndexStream on containers only (ErrNotDirectory on leaves). Unknown
	// names return ErrNotFound. The returned handle must be closed by the
	// caller before its operation returns.
	OpenStream(ctx context.Context, obj *Object, name string) (Stream, error)

	// Create makes a new object of the given kind under dir and links it
	// there as name. The new object starts non-offline, with no marker, with
	// a link count of one.
	//
	// Returns ErrNotDirectory if dir is a leaf, ErrAlreadyExists if the name
	// is taken, ErrInvalidArgument for bad names or kinds.
	Create(ctx context.Context, dir *Object, name string, kind Kind, securityID uint32) (*Object, error)

	// LinkObject links an existing leaf under dir as an additional name.
	// Containers cannot be multiply linked (ErrIsDirectory).
	LinkObject(ctx context.Context, dir *Object, obj *Object, name string) error

	// Unlink removes the entry name from dir. The full path is carried
	// through for backends that keep path-derived state; in-tree backends
	// use it for diagnostics only. When the last link goes, the object, its
	// payload, and its marker are destroyed. Non-empty containers return
	// ErrNotEmpty.
	Unlink(ctx context.Context, dir *Object, path string, obj *Object, name string) error

	// ReadIndex walks dir's entries in name order starting at *pos (an entry
	// ordinal), calling emit for each and advancing *pos past every entry
	// delivered. It stops early without error when emit returns false.
	//
	// Returns ErrNotDirectory if dir is a leaf.
	ReadIndex(ctx context.Context, dir *Object, pos *int64, emit EmitFunc) error

	// Close releases the volume handle and its resources.
	Close() error
}
