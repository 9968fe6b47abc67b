package volume

// Error represents a domain error from volume operations.
//
// These are business logic errors (object not found, name taken, wrong kind)
// as opposed to infrastructure errors (disk failure, network failure). The
// handler layer translates Error codes into the negative statuses its host
// convention uses.
type Error struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Path is the name or path related to the error (if applicable)
	Path string
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Path != "" {
		return e.Message + ": " + e.Path
	}
	return e.Message
}

// ErrorCode represents the category of a volume error.
type ErrorCode int

const (
	// ErrNotFound indicates the object, entry, or marker doesn't exist
	ErrNotFound ErrorCode = iota

	// ErrAlreadyExists indicates an entry with the name already exists
	ErrAlreadyExists

	// ErrNotEmpty indicates a directory still has entries
	ErrNotEmpty

	// ErrIsDirectory indicates the operation expected a file but got a directory
	ErrIsDirectory

	// ErrNotDirectory indicates the operation expected a directory but got a file
	ErrNotDirectory

	// ErrInvalidArgument indicates invalid parameters (empty name, bad kind,
	// negative offset or size)
	ErrInvalidArgument

	// ErrIOError indicates an I/O error against the backing store
	ErrIOError

	// ErrNoSpace indicates the volume refused growth
	ErrNoSpace

	// ErrPermissionDenied indicates the volume refused the mutation
	ErrPermissionDenied

	// ErrNotSupported indicates the primitive is not available on this
	// stream or backend (for example writing to an index stream)
	ErrNotSupported

	// ErrClosed indicates the volume or stream handle was already closed
	ErrClosed
)

func (c ErrorCode) String() string {
	switch c {
	case ErrNotFound:
		return "not found"
	case ErrAlreadyExists:
		return "already exists"
	case ErrNotEmpty:
		return "not empty"
	case ErrIsDirectory:
		return "is a directory"
	case ErrNotDirectory:
		return "not a directory"
	case ErrInvalidArgument:
		return "invalid argument"
	case ErrIOError:
		return "i/o error"
	case ErrNoSpace:
		return "no space"
	case ErrPermissionDenied:
		return "permission denied"
	case ErrNotSupported:
		return "not supported"
	case ErrClosed:
		return "closed"
	default:
		return "unknown"
	}
}
