package placeholder

import (
	"context"
	"errors"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

// Status is the host-visible result of a handler operation: zero for
// success, a negative errno-style code for failure. The host's operation
// surface passes these through unchanged.
type Status int32

const (
	// StatusOK indicates success.
	StatusOK Status = 0

	// StatusNotFound indicates the object or entry does not exist.
	StatusNotFound Status = -2

	// StatusIO indicates an unrecoverable I/O failure, including a
	// non-positive partial count from a volume primitive.
	StatusIO Status = -5

	// StatusPermission indicates the volume refused the operation.
	StatusPermission Status = -13

	// StatusExists indicates the target name is already taken.
	StatusExists Status = -17

	// StatusNotDirectory indicates a container was required.
	StatusNotDirectory Status = -20

	// StatusIsDirectory indicates a leaf was required.
	StatusIsDirectory Status = -21

	// StatusInvalid indicates missing arguments, or an out-of-scope marker
	// on the read/write/truncate path (those three treat a gate failure as a
	// malformed request; the host contract distinguishes this from
	// StatusNotSupported).
	StatusInvalid Status = -22

	// StatusNoSpace indicates the volume refused growth.
	StatusNoSpace Status = -28

	// StatusNotEmpty indicates a container still has entries.
	StatusNotEmpty Status = -39

	// StatusRemote indicates an in-scope leaf with no locally materialized
	// data. Callers may retry through another channel on this status but
	// must not on StatusNotSupported.
	StatusRemote Status = -66

	// StatusNotSupported is the uniform rejection for objects outside this
	// handler's scope or argument shapes it does not serve. Never follows
	// partial work.
	StatusNotSupported Status = -95
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusNotFound:
		return "not found"
	case StatusIO:
		return "i/o error"
	case StatusPermission:
		return "permission denied"
	case StatusExists:
		return "already exists"
	case StatusNotDirectory:
		return "not a directory"
	case StatusIsDirectory:
		return "is a directory"
	case StatusInvalid:
		return "invalid argument"
	case StatusNoSpace:
		return "no space"
	case StatusNotEmpty:
		return "not empty"
	case StatusRemote:
		return "resource remote"
	case StatusNotSupported:
		return "operation not supported"
	default:
		return "unknown status"
	}
}

// statusFromError maps a volume error onto the host status convention.
// Unknown shapes collapse to StatusIO: the volume failed in a way the host
// taxonomy cannot name more precisely.
func statusFromError(err error) Status {
	var volErr *volume.Error
	if !errors.As(err, &volErr) {
		return StatusIO
	}

	switch volErr.Code {
	case volume.ErrNotFound:
		return StatusNotFound
	case volume.ErrAlreadyExists:
		return StatusExists
	case volume.ErrNotEmpty:
		return StatusNotEmpty
	case volume.ErrIsDirectory:
		return StatusIsDirectory
	case volume.ErrNotDirectory:
		return StatusNotDirectory
	case volume.ErrInvalidArgument:
		return StatusInvalid
	case volume.ErrNoSpace:
		return StatusNoSpace
	case volume.ErrPermissionDenied:
		return StatusPermission
	case volume.ErrNotSupported:
		return StatusNotSupported
	default:
		return StatusIO
	}
}

// cancelled reports whether an error is the context's own termination, which
// operations surface as their error return instead of a status.
func cancelled(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
