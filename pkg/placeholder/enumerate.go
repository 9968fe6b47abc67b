package placeholder

import (
	"github.com/hollowfs/hollowfs/internal/logger"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// Access is the host's declared access intent when opening a container.
type Access uint32

const (
	// AccessRead is a read-only open. The only intent OpenList accepts.
	AccessRead Access = iota

	// AccessWrite is a write-only open.
	AccessWrite

	// AccessReadWrite is a read-write open.
	AccessReadWrite
)

// OpenListRequest asks whether a container can be enumerated.
type OpenListRequest struct {
	Object *volume.Object
	Marker []byte

	// Access is the host's declared intent. Anything beyond read is
	// rejected: placeholders are not locally writable as directories.
	Access Access
}

// OpenListResponse carries the open decision.
type OpenListResponse struct {
	Status Status
}

// OpenList validates that an object is an in-scope container opened with
// read-only intent. Like OpenRead, no handle is created; Enumerate resolves
// everything it needs per call.
func (h *DefaultHandler) OpenList(ctx *Context, req *OpenListRequest) (*OpenListResponse, error) {
	if err := ctx.Context.Err(); err != nil {
		return nil, err
	}

	if req == nil || req.Object == nil || !inScope(req.Marker) {
		logger.Debug("OPENDIR rejected: object or marker out of scope")
		return &OpenListResponse{Status: StatusNotSupported}, nil
	}
	if !req.Object.IsDir() {
		logger.Debug("OPENDIR rejected: object %d is not a container", req.Object.ID)
		return &OpenListResponse{Status: StatusNotSupported}, nil
	}
	if req.Access != AccessRead {
		logger.Debug("OPENDIR rejected: write intent on container %d", req.Object.ID)
		return &OpenListResponse{Status: StatusNotSupported}, nil
	}

	return &OpenListResponse{Status: StatusOK}, nil
}

// EnumerateRequest walks a container's entries.
type EnumerateRequest struct {
	Object *volume.Object
	Marker []byte

	// Pos is the enumeration cursor, advanced past every entry delivered.
	// Owned by the host across calls; the handler passes it through.
	Pos *int64

	// Emit receives each entry. Returning false stops the walk without
	// consuming the entry.
	Emit volume.EmitFunc
}

// EnumerateResponse carries the walk status.
type EnumerateResponse struct {
	Status Status
}

// Enumerate forwards the walk to the volume's directory-index reader,
// passing the cursor and sink through unchanged. The reader's error
// propagates verbatim through the status mapping.
func (h *DefaultHandler) Enumerate(ctx *Context, req *EnumerateRequest) (*EnumerateResponse, error) {
	if err := ctx.Context.Err(); err != nil {
		return nil, err
	}

	if req == nil || req.Object == nil || req.Pos == nil || req.Emit == nil || !inScope(req.Marker) {
		logger.Debug("READDIR rejected: bad arguments or marker out of scope")
		return &EnumerateResponse{Status: StatusNotSupported}, nil
	}
	if !req.Object.IsDir() {
		logger.Debug("READDIR rejected: object %d is not a container", req.Object.ID)
		return &EnumerateResponse{Status: StatusNotSupported}, nil
	}

	if err := ctx.Volume.ReadIndex(ctx.Context, req.Object, req.Pos, req.Emit); err != nil {
		if cancelled(err) {
			return nil, err
		}
		logger.Warn("READDIR: index walk failed on container %d: %v", req.Object.ID, err)
		return &EnumerateResponse{Status: statusFromError(err)}, nil
	}

	return &EnumerateResponse{Status: StatusOK}, nil
}
