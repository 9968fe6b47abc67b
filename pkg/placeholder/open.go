package placeholder

import (
	"github.com/hollowfs/hollowfs/internal/logger"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// OpenReadRequest asks whether an object can serve local reads.
type OpenReadRequest struct {
	Object *volume.Object
	Marker []byte
}

// OpenReadResponse carries the open decision.
type OpenReadResponse struct {
	Status Status
}

// OpenRead validates that an object is an in-scope leaf with local data.
//
// The two failure statuses are deliberately distinct: StatusNotSupported
// means the object is not this handler's to serve (wrong marker, wrong
// kind), while StatusRemote means it is ours but carries no local bytes.
// Callers may retry through another channel on StatusRemote; they must not
// on StatusNotSupported.
//
// No handle is created: read, write, and truncate reopen the data stream on
// every call, so a successful open here is a pure admission decision.
func (h *DefaultHandler) OpenRead(ctx *Context, req *OpenReadRequest) (*OpenReadResponse, error) {
	if err := ctx.Context.Err(); err != nil {
		return nil, err
	}

	if req == nil || req.Object == nil || !inScope(req.Marker) {
		logger.Debug("OPEN rejected: object or marker out of scope")
		return &OpenReadResponse{Status: StatusNotSupported}, nil
	}
	if req.Object.IsDir() {
		logger.Debug("OPEN rejected: object %d is a container", req.Object.ID)
		return &OpenReadResponse{Status: StatusNotSupported}, nil
	}

	if req.Object.Offline {
		logger.Info("OPEN: object %d is offline, data is remote only", req.Object.ID)
		return &OpenReadResponse{Status: StatusRemote}, nil
	}

	return &OpenReadResponse{Status: StatusOK}, nil
}

// ReleaseRequest ends a logical object handle.
type ReleaseRequest struct {
	Object *volume.Object
	Marker []byte
}

// ReleaseResponse is always a success.
type ReleaseResponse struct {
	Status Status
}

// Release completes the OPENED -> ... -> RELEASED lifecycle. The handler
// retains no per-handle state (every I/O call reopens the stream it needs),
// so there is nothing to tear down and the operation cannot fail.
func (h *DefaultHandler) Release(ctx *Context, req *ReleaseRequest) (*ReleaseResponse, error) {
	return &ReleaseResponse{Status: StatusOK}, nil
}
