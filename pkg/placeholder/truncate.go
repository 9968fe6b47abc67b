package placeholder

import (
	"github.com/hollowfs/hollowfs/internal/logger"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// TruncateRequest resizes an object's data stream.
type TruncateRequest struct {
	Object *volume.Object
	Marker []byte

	// Size is the new stream size. Growing zero-fills; shrinking discards.
	Size int64
}

// TruncateResponse carries the resize status.
type TruncateResponse struct {
	Status Status
}

// Truncate delegates a size change to the volume's stream-resize primitive.
//
// Containers, out-of-scope markers, and negative sizes are rejected with
// StatusInvalid before the stream is opened. The primitive's result is
// returned verbatim through the status mapping; the handler adds nothing.
func (h *DefaultHandler) Truncate(ctx *Context, req *TruncateRequest) (*TruncateResponse, error) {
	if err := ctx.Context.Err(); err != nil {
		return nil, err
	}

	if req == nil || req.Object == nil || req.Size < 0 || !inScope(req.Marker) {
		logger.Debug("TRUNCATE rejected: bad arguments or marker out of scope")
		return &TruncateResponse{Status: StatusInvalid}, nil
	}
	if req.Object.IsDir() {
		logger.Debug("TRUNCATE rejected: object %d is a container", req.Object.ID)
		return &TruncateResponse{Status: StatusInvalid}, nil
	}

	stream, err := ctx.Volume.OpenStream(ctx.Context, req.Object, volume.DataStream)
	if err != nil {
		if cancelled(err) {
			return nil, err
		}
		logger.Warn("TRUNCATE: cannot open data stream on object %d: %v", req.Object.ID, err)
		return &TruncateResponse{Status: statusFromError(err)}, nil
	}
	defer func() { _ = stream.Close() }()

	if err := stream.Resize(ctx.Context, req.Size); err != nil {
		if cancelled(err) {
			return nil, err
		}
		logger.Error("TRUNCATE: resize to %d failed on object %d: %v",
			req.Size, req.Object.ID, err)
		return &TruncateResponse{Status: statusFromError(err)}, nil
	}

	logger.Debug("TRUNCATE: object %d resized to %d", req.Object.ID, req.Size)
	return &TruncateResponse{Status: StatusOK}, nil
}
