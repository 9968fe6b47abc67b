package placeholder

import (
	"github.com/hollowfs/hollowfs/internal/logger"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// WriteRequest transfers Buf into an object's data stream.
type WriteRequest struct {
	Object *volume.Object
	Marker []byte

	// Buf holds the bytes to write.
	Buf []byte

	// Offset is the stream position to write at. Writing past the current
	// end extends the stream.
	Offset int64
}

// WriteResponse reports how much of the request was stored.
type WriteResponse struct {
	Status Status

	// Count is the number of bytes written. On StatusOK it equals len(Buf).
	Count int
}

// Write performs a robust positioned write against the object's data stream.
//
// Unlike Read, the range is never clamped: writes may extend the stream.
// Containers are rejected outright. The loop mirrors Read's: positive
// partial counts accumulate, a non-positive or overlong count aborts with
// StatusIO, a primitive error propagates as its mapped status. The stream is
// closed on every exit path.
func (h *DefaultHandler) Write(ctx *Context, req *WriteRequest) (*WriteResponse, error) {
	if err := ctx.Context.Err(); err != nil {
		return nil, err
	}

	if req == nil || req.Object == nil || req.Buf == nil || req.Offset < 0 || !inScope(req.Marker) {
		logger.Debug("WRITE rejected: bad arguments or marker out of scope")
		return &WriteResponse{Status: StatusInvalid}, nil
	}
	if req.Object.IsDir() {
		logger.Debug("WRITE rejected: object %d is a container", req.Object.ID)
		return &WriteResponse{Status: StatusInvalid}, nil
	}

	stream, err := ctx.Volume.OpenStream(ctx.Context, req.Object, volume.DataStream)
	if err != nil {
		if cancelled(err) {
			return nil, err
		}
		logger.Warn("WRITE: cannot open data stream on object %d: %v", req.Object.ID, err)
		return &WriteResponse{Status: statusFromError(err)}, nil
	}
	defer func() { _ = stream.Close() }()

	want := len(req.Buf)
	total := 0
	offset := req.Offset
	for total < want {
		n, err := stream.WriteAt(ctx.Context, req.Buf[total:want], offset)
		if err != nil {
			if cancelled(err) {
				return nil, err
			}
			logger.Error("WRITE: stream write failed on object %d at offset %d: %v",
				req.Object.ID, offset, err)
			return &WriteResponse{Status: statusFromError(err)}, nil
		}
		if n <= 0 || n > want-total {
			logger.Error("WRITE: stream returned impossible count %d on object %d at offset %d",
				n, req.Object.ID, offset)
			return &WriteResponse{Status: StatusIO}, nil
		}
		total += n
		offset += int64(n)
	}

	logger.Debug("WRITE: object %d offset=%d written=%d", req.Object.ID, req.Offset, total)
	return &WriteResponse{Status: StatusOK, Count: total}, nil
}
