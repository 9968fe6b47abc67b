package placeholder

import (
	"github.com/hollowfs/hollowfs/internal/logger"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// ReadRequest transfers bytes from an object's data stream into Buf.
type ReadRequest struct {
	Object *volume.Object
	Marker []byte

	// Buf receives the data. Its length is the requested transfer size.
	Buf []byte

	// Offset is the stream position to read from.
	Offset int64
}

// ReadResponse reports how much of the request was delivered.
type ReadResponse struct {
	Status Status

	// Count is the number of bytes placed in Buf. Less than len(Buf) only
	// when the read was clamped at end of stream.
	Count int
}

// Read performs a robust positioned read against the object's data stream.
//
// The requested range is clamped to the stream's current size: an offset at
// or past the end returns zero bytes with StatusOK, and a range crossing the
// end is shrunk so the transfer never does. Within the clamped range the
// underlying stream may complete partially per call, so the read loops,
// accumulating positive partial counts until the full clamped size is
// delivered. A zero or overlong count aborts with StatusIO; a primitive
// error propagates as its mapped status.
//
// The stream is opened for this call only and closed on every exit path.
func (h *DefaultHandler) Read(ctx *Context, req *ReadRequest) (*ReadResponse, error) {
	if err := ctx.Context.Err(); err != nil {
		return nil, err
	}

	if req == nil || req.Object == nil || req.Buf == nil || req.Offset < 0 || !inScope(req.Marker) {
		logger.Debug("READ rejected: bad arguments or marker out of scope")
		return &ReadResponse{Status: StatusInvalid}, nil
	}

	stream, err := ctx.Volume.OpenStream(ctx.Context, req.Object, volume.DataStream)
	if err != nil {
		if cancelled(err) {
			return nil, err
		}
		logger.Warn("READ: cannot open data stream on object %d: %v", req.Object.ID, err)
		return &ReadResponse{Status: statusFromError(err)}, nil
	}
	defer func() { _ = stream.Close() }()

	size := stream.Size()
	if req.Offset >= size {
		logger.Debug("READ: offset %d at or past end of stream (size %d) on object %d",
			req.Offset, size, req.Object.ID)
		return &ReadResponse{Status: StatusOK, Count: 0}, nil
	}

	want := len(req.Buf)
	if req.Offset+int64(want) > size {
		want = int(size - req.Offset)
	}

	total := 0
	offset := req.Offset
	for total < want {
		n, err := stream.ReadAt(ctx.Context, req.Buf[total:want], offset)
		if err != nil {
			if cancelled(err) {
				return nil, err
			}
			logger.Error("READ: stream read failed on object %d at offset %d: %v",
				req.Object.ID, offset, err)
			return &ReadResponse{Status: statusFromError(err)}, nil
		}
		if n <= 0 || n > want-total {
			logger.Error("READ: stream returned impossible count %d on object %d at offset %d",
				n, req.Object.ID, offset)
			return &ReadResponse{Status: StatusIO}, nil
		}
		total += n
		offset += int64(n)
	}

	logger.Debug("READ: object %d offset=%d requested=%d delivered=%d",
		req.Object.ID, req.Offset, len(req.Buf), total)
	return &ReadResponse{Status: StatusOK, Count: total}, nil
}
