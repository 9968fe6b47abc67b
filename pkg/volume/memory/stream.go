package memory

import (
	"context"
	"errors"
	"fmt"

	"github.com/hollowfs/hollowfs/pkg/payload"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// dataStream is a leaf's data stream handle. Bytes live in the payload
// store; sizes stay authoritative on the object record, which this handle
// updates as it writes.
type dataStream struct {
	payloads payload.Store
	obj      *volume.Object
	key      payload.ID
	closed   bool
}

func (s *dataStream) Size() int64 {
	return s.obj.DataSize
}

func (s *dataStream) AllocatedSize() int64 {
	return s.obj.AllocatedSize
}

func (s *dataStream) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if s.closed {
		return 0, &volume.Error{Code: volume.ErrClosed, Message: "stream is closed"}
	}
	if off < 0 {
		return 0, &volume.Error{
			Code:    volume.ErrInvalidArgument,
			Message: fmt.Sprintf("negative offset %d", off),
		}
	}

	n, err := s.payloads.ReadAt(ctx, s.key, p, off)
	if err != nil {
		return n, translatePayload(err)
	}
	return n, nil
}

func (s *dataStream) WriteAt(ctx context.Context, p []byte, off int64) (int, error) {
	if s.closed {
		return 0, &volume.Error{Code: volume.ErrClosed, Message: "stream is closed"}
	}
	if off < 0 {
		return 0, &volume.Error{
			Code:    volume.ErrInvalidArgument,
			Message: fmt.Sprintf("negative offset %d", off),
		}
	}

	n, err := s.payloads.WriteAt(ctx, s.key, p, off)
	if n > 0 {
		if end := off + int64(n); end > s.obj.DataSize {
			s.setSize(end)
		}
	}
	if err != nil {
		return n, translatePayload(err)
	}
	return n, nil
}

func (s *dataStream) Resize(ctx context.Context, size int64) error {
	if s.closed {
		return &volume.Error{Code: volume.ErrClosed, Message: "stream is closed"}
	}
	if size < 0 {
		return &volume.Error{
			Code:    volume.ErrInvalidArgument,
			Message: fmt.Sprintf("negative size %d", size),
		}
	}

	if err := s.payloads.Truncate(ctx, s.key, size); err != nil {
		return translatePayload(err)
	}
	s.setSize(size)
	return nil
}

func (s *dataStream) Close() error {
	s.closed = true
	return nil
}

// setSize records a new data size on the object, keeping the allocated size
// rounded up to the data block unit.
func (s *dataStream) setSize(size int64) {
	s.obj.DataSize = size
	blocks := (size + volume.DataBlockSize - 1) / volume.DataBlockSize
	s.obj.AllocatedSize = blocks * volume.DataBlockSize
}

// translatePayload maps payload store errors onto volume error codes.
func translatePayload(err error) error {
	switch {
	case errors.Is(err, payload.ErrStorageFull):
		return &volume.Error{Code: volume.ErrNoSpace, Message: err.Error()}
	case errors.Is(err, payload.ErrInvalidOffset), errors.Is(err, payload.ErrInvalidSize):
		return &volume.Error{Code: volume.ErrInvalidArgument, Message: err.Error()}
	default:
		// Leaves are born with a payload, so ErrNotFound here means the
		// backing store lost it. That is an I/O failure like any other.
		return &volume.Error{Code: volume.ErrIOError, Message: err.Error()}
	}
}

// indexStream is a read-only point-in-time image of a container's index.
type indexStream struct {
	data   []byte
	closed bool
}

func (s *indexStream) Size() int64 {
	return int64(len(s.data))
}

func (s *indexStream) AllocatedSize() int64 {
	return volume.IndexAllocated(int64(len(s.data)))
}

func (s *indexStream) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if s.closed {
		return 0, &volume.Error{Code: volume.ErrClosed, Message: "stream is closed"}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, &volume.Error{
			Code:    volume.ErrInvalidArgument,
			Message: fmt.Sprintf("negative offset %d", off),
		}
	}

	if off >= int64(len(s.data)) {
		return 0, nil
	}
	return copy(p, s.data[off:]), nil
}

func (s *indexStream) WriteAt(ctx context.Context, p []byte, off int64) (int, error) {
	return 0, &volume.Error{
		Code:    volume.ErrNotSupported,
		Message: "index streams are read-only",
	}
}

func (s *indexStream) Resize(ctx context.Context, size int64) error {
	return &volume.Error{
		Code:    volume.ErrNotSupported,
		Message: "index streams are read-only",
	}
}

func (s *indexStream) Close() error {
	s.closed = true
	return nil
}
