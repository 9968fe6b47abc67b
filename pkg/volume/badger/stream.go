package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/hollowfs/hollowfs/pkg/payload"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// payloadKey derives the payload store key for an object's named stream.
func payloadKey(id volume.ObjectID, stream string) payload.ID {
	return payload.ID(fmt.Sprintf("%016x-%s", uint64(id), stream))
}

// OpenStream opens a named attribute stream on an object.
//
// Data streams delegate to the payload store and flush size changes back to
// the object record. Index streams are point-in-time images of the
// container's entry table.
func (vol *Volume) OpenStream(ctx context.Context, obj *volume.Object, name string) (volume.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if vol.isClosed() {
		return nil, errClosed()
	}

	switch name {
	case volume.DataStream:
		if obj.IsDir() {
			return nil, &volume.Error{
				Code:    volume.ErrIsDirectory,
				Message: "containers have no data stream",
			}
		}
		return &dataStream{
			vol: vol,
			obj: obj,
			key: payloadKey(obj.ID, volume.DataStream),
		}, nil

	case volume.IndexStream:
		if !obj.IsDir() {
			return nil, &volume.Error{
				Code:    volume.ErrNotDirectory,
				Message: "leaves have no index stream",
			}
		}

		entries, err := vol.collectEntries(ctx, obj.ID)
		if err != nil {
			return nil, err
		}
		image, err := volume.EncodeIndex(entries)
		if err != nil {
			return nil, ioError(err)
		}
		return &indexStream{data: image}, nil

	default:
		return nil, &volume.Error{
			Code:    volume.ErrNotFound,
			Message: "unknown stream",
			Path:    name,
		}
	}
}

// dataStream is a leaf's data stream handle. Bytes live in the payload
// store; size changes land on the object record and persist immediately, so
// a crash cannot leave the record behind the payload.
type dataStream struct {
	vol    *Volume
	obj    *volume.Object
	key    payload.ID
	closed bool
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

	n, err := s.vol.payloads.ReadAt(ctx, s.key, p, off)
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

	n, err := s.vol.payloads.WriteAt(ctx, s.key, p, off)
	if n > 0 {
		if end := off + int64(n); end > s.obj.DataSize {
			if flushErr := s.setSize(end); flushErr != nil && err == nil {
				return n, flushErr
			}
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

	if err := s.vol.payloads.Truncate(ctx, s.key, size); err != nil {
		return translatePayload(err)
	}
	return s.setSize(size)
}

func (s *dataStream) Close() error {
	s.closed = true
	return nil
}

// setSize records a new data size on the object and persists the record.
func (s *dataStream) setSize(size int64) error {
	s.obj.DataSize = size
	blocks := (size + volume.DataBlockSize - 1) / volume.DataBlockSize
	s.obj.AllocatedSize = blocks * volume.DataBlockSize
	return s.vol.flushRecord(s.obj)
}

// translatePayload maps payload store errors onto volume error codes.
func translatePayload(err error) error {
	switch {
	case errors.Is(err, payload.ErrStorageFull):
		return &volume.Error{Code: volume.ErrNoSpace, Message: err.Error()}
	case errors.Is(err, payload.ErrInvalidOffset), errors.Is(err, payload.ErrInvalidSize):
		return &volume.Error{Code: volume.ErrInvalidArgument, Message: err.Error()}
	default:
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
