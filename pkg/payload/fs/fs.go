// Package fs implements payload storage on the local filesystem.
//
// Each payload is one file under the store's base directory, named by its ID.
// IDs produced by the volume backends are short hex strings, so no escaping
// or sharding is needed. Files are opened per call; the operating system's
// page cache makes repeated opens cheap, and no descriptor outlives a call.
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"syscall"

	"github.com/hollowfs/hollowfs/pkg/payload"
)

// Store keeps payloads as individual files under basePath.
type Store struct {
	basePath string
}

// New creates the base directory if needed and returns the store.
func New(ctx context.Context, basePath string) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("creating payload directory: %w", err)
	}

	return &Store{basePath: basePath}, nil
}

func (s *Store) path(id payload.ID) string {
	return filepath.Join(s.basePath, string(id))
}

// translate maps operating system errors onto the package sentinels.
func translate(id payload.ID, err error) error {
	switch {
	case err == nil:
		return nil
	case os.IsNotExist(err):
		return fmt.Errorf("payload %s: %w", id, payload.ErrNotFound)
	case errors.Is(err, syscall.ENOSPC):
		return fmt.Errorf("payload %s: %w", id, payload.ErrStorageFull)
	default:
		return err
	}
}

// ReadAt reads into p from the payload file at off.
func (s *Store) ReadAt(ctx context.Context, id payload.ID, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, fmt.Errorf("offset %d: %w", off, payload.ErrInvalidOffset)
	}

	f, err := os.Open(s.path(id))
	if err != nil {
		return 0, translate(id, err)
	}
	defer f.Close()

	n, err := f.ReadAt(p, off)
	if err == io.EOF {
		// Short or empty read at the end of the file is a success here.
		err = nil
	}
	return n, translate(id, err)
}

// WriteAt writes p at off, creating the file when absent. A write past the
// end leaves a hole the filesystem reads back as zeros.
func (s *Store) WriteAt(ctx context.Context, id payload.ID, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, fmt.Errorf("offset %d: %w", off, payload.ErrInvalidOffset)
	}

	f, err := os.OpenFile(s.path(id), os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return 0, translate(id, err)
	}
	defer f.Close()

	n, err := f.WriteAt(p, off)
	return n, translate(id, err)
}

// Size stats the payload file.
func (s *Store) Size(ctx context.Context, id payload.ID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	info, err := os.Stat(s.path(id))
	if err != nil {
		return 0, translate(id, err)
	}
	return info.Size(), nil
}

// Truncate resizes the payload file.
func (s *Store) Truncate(ctx context.Context, id payload.ID, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if size < 0 {
		return fmt.Errorf("size %d: %w", size, payload.ErrInvalidSize)
	}

	return translate(id, os.Truncate(s.path(id), size))
}

// WriteContent atomically replaces the payload: the data lands in a temp
// file first and is renamed into place, so readers never observe a partial
// replacement.
func (s *Store) WriteContent(ctx context.Context, id payload.ID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.basePath, "."+string(id)+".*")
	if err != nil {
		return translate(id, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return translate(id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return translate(id, err)
	}

	if err := os.Rename(tmpName, s.path(id)); err != nil {
		os.Remove(tmpName)
		return translate(id, err)
	}
	return nil
}

// Delete removes the payload file. Idempotent.
func (s *Store) Delete(ctx context.Context, id payload.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := os.Remove(s.path(id))
	if err != nil && !os.IsNotExist(err) {
		return translate(id, err)
	}
	return nil
}

// Close has nothing to release; files are opened per call.
func (s *Store) Close() error {
	return nil
}
