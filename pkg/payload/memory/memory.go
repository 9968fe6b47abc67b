// Package memory implements in-memory payload storage.
//
// Payloads live in a map guarded by a read-write mutex. Useful for tests and
// ephemeral volumes; everything is lost when the process exits.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/hollowfs/hollowfs/pkg/payload"
)

// Store keeps every payload as a byte slice in process memory.
type Store struct {
	mu   sync.RWMutex
	data map[payload.ID][]byte
}

// New creates an empty in-memory payload store.
func New() *Store {
	return &Store{
		data: make(map[payload.ID][]byte),
	}
}

// ReadAt copies bytes from the payload into p starting at off.
//
// Reading at or past the end returns 0 with no error. The count may cover
// less than len(p) when the payload ends inside the requested range.
func (s *Store) ReadAt(ctx context.Context, id payload.ID, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, fmt.Errorf("offset %d: %w", off, payload.ErrInvalidOffset)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	existing, exists := s.data[id]
	if !exists {
		return 0, fmt.Errorf("payload %s: %w", id, payload.ErrNotFound)
	}

	if off >= int64(len(existing)) {
		return 0, nil
	}

	n := copy(p, existing[off:])
	return n, nil
}

// WriteAt writes p at off with sparse semantics: the payload is created if
// absent and any gap between its current end and off reads as zeros.
func (s *Store) WriteAt(ctx context.Context, id payload.ID, p []byte, off int64) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off < 0 {
		return 0, fmt.Errorf("offset %d: %w", off, payload.ErrInvalidOffset)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[id]
	newSize := off + int64(len(p))

	var result []byte
	if int64(len(existing)) >= newSize {
		// Existing payload already covers the written range.
		result = make([]byte, len(existing))
		copy(result, existing)
	} else {
		// Expand; the gap between the old end and off is zeros from make().
		result = make([]byte, newSize)
		copy(result, existing)
	}

	copy(result[off:], p)
	s.data[id] = result

	return len(p), nil
}

// Size returns the payload's current byte size.
func (s *Store) Size(ctx context.Context, id payload.ID) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	existing, exists := s.data[id]
	if !exists {
		return 0, fmt.Errorf("payload %s: %w", id, payload.ErrNotFound)
	}
	return int64(len(existing)), nil
}

// Truncate resizes the payload, zero-filling growth and discarding shrinkage.
func (s *Store) Truncate(ctx context.Context, id payload.ID, size int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if size < 0 {
		return fmt.Errorf("size %d: %w", size, payload.ErrInvalidSize)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.data[id]
	if !exists {
		return fmt.Errorf("truncate %s: %w", id, payload.ErrNotFound)
	}

	if int64(len(existing)) == size {
		return nil
	}

	resized := make([]byte, size)
	copy(resized, existing)
	s.data[id] = resized

	return nil
}

// WriteContent replaces the whole payload with a defensive copy of data.
func (s *Store) WriteContent(ctx context.Context, id payload.ID, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dataCopy := make([]byte, len(data))
	copy(dataCopy, data)
	s.data[id] = dataCopy

	return nil
}

// Delete removes the payload. Idempotent.
func (s *Store) Delete(ctx context.Context, id payload.ID) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, id)
	return nil
}

// Close drops every payload. The store stays usable afterwards, empty.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data = make(map[payload.ID][]byte)
	return nil
}
