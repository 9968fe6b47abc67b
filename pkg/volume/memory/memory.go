// Package memory implements an in-memory volume.
//
// Object records, directory entries, and markers live in maps guarded by a
// single read-write mutex. Stream payload bytes are delegated to the
// payload.Store the volume is constructed with, so an in-memory volume can
// still back its streams with filesystem or S3 payloads.
//
// Suitable for tests, the workbench CLI, and ephemeral volumes. Nothing
// survives the process.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hollowfs/hollowfs/pkg/payload"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// rootID is the well-known ID of the root container. IDs grow from here and
// are never reused.
const rootID volume.ObjectID = 1

// Volume is the in-memory implementation of volume.Volume.
//
// The mutex guards the structural maps (objects, entries, markers, ID
// allocation). Individual object records are not guarded: the host
// serializes calls touching the same object, and records must stay stable
// pointers so size memos written by one call are seen by the next.
type Volume struct {
	mu sync.RWMutex

	// objects maps IDs to their records. Records are handed out as-is;
	// the same pointer serves every call for a given ID.
	objects map[volume.ObjectID]*volume.Object

	// entries maps each container to its name -> child ID table.
	entries map[volume.ObjectID]map[string]volume.ObjectID

	// markers holds raw reparse marker blobs, keyed by object ID. The
	// volume never interprets them.
	markers map[volume.ObjectID][]byte

	nextID volume.ObjectID
	closed bool

	// payloads backs leaf data streams. Owned by the caller; Close does
	// not close it.
	payloads payload.Store
}

// New creates an empty volume with a root container. The payload store
// remains owned by the caller.
func New(ctx context.Context, payloads payload.Store) (*Volume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vol := &Volume{
		objects:  make(map[volume.ObjectID]*volume.Object),
		entries:  make(map[volume.ObjectID]map[string]volume.ObjectID),
		markers:  make(map[volume.ObjectID][]byte),
		nextID:   rootID + 1,
		payloads: payloads,
	}

	vol.objects[rootID] = &volume.Object{
		ID:    rootID,
		Kind:  volume.KindDirectory,
		Links: 1,
	}
	vol.entries[rootID] = make(map[string]volume.ObjectID)

	return vol, nil
}

// payloadKey derives the payload store key for an object's named stream.
func payloadKey(id volume.ObjectID, stream string) payload.ID {
	return payload.ID(fmt.Sprintf("%016x-%s", uint64(id), stream))
}

// validName rejects names no directory entry may carry.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\x00")
}

func errClosed() error {
	return &volume.Error{
		Code:    volume.ErrClosed,
		Message: "volume is closed",
	}
}

// Root returns the root container.
func (vol *Volume) Root(ctx context.Context) (*volume.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vol.mu.RLock()
	defer vol.mu.RUnlock()

	if vol.closed {
		return nil, errClosed()
	}
	return vol.objects[rootID], nil
}

// Object resolves an ID to its record.
func (vol *Volume) Object(ctx context.Context, id volume.ObjectID) (*volume.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vol.mu.RLock()
	defer vol.mu.RUnlock()

	if vol.closed {
		return nil, errClosed()
	}

	obj, exists := vol.objects[id]
	if !exists {
		return nil, &volume.Error{
			Code:    volume.ErrNotFound,
			Message: fmt.Sprintf("object %d not found", id),
		}
	}
	return obj, nil
}

// Lookup resolves a name within a container.
func (vol *Volume) Lookup(ctx context.Context, dir *volume.Object, name string) (*volume.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !dir.IsDir() {
		return nil, &volume.Error{
			Code:    volume.ErrNotDirectory,
			Message: "lookup in a non-directory",
			Path:    name,
		}
	}

	vol.mu.RLock()
	defer vol.mu.RUnlock()

	if vol.closed {
		return nil, errClosed()
	}

	id, exists := vol.entries[dir.ID][name]
	if !exists {
		return nil, &volume.Error{
			Code:    volume.ErrNotFound,
			Message: "no such entry",
			Path:    name,
		}
	}
	return vol.objects[id], nil
}

// Marker returns a copy of the object's raw marker, or nil if it has none.
func (vol *Volume) Marker(ctx context.Context, id volume.ObjectID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vol.mu.RLock()
	defer vol.mu.RUnlock()

	if vol.closed {
		return nil, errClosed()
	}

	if _, exists := vol.objects[id]; !exists {
		return nil, &volume.Error{
			Code:    volume.ErrNotFound,
			Message: fmt.Sprintf("object %d not found", id),
		}
	}

	blob, exists := vol.markers[id]
	if !exists {
		return nil, nil
	}

	blobCopy := make([]byte, len(blob))
	copy(blobCopy, blob)
	return blobCopy, nil
}

// SetMarker stores a copy of the marker blob, or detaches the marker when
// the blob is nil or empty.
func (vol *Volume) SetMarker(ctx context.Context, id volume.ObjectID, marker []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	vol.mu.Lock()
	defer vol.mu.Unlock()

	if vol.closed {
		return errClosed()
	}

	if _, exists := vol.objects[id]; !exists {
		return &volume.Error{
			Code:    volume.ErrNotFound,
			Message: fmt.Sprintf("object %d not found", id),
		}
	}

	if len(marker) == 0 {
		delete(vol.markers, id)
		return nil
	}

	blobCopy := make([]byte, len(marker))
	copy(blobCopy, marker)
	vol.markers[id] = blobCopy
	return nil
}

// SetOffline flips the object's offline flag.
func (vol *Volume) SetOffline(ctx context.Context, id volume.ObjectID, offline bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	vol.mu.Lock()
	defer vol.mu.Unlock()

	if vol.closed {
		return errClosed()
	}

	obj, exists := vol.objects[id]
	if !exists {
		return &volume.Error{
			Code:    volume.ErrNotFound,
			Message: fmt.Sprintf("object %d not found", id),
		}
	}

	obj.Offline = offline
	return nil
}

// OpenStream opens a named attribute stream on an object.
//
// Data streams delegate to the payload store. Index streams are built as a
// point-in-time image of the container's entries; later entry changes do not
// show through an open handle.
func (vol *Volume) OpenStream(ctx context.Context, obj *volume.Object, name string) (volume.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
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
			payloads: vol.payloads,
			obj:      obj,
			key:      payloadKey(obj.ID, volume.DataStream),
		}, nil

	case volume.IndexStream:
		if !obj.IsDir() {
			return nil, &volume.Error{
				Code:    volume.ErrNotDirectory,
				Message: "leaves have no index stream",
			}
		}

		image, err := vol.encodeIndex(obj.ID)
		if err != nil {
			return nil, err
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

// encodeIndex snapshots a container's entries under the read lock and
// serializes them into an index image.
func (vol *Volume) encodeIndex(dir volume.ObjectID) ([]byte, error) {
	vol.mu.RLock()
	defer vol.mu.RUnlock()

	if vol.closed {
		return nil, errClosed()
	}

	table, exists := vol.entries[dir]
	if !exists {
		return nil, &volume.Error{
			Code:    volume.ErrNotFound,
			Message: fmt.Sprintf("container %d not found", dir),
		}
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]volume.IndexEntry, 0, len(names))
	for _, name := range names {
		id := table[name]
		rows = append(rows, volume.IndexEntry{
			ID:   id,
			Kind: vol.objects[id].Kind,
			Name: name,
		})
	}

	image, err := volume.EncodeIndex(rows)
	if err != nil {
		return nil, &volume.Error{
			Code:    volume.ErrIOError,
			Message: err.Error(),
		}
	}
	return image, nil
}

// Create makes a new object under dir and links it there as name.
//
// Leaves get an empty payload immediately, so a data stream opened on a
// fresh leaf always has backing bytes to resize or read.
func (vol *Volume) Create(ctx context.Context, dir *volume.Object, name string, kind volume.Kind, securityID uint32) (*volume.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if kind != volume.KindFile && kind != volume.KindDirectory {
		return nil, &volume.Error{
			Code:    volume.ErrInvalidArgument,
			Message: fmt.Sprintf("cannot create object of kind %d", kind),
		}
	}
	if !dir.IsDir() {
		return nil, &volume.Error{
			Code:    volume.ErrNotDirectory,
			Message: "create in a non-directory",
			Path:    name,
		}
	}
	if !validName(name) {
		return nil, &volume.Error{
			Code:    volume.ErrInvalidArgument,
			Message: "invalid entry name",
			Path:    name,
		}
	}

	vol.mu.Lock()
	defer vol.mu.Unlock()

	if vol.closed {
		return nil, errClosed()
	}

	table, exists := vol.entries[dir.ID]
	if !exists {
		return nil, &volume.Error{
			Code:    volume.ErrNotFound,
			Message: fmt.Sprintf("container %d not found", dir.ID),
		}
	}
	if _, taken := table[name]; taken {
		return nil, &volume.Error{
			Code:    volume.ErrAlreadyExists,
			Message: "entry already exists",
			Path:    name,
		}
	}

	id := vol.nextID
	vol.nextID++

	obj := &volume.Object{
		ID:         id,
		Kind:       kind,
		Links:      1,
		SecurityID: securityID,
	}
	if kind == volume.KindFile {
		// Leaf sizes are authoritative from birth.
		obj.SizeKnown = true
	} else {
		vol.entries[id] = make(map[string]volume.ObjectID)
	}

	vol.objects[id] = obj
	table[name] = id

	if kind == volume.KindFile {
		if err := vol.payloads.WriteContent(ctx, payloadKey(id, volume.DataStream), nil); err != nil {
			delete(vol.objects, id)
			delete(table, name)
			return nil, &volume.Error{
				Code:    volume.ErrIOError,
				Message: fmt.Sprintf("creating payload: %v", err),
				Path:    name,
			}
		}
	}

	return obj, nil
}

// LinkObject links an existing leaf under dir as an additional name.
func (vol *Volume) LinkObject(ctx context.Context, dir *volume.Object, obj *volume.Object, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if obj.IsDir() {
		return &volume.Error{
			Code:    volume.ErrIsDirectory,
			Message: "containers cannot be multiply linked",
			Path:    name,
		}
	}
	if !dir.IsDir() {
		return &volume.Error{
			Code:    volume.ErrNotDirectory,
			Message: "link target parent is not a directory",
			Path:    name,
		}
	}
	if !validName(name) {
		return &volume.Error{
			Code:    volume.ErrInvalidArgument,
			Message: "invalid entry name",
			Path:    name,
		}
	}

	vol.mu.Lock()
	defer vol.mu.Unlock()

	if vol.closed {
		return errClosed()
	}

	table, exists := vol.entries[dir.ID]
	if !exists {
		return &volume.Error{
			Code:    volume.ErrNotFound,
			Message: fmt.Sprintf("container %d not found", dir.ID),
		}
	}
	if _, taken := table[name]; taken {
		return &volume.Error{
			Code:    volume.ErrAlreadyExists,
			Message: "entry already exists",
			Path:    name,
		}
	}

	table[name] = obj.ID
	obj.Links++
	return nil
}

// Unlink removes the entry name from dir. When the last link goes, the
// object is destroyed together with its marker and payload.
func (vol *Volume) Unlink(ctx context.Context, dir *volume.Object, path string, obj *volume.Object, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !dir.IsDir() {
		return &volume.Error{
			Code:    volume.ErrNotDirectory,
			Message: "unlink in a non-directory",
			Path:    path,
		}
	}

	vol.mu.Lock()
	defer vol.mu.Unlock()

	if vol.closed {
		return errClosed()
	}

	table, exists := vol.entries[dir.ID]
	if !exists {
		return &volume.Error{
			Code:    volume.ErrNotFound,
			Message: fmt.Sprintf("container %d not found", dir.ID),
		}
	}

	entryID, exists := table[name]
	if !exists {
		return &volume.Error{
			Code:    volume.ErrNotFound,
			Message: "no such entry",
			Path:    path,
		}
	}
	if obj != nil && entryID != obj.ID {
		return &volume.Error{
			Code:    volume.ErrNotFound,
			Message: "entry does not reference the given object",
			Path:    path,
		}
	}

	target := vol.objects[entryID]
	if target.IsDir() && len(vol.entries[entryID]) > 0 {
		return &volume.Error{
			Code:    volume.ErrNotEmpty,
			Message: "directory not empty",
			Path:    path,
		}
	}

	delete(table, name)
	target.Links--
	if target.Links > 0 {
		return nil
	}

	delete(vol.objects, entryID)
	delete(vol.markers, entryID)
	if target.IsDir() {
		delete(vol.entries, entryID)
		return nil
	}

	if err := vol.payloads.Delete(ctx, payloadKey(entryID, volume.DataStream)); err != nil {
		return &volume.Error{
			Code:    volume.ErrIOError,
			Message: fmt.Sprintf("deleting payload: %v", err),
			Path:    path,
		}
	}
	return nil
}

// ReadIndex walks dir's entries in name order starting at *pos.
//
// The entry table is snapshotted before emitting, so emit may call back into
// the volume. An entry refused by emit is not consumed; *pos stays on it for
// the next resume.
func (vol *Volume) ReadIndex(ctx context.Context, dir *volume.Object, pos *int64, emit volume.EmitFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	if !dir.IsDir() {
		return &volume.Error{
			Code:    volume.ErrNotDirectory,
			Message: "index walk on a non-directory",
		}
	}
	if *pos < 0 {
		return &volume.Error{
			Code:    volume.ErrInvalidArgument,
			Message: fmt.Sprintf("negative index position %d", *pos),
		}
	}

	vol.mu.RLock()
	if vol.closed {
		vol.mu.RUnlock()
		return errClosed()
	}

	table, exists := vol.entries[dir.ID]
	if !exists {
		vol.mu.RUnlock()
		return &volume.Error{
			Code:    volume.ErrNotFound,
			Message: fmt.Sprintf("container %d not found", dir.ID),
		}
	}

	names := make([]string, 0, len(table))
	for name := range table {
		names = append(names, name)
	}
	sort.Strings(names)

	type row struct {
		name string
		id   volume.ObjectID
		kind volume.Kind
	}
	rows := make([]row, 0, len(names))
	for _, name := range names {
		id := table[name]
		rows = append(rows, row{name: name, id: id, kind: vol.objects[id].Kind})
	}
	vol.mu.RUnlock()

	for i := *pos; i < int64(len(rows)); i++ {
		if !emit(rows[i].name, rows[i].id, rows[i].kind) {
			return nil
		}
		*pos++
	}
	return nil
}

// Close drops all state. The injected payload store stays open.
func (vol *Volume) Close() error {
	vol.mu.Lock()
	defer vol.mu.Unlock()

	if vol.closed {
		return nil
	}
	vol.closed = true
	vol.objects = nil
	vol.entries = nil
	vol.markers = nil
	return nil
}
