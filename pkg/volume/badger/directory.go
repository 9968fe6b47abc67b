package badger

import (
	"context"
	"fmt"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

// validName rejects names no directory entry may carry.
func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, "/\x00")
}

// Lookup resolves a name within a container.
func (vol *Volume) Lookup(ctx context.Context, dir *volume.Object, name string) (*volume.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if vol.isClosed() {
		return nil, errClosed()
	}

	if !dir.IsDir() {
		return nil, &volume.Error{
			Code:    volume.ErrNotDirectory,
			Message: "lookup in a non-directory",
			Path:    name,
		}
	}

	var childID volume.ObjectID
	err := vol.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyEntry(uint64(dir.ID), name))
		if err == badger.ErrKeyNotFound {
			return &volume.Error{
				Code:    volume.ErrNotFound,
				Message: "no such entry",
				Path:    name,
			}
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			raw, err := decodeUint64(val)
			if err != nil {
				return err
			}
			childID = volume.ObjectID(raw)
			return nil
		})
	})
	if err != nil {
		return nil, translateDB(err)
	}

	return vol.Object(ctx, childID)
}

// Create makes a new object under dir and links it there as name.
//
// The record, the entry, and the ID counter move in one transaction; the
// leaf's empty payload is seeded after commit and rolled back on failure.
func (vol *Volume) Create(ctx context.Context, dir *volume.Object, name string, kind volume.Kind, securityID uint32) (*volume.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if vol.isClosed() {
		return nil, errClosed()
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

	var newID volume.ObjectID
	err := vol.db.Update(func(txn *badger.Txn) error {
		// The container may have been destroyed since the caller resolved it.
		if _, err := txn.Get(keyObject(uint64(dir.ID))); err != nil {
			if err == badger.ErrKeyNotFound {
				return &volume.Error{
					Code:    volume.ErrNotFound,
					Message: fmt.Sprintf("container %d not found", dir.ID),
				}
			}
			return err
		}

		_, err := txn.Get(keyEntry(uint64(dir.ID), name))
		if err == nil {
			return &volume.Error{
				Code:    volume.ErrAlreadyExists,
				Message: "entry already exists",
				Path:    name,
			}
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		// Allocate the next ID.
		item, err := txn.Get(keyNextID)
		if err != nil {
			return err
		}
		var next uint64
		if err := item.Value(func(val []byte) error {
			next, err = decodeUint64(val)
			return err
		}); err != nil {
			return err
		}
		if err := txn.Set(keyNextID, encodeUint64(next+1)); err != nil {
			return err
		}
		newID = volume.ObjectID(next)

		recBytes, err := encodeRecord(&volume.Object{
			ID:         newID,
			Kind:       kind,
			Links:      1,
			SecurityID: securityID,
		})
		if err != nil {
			return err
		}
		if err := txn.Set(keyObject(next), recBytes); err != nil {
			return err
		}
		return txn.Set(keyEntry(uint64(dir.ID), name), encodeUint64(next))
	})
	if err != nil {
		return nil, translateDB(err)
	}

	obj := &volume.Object{
		ID:         newID,
		Kind:       kind,
		Links:      1,
		SecurityID: securityID,
	}
	if kind == volume.KindFile {
		obj.SizeKnown = true
	}
	obj = vol.internObject(obj)

	if kind == volume.KindFile {
		if err := vol.payloads.WriteContent(ctx, payloadKey(newID, volume.DataStream), nil); err != nil {
			// Roll the creation back rather than leave a leaf with no payload.
			vol.forgetObject(newID)
			_ = vol.db.Update(func(txn *badger.Txn) error {
				if err := txn.Delete(keyObject(uint64(newID))); err != nil {
					return err
				}
				return txn.Delete(keyEntry(uint64(dir.ID), name))
			})
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
	if vol.isClosed() {
		return errClosed()
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

	// Bump the live record first so the transaction persists the new count;
	// undone if the transaction fails.
	obj.Links++
	recBytes, err := encodeRecord(obj)
	if err != nil {
		obj.Links--
		return ioError(err)
	}

	err = vol.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyObject(uint64(dir.ID))); err != nil {
			if err == badger.ErrKeyNotFound {
				return &volume.Error{
					Code:    volume.ErrNotFound,
					Message: fmt.Sprintf("container %d not found", dir.ID),
				}
			}
			return err
		}

		_, err := txn.Get(keyEntry(uint64(dir.ID), name))
		if err == nil {
			return &volume.Error{
				Code:    volume.ErrAlreadyExists,
				Message: "entry already exists",
				Path:    name,
			}
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		if err := txn.Set(keyEntry(uint64(dir.ID), name), encodeUint64(uint64(obj.ID))); err != nil {
			return err
		}
		return txn.Set(keyObject(uint64(obj.ID)), recBytes)
	})
	if err != nil {
		obj.Links--
		return translateDB(err)
	}
	return nil
}

// Unlink removes the entry name from dir. When the last link goes, the
// object is destroyed together with its marker and payload.
func (vol *Volume) Unlink(ctx context.Context, dir *volume.Object, path string, obj *volume.Object, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if vol.isClosed() {
		return errClosed()
	}

	if !dir.IsDir() {
		return &volume.Error{
			Code:    volume.ErrNotDirectory,
			Message: "unlink in a non-directory",
			Path:    path,
		}
	}

	var (
		target    *volume.Object
		destroyed bool
	)
	err := vol.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(keyEntry(uint64(dir.ID), name))
		if err == badger.ErrKeyNotFound {
			return &volume.Error{
				Code:    volume.ErrNotFound,
				Message: "no such entry",
				Path:    path,
			}
		}
		if err != nil {
			return err
		}

		var entryID volume.ObjectID
		if err := item.Value(func(val []byte) error {
			raw, err := decodeUint64(val)
			if err != nil {
				return err
			}
			entryID = volume.ObjectID(raw)
			return nil
		}); err != nil {
			return err
		}

		if obj != nil && entryID != obj.ID {
			return &volume.Error{
				Code:    volume.ErrNotFound,
				Message: "entry does not reference the given object",
				Path:    path,
			}
		}

		// Resolve the target inside the transaction for a consistent view.
		recItem, err := txn.Get(keyObject(uint64(entryID)))
		if err != nil {
			return err
		}
		if err := recItem.Value(func(val []byte) error {
			decoded, err := decodeRecord(entryID, val)
			if err != nil {
				return err
			}
			target = decoded
			return nil
		}); err != nil {
			return err
		}

		if target.IsDir() {
			empty, err := directoryEmpty(txn, uint64(entryID))
			if err != nil {
				return err
			}
			if !empty {
				return &volume.Error{
					Code:    volume.ErrNotEmpty,
					Message: "directory not empty",
					Path:    path,
				}
			}
		}

		if err := txn.Delete(keyEntry(uint64(dir.ID), name)); err != nil {
			return err
		}

		if target.Links <= 1 {
			destroyed = true
			if err := txn.Delete(keyObject(uint64(entryID))); err != nil {
				return err
			}
			return txn.Delete(keyMarker(uint64(entryID)))
		}

		target.Links--
		recBytes, err := encodeRecord(target)
		if err != nil {
			return err
		}
		return txn.Set(keyObject(uint64(entryID)), recBytes)
	})
	if err != nil {
		return translateDB(err)
	}

	// Mirror the committed state onto the live instance, if one is cached.
	if live, exists := vol.cachedObject(target.ID); exists {
		live.Links--
	}
	if !destroyed {
		return nil
	}

	vol.forgetObject(target.ID)
	if target.Kind == volume.KindFile {
		if err := vol.payloads.Delete(ctx, payloadKey(target.ID, volume.DataStream)); err != nil {
			return &volume.Error{
				Code:    volume.ErrIOError,
				Message: fmt.Sprintf("deleting payload: %v", err),
				Path:    path,
			}
		}
	}
	return nil
}

// directoryEmpty reports whether a container has no entries, within txn.
func directoryEmpty(txn *badger.Txn, dirID uint64) (bool, error) {
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Prefix = keyEntryPrefix(dirID)

	it := txn.NewIterator(opts)
	defer it.Close()

	it.Rewind()
	return !it.Valid(), nil
}

// collectEntries snapshots a container's entries in name order and resolves
// each child's kind. The scan itself runs in one view transaction; kinds
// resolve through the object cache afterwards.
func (vol *Volume) collectEntries(ctx context.Context, dirID volume.ObjectID) ([]volume.IndexEntry, error) {
	type row struct {
		name string
		id   volume.ObjectID
	}

	var rows []row
	err := vol.db.View(func(txn *badger.Txn) error {
		if _, err := txn.Get(keyObject(uint64(dirID))); err != nil {
			if err == badger.ErrKeyNotFound {
				return &volume.Error{
					Code:    volume.ErrNotFound,
					Message: fmt.Sprintf("container %d not found", dirID),
				}
			}
			return err
		}

		prefix := keyEntryPrefix(uint64(dirID))
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = true
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := item.Key()
			if len(key) <= len(prefix) {
				continue
			}
			name := string(key[len(prefix):])

			var childID volume.ObjectID
			if err := item.Value(func(val []byte) error {
				raw, err := decodeUint64(val)
				if err != nil {
					return err
				}
				childID = volume.ObjectID(raw)
				return nil
			}); err != nil {
				return err
			}

			rows = append(rows, row{name: name, id: childID})
		}
		return nil
	})
	if err != nil {
		return nil, translateDB(err)
	}

	entries := make([]volume.IndexEntry, 0, len(rows))
	for _, r := range rows {
		child, err := vol.Object(ctx, r.id)
		if err != nil {
			return nil, err
		}
		entries = append(entries, volume.IndexEntry{
			ID:   r.id,
			Kind: child.Kind,
			Name: r.name,
		})
	}
	return entries, nil
}

// ReadIndex walks dir's entries in name order starting at *pos. Badger's
// lexicographic key order under the fixed-width prefix delivers names
// already sorted. An entry refused by emit is not consumed.
func (vol *Volume) ReadIndex(ctx context.Context, dir *volume.Object, pos *int64, emit volume.EmitFunc) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if vol.isClosed() {
		return errClosed()
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

	entries, err := vol.collectEntries(ctx, dir.ID)
	if err != nil {
		return err
	}

	for i := *pos; i < int64(len(entries)); i++ {
		e := entries[i]
		if !emit(e.Name, e.ID, e.Kind) {
			return nil
		}
		*pos++
	}
	return nil
}
