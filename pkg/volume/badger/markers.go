package badger

import (
	"context"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

// Marker returns a copy of the object's raw marker blob, or nil if the
// object carries none. The blob is stored and returned verbatim; the volume
// never interprets it.
func (vol *Volume) Marker(ctx context.Context, id volume.ObjectID) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if vol.isClosed() {
		return nil, errClosed()
	}

	// Resolving the ID first keeps "object missing" and "marker missing"
	// distinguishable: the former is an error, the latter is nil.
	if _, err := vol.Object(ctx, id); err != nil {
		return nil, err
	}

	var blob []byte
	err := vol.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyMarker(uint64(id)))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, translateDB(err)
	}
	return blob, nil
}

// SetMarker stores the marker blob verbatim, or removes the marker key when
// the blob is nil or empty.
func (vol *Volume) SetMarker(ctx context.Context, id volume.ObjectID, marker []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if vol.isClosed() {
		return errClosed()
	}

	if _, err := vol.Object(ctx, id); err != nil {
		return err
	}

	err := vol.db.Update(func(txn *badger.Txn) error {
		if len(marker) == 0 {
			err := txn.Delete(keyMarker(uint64(id)))
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		return txn.Set(keyMarker(uint64(id)), marker)
	})
	if err != nil {
		return translateDB(err)
	}
	return nil
}

// SetOffline flips the object's offline flag and persists the record.
func (vol *Volume) SetOffline(ctx context.Context, id volume.ObjectID, offline bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if vol.isClosed() {
		return errClosed()
	}

	obj, err := vol.Object(ctx, id)
	if err != nil {
		return err
	}

	obj.Offline = offline
	return vol.flushRecord(obj)
}
