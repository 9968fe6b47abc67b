// Package badger implements a persistent volume on BadgerDB.
//
// Object records, directory entries, and markers live in namespaced keys
// (see keys.go); stream payload bytes are delegated to the payload.Store the
// volume is constructed with. Records survive restarts; container size memos
// do not, by design of the record codec.
package badger

import (
	"context"
	"fmt"
	"sync"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/hollowfs/hollowfs/pkg/payload"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// rootID is the well-known ID of the root container, written on first open.
const rootID volume.ObjectID = 1

// Volume is the BadgerDB implementation of volume.Volume.
//
// The contract requires stable per-ID record instances, so decoded records
// are cached: every resolution of an ID returns the same *volume.Object
// until the volume closes. Record mutations flush back to the database
// (leaf sizes, links, flags); the cache keeps the live pointer.
type Volume struct {
	// db is the BadgerDB database handle (thread-safe, internal MVCC)
	db *badger.DB

	// mu guards the object cache and the closed flag.
	mu sync.Mutex

	// cache maps IDs to their live record instances.
	cache map[volume.ObjectID]*volume.Object

	closed bool

	// payloads backs leaf data streams. Owned by the caller; Close does
	// not close it.
	payloads payload.Store
}

// Config contains configuration for creating a badger volume.
type Config struct {
	// DBPath is the directory where BadgerDB stores its files.
	DBPath string `mapstructure:"db_path"`

	// BlockCacheSizeMB is BadgerDB's block cache size in MB (default: 64).
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`

	// IndexCacheSizeMB is BadgerDB's index cache size in MB (default: 32).
	IndexCacheSizeMB int64 `mapstructure:"index_cache_size_mb"`

	// Payloads backs leaf data streams. Wired by the caller, not by
	// configuration files.
	Payloads payload.Store
}

// New opens (or creates) the database at cfg.DBPath and makes sure the root
// container exists.
func New(ctx context.Context, cfg Config) (*Volume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Payloads == nil {
		return nil, fmt.Errorf("payload store is required")
	}

	opts := badger.DefaultOptions(cfg.DBPath)
	opts = opts.WithLoggingLevel(badger.WARNING)
	opts = opts.WithCompression(options.None)

	// Volume metadata is tiny compared to dnfs-scale trees; modest caches.
	blockCacheMB := cfg.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 64
	}
	indexCacheMB := cfg.IndexCacheSizeMB
	if indexCacheMB == 0 {
		indexCacheMB = 32
	}
	opts = opts.WithBlockCacheSize(blockCacheMB << 20)
	opts = opts.WithIndexCacheSize(indexCacheMB << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.DBPath, err)
	}

	vol := &Volume{
		db:       db,
		cache:    make(map[volume.ObjectID]*volume.Object),
		payloads: cfg.Payloads,
	}

	if err := vol.initializeRoot(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize root: %w", err)
	}

	return vol, nil
}

// initializeRoot writes the root record and the ID counter on first open.
func (vol *Volume) initializeRoot() error {
	return vol.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(keyObject(uint64(rootID)))
		if err == nil {
			return nil
		}
		if err != badger.ErrKeyNotFound {
			return err
		}

		root := &volume.Object{
			ID:    rootID,
			Kind:  volume.KindDirectory,
			Links: 1,
		}
		recBytes, err := encodeRecord(root)
		if err != nil {
			return err
		}
		if err := txn.Set(keyObject(uint64(rootID)), recBytes); err != nil {
			return err
		}
		return txn.Set(keyNextID, encodeUint64(uint64(rootID)+1))
	})
}

func errClosed() error {
	return &volume.Error{
		Code:    volume.ErrClosed,
		Message: "volume is closed",
	}
}

// ioError wraps a database failure in the volume error taxonomy.
func ioError(err error) error {
	return &volume.Error{
		Code:    volume.ErrIOError,
		Message: err.Error(),
	}
}

// isClosed reports the closed flag under the cache mutex.
func (vol *Volume) isClosed() bool {
	vol.mu.Lock()
	defer vol.mu.Unlock()
	return vol.closed
}

// cachedObject returns the live record instance for an ID, if one exists.
func (vol *Volume) cachedObject(id volume.ObjectID) (*volume.Object, bool) {
	vol.mu.Lock()
	defer vol.mu.Unlock()
	obj, exists := vol.cache[id]
	return obj, exists
}

// internObject caches a freshly decoded record unless another caller beat
// this one to it, and returns the instance every caller must use.
func (vol *Volume) internObject(obj *volume.Object) *volume.Object {
	vol.mu.Lock()
	defer vol.mu.Unlock()

	if existing, exists := vol.cache[obj.ID]; exists {
		return existing
	}
	vol.cache[obj.ID] = obj
	return obj
}

// forgetObject drops a destroyed object from the cache.
func (vol *Volume) forgetObject(id volume.ObjectID) {
	vol.mu.Lock()
	defer vol.mu.Unlock()
	delete(vol.cache, id)
}

// loadObject fetches and decodes a record from the database, bypassing the
// cache. Callers intern the result.
func (vol *Volume) loadObject(id volume.ObjectID) (*volume.Object, error) {
	var obj *volume.Object
	err := vol.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(keyObject(uint64(id)))
		if err == badger.ErrKeyNotFound {
			return &volume.Error{
				Code:    volume.ErrNotFound,
				Message: fmt.Sprintf("object %d not found", id),
			}
		}
		if err != nil {
			return err
		}

		return item.Value(func(val []byte) error {
			decoded, err := decodeRecord(id, val)
			if err != nil {
				return err
			}
			obj = decoded
			return nil
		})
	})
	if err != nil {
		return nil, translateDB(err)
	}
	return obj, nil
}

// flushRecord persists an object's current record fields.
func (vol *Volume) flushRecord(obj *volume.Object) error {
	recBytes, err := encodeRecord(obj)
	if err != nil {
		return ioError(err)
	}

	err = vol.db.Update(func(txn *badger.Txn) error {
		return txn.Set(keyObject(uint64(obj.ID)), recBytes)
	})
	if err != nil {
		return translateDB(err)
	}
	return nil
}

// translateDB passes volume errors through and wraps anything else as I/O.
func translateDB(err error) error {
	if _, ok := err.(*volume.Error); ok {
		return err
	}
	return ioError(err)
}

// Root returns the root container.
func (vol *Volume) Root(ctx context.Context) (*volume.Object, error) {
	return vol.Object(ctx, rootID)
}

// Object resolves an ID to its live record instance.
func (vol *Volume) Object(ctx context.Context, id volume.ObjectID) (*volume.Object, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if vol.isClosed() {
		return nil, errClosed()
	}

	if obj, exists := vol.cachedObject(id); exists {
		return obj, nil
	}

	obj, err := vol.loadObject(id)
	if err != nil {
		return nil, err
	}
	return vol.internObject(obj), nil
}

// Close releases the database. The injected payload store stays open.
func (vol *Volume) Close() error {
	vol.mu.Lock()
	if vol.closed {
		vol.mu.Unlock()
		return nil
	}
	vol.closed = true
	vol.cache = nil
	vol.mu.Unlock()

	if err := vol.db.Close(); err != nil {
		return fmt.Errorf("failed to close BadgerDB: %w", err)
	}
	return nil
}
