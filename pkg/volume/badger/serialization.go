package badger

import (
	"bytes"
	"encoding/binary"
	"fmt"

	xdr "github.com/rasky/go-xdr/xdr2"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

// Serialization Strategy
// ======================
//
// Object records have a small fixed shape, so they are stored as XDR rather
// than JSON: compact, deterministic, and decoded with the same codec the
// index stream image uses. Simple integers (entry targets, the ID counter)
// are stored as raw big-endian bytes.
//
// Container records persist without sizes: a container's index size is a
// per-handle memo resolved from the live entry table, never stored state.

// objectRecord is the XDR wire form of one object record.
type objectRecord struct {
	Kind       uint32
	Offline    bool
	Links      uint32
	SecurityID uint32

	// Sizes are meaningful for leaves only; containers store zeros.
	DataSize      int64
	AllocatedSize int64
}

// encodeRecord serializes an object record for storage.
func encodeRecord(obj *volume.Object) ([]byte, error) {
	rec := objectRecord{
		Kind:       uint32(obj.Kind),
		Offline:    obj.Offline,
		Links:      obj.Links,
		SecurityID: obj.SecurityID,
	}
	if obj.Kind == volume.KindFile {
		rec.DataSize = obj.DataSize
		rec.AllocatedSize = obj.AllocatedSize
	}

	var buf bytes.Buffer
	if _, err := xdr.Marshal(&buf, &rec); err != nil {
		return nil, fmt.Errorf("failed to encode object record: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeRecord deserializes an object record. Leaf sizes come back
// authoritative; container sizes start unknown on every load.
func decodeRecord(id volume.ObjectID, data []byte) (*volume.Object, error) {
	var rec objectRecord
	if _, err := xdr.Unmarshal(bytes.NewReader(data), &rec); err != nil {
		return nil, fmt.Errorf("failed to decode object record: %w", err)
	}

	obj := &volume.Object{
		ID:         id,
		Kind:       volume.Kind(rec.Kind),
		Offline:    rec.Offline,
		Links:      rec.Links,
		SecurityID: rec.SecurityID,
	}
	if obj.Kind == volume.KindFile {
		obj.SizeKnown = true
		obj.DataSize = rec.DataSize
		obj.AllocatedSize = rec.AllocatedSize
	}
	return obj, nil
}

// encodeUint64 serializes a uint64 to 8 big-endian bytes.
func encodeUint64(value uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, value)
	return buf
}

// decodeUint64 deserializes a uint64 from 8 big-endian bytes.
func decodeUint64(data []byte) (uint64, error) {
	if len(data) != 8 {
		return 0, fmt.Errorf("invalid uint64 bytes: expected 8 bytes, got %d", len(data))
	}
	return binary.BigEndian.Uint64(data), nil
}
