package badger

import "encoding/binary"

// Database Key Namespace Design
// ==============================
//
// BadgerDB is a key-value store, so prefixed keys organize the volume's data
// types into namespaces. Object IDs are encoded as 8-byte big-endian values
// inside keys: fixed width keeps parsing unambiguous (entry names may contain
// any byte except '/' and NUL) and big-endian makes IDs sort numerically in
// Badger's lexicographic key order.
//
// Data Type        Prefix   Key Format             Value
// =====================================================================
// Object record    "o:"     o:<id8>                objectRecord (XDR)
// Directory entry  "e:"     e:<dirID8>:<name>      child ID (8-byte BE)
// Reparse marker   "m:"     m:<id8>                raw blob (verbatim)
// Next object ID   "sys:"   sys:nextid             uint64 (8-byte BE)
//
// Directory listing is a range scan over "e:<dirID8>:". Entry names sort in
// byte order under the fixed-width prefix, which is the same order the
// in-memory backend produces with a string sort, so both backends enumerate
// identically.

const (
	// prefixObject is the key prefix for object records
	prefixObject = "o:"

	// prefixEntry is the key prefix for directory entries
	prefixEntry = "e:"

	// prefixMarker is the key prefix for raw reparse markers
	prefixMarker = "m:"
)

// keyNextID is the singleton allocation counter key.
var keyNextID = []byte("sys:nextid")

// id8 encodes an object ID as 8 big-endian bytes.
func id8(id uint64) []byte {
	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, id)
	return buf
}

// keyObject generates the key for an object record.
func keyObject(id uint64) []byte {
	key := make([]byte, 0, len(prefixObject)+8)
	key = append(key, prefixObject...)
	return append(key, id8(id)...)
}

// keyMarker generates the key for an object's marker blob.
func keyMarker(id uint64) []byte {
	key := make([]byte, 0, len(prefixMarker)+8)
	key = append(key, prefixMarker...)
	return append(key, id8(id)...)
}

// keyEntry generates the key for one directory entry.
func keyEntry(dirID uint64, name string) []byte {
	key := make([]byte, 0, len(prefixEntry)+8+1+len(name))
	key = append(key, prefixEntry...)
	key = append(key, id8(dirID)...)
	key = append(key, ':')
	return append(key, name...)
}

// keyEntryPrefix generates the range-scan prefix for a directory's entries.
func keyEntryPrefix(dirID uint64) []byte {
	key := make([]byte, 0, len(prefixEntry)+8+1)
	key = append(key, prefixEntry...)
	key = append(key, id8(dirID)...)
	return append(key, ':')
}
