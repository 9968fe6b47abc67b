package volume

import (
	"bytes"
	"fmt"

	xdr "github.com/rasky/go-xdr/xdr2"
)

// IndexEntry is one row of a container's serialized index image.
type IndexEntry struct {
	ID   ObjectID
	Kind Kind
	Name string
}

// indexImage is the XDR wire form of a whole index stream: an entry array
// behind a count word. Entries are serialized in name order, so the image is
// deterministic for a given directory state.
type indexImage struct {
	Entries []IndexEntry
}

// EncodeIndex serializes directory entries into the index stream image.
// Entries must already be in name order; backends enumerate sorted.
func EncodeIndex(entries []IndexEntry) ([]byte, error) {
	var buf bytes.Buffer
	image := indexImage{Entries: entries}
	if _, err := xdr.Marshal(&buf, &image); err != nil {
		return nil, fmt.Errorf("encoding index image: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeIndex parses an index stream image back into its entries.
func DecodeIndex(data []byte) ([]IndexEntry, error) {
	var image indexImage
	if _, err := xdr.Unmarshal(bytes.NewReader(data), &image); err != nil {
		return nil, fmt.Errorf("decoding index image: %w", err)
	}
	return image.Entries, nil
}

// IndexAllocated rounds an index image size up to the index block unit.
// Even an empty image occupies one block.
func IndexAllocated(size int64) int64 {
	blocks := (size + IndexBlockSize - 1) / IndexBlockSize
	if blocks == 0 {
		blocks = 1
	}
	return blocks * IndexBlockSize
}
