// Package reparse decodes and encodes the cloud-placeholder reparse marker
// attached to volume objects. Markers arrive as untrusted bytes from the
// volume; only the leading tag is ever trusted for admission decisions, so
// PeekTag works on arbitrarily truncated input while Decode validates the
// whole layout.
package reparse

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"github.com/google/uuid"
)

const (
	// headerLen is the byte length of the fixed fields, through NameLen.
	headerLen = 34

	// fixedDataLen is the declared-data length of a marker with an empty
	// name: the two opaque words, the vendor GUID and the name count.
	fixedDataLen = 26

	// MaxNameUnits bounds the embedded name so DataLength fits in 16 bits.
	MaxNameUnits = (0xFFFF - fixedDataLen) / 2
)

// Marker is the decoded form of a placeholder reparse record.
//
// Wire layout (little-endian):
//
//	offset 0   uint32  tag
//	offset 4   uint16  data length (bytes following offset 8)
//	offset 6   uint16  reserved
//	offset 8   [8]byte opaque
//	offset 16  [16]byte vendor GUID
//	offset 32  uint16  name length in UTF-16 units
//	offset 34  ...     name, UTF-16LE, not NUL-terminated
type Marker struct {
	Tag        Tag
	DataLength uint16
	Reserved   uint16
	Unused     [2]uint32
	VendorID   uuid.UUID
	Name       string
}

// PeekTag extracts the tag from a raw marker without validating the rest of
// the record. Admission checks use this so a malformed tail cannot turn an
// out-of-scope object into an error.
func PeekTag(data []byte) (Tag, error) {
	if len(data) < 4 {
		return 0, fmt.Errorf("reparse marker too short for tag: %d bytes", len(data))
	}
	return Tag(binary.LittleEndian.Uint32(data[0:4])), nil
}

// Decode parses and validates a raw marker record.
func Decode(data []byte) (*Marker, error) {
	if len(data) < headerLen {
		return nil, fmt.Errorf("reparse marker too short: %d bytes, need %d", len(data), headerLen)
	}

	m := &Marker{
		Tag:        Tag(binary.LittleEndian.Uint32(data[0:4])),
		DataLength: binary.LittleEndian.Uint16(data[4:6]),
		Reserved:   binary.LittleEndian.Uint16(data[6:8]),
	}
	m.Unused[0] = binary.LittleEndian.Uint32(data[8:12])
	m.Unused[1] = binary.LittleEndian.Uint32(data[12:16])

	vendor, err := uuid.FromBytes(data[16:32])
	if err != nil {
		return nil, fmt.Errorf("decoding vendor id: %w", err)
	}
	m.VendorID = vendor

	nameUnits := int(binary.LittleEndian.Uint16(data[32:34]))
	nameBytes := nameUnits * 2

	// The declared length must cover the fixed tail plus the name, and the
	// name must actually be present in the blob.
	if int(m.DataLength) < fixedDataLen+nameBytes {
		return nil, fmt.Errorf("reparse data length %d inconsistent with name of %d units",
			m.DataLength, nameUnits)
	}
	if len(data) < headerLen+nameBytes {
		return nil, fmt.Errorf("reparse marker truncated: name needs %d bytes, %d available",
			nameBytes, len(data)-headerLen)
	}

	if nameUnits > 0 {
		units := make([]uint16, nameUnits)
		for i := range units {
			units[i] = binary.LittleEndian.Uint16(data[headerLen+2*i : headerLen+2*i+2])
		}
		m.Name = string(utf16.Decode(units))
	}

	return m, nil
}

// Encode serializes the marker, re-deriving DataLength from the name.
func (m *Marker) Encode() ([]byte, error) {
	units := utf16.Encode([]rune(m.Name))
	if len(units) > MaxNameUnits {
		return nil, fmt.Errorf("reparse name too long: %d UTF-16 units, max %d", len(units), MaxNameUnits)
	}

	data := make([]byte, headerLen+2*len(units))
	binary.LittleEndian.PutUint32(data[0:4], uint32(m.Tag))
	binary.LittleEndian.PutUint16(data[4:6], uint16(fixedDataLen+2*len(units)))
	binary.LittleEndian.PutUint16(data[6:8], m.Reserved)
	binary.LittleEndian.PutUint32(data[8:12], m.Unused[0])
	binary.LittleEndian.PutUint32(data[12:16], m.Unused[1])
	copy(data[16:32], m.VendorID[:])
	binary.LittleEndian.PutUint16(data[32:34], uint16(len(units)))
	for i, u := range units {
		binary.LittleEndian.PutUint16(data[headerLen+2*i:headerLen+2*i+2], u)
	}

	return data, nil
}
