package reparse

import (
	"encoding/binary"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildRaw assembles a marker blob by hand so decode tests do not depend on
// Encode being correct.
func buildRaw(tag uint32, dataLength uint16, vendor uuid.UUID, name []uint16) []byte {
	data := make([]byte, 34+2*len(name))
	binary.LittleEndian.PutUint32(data[0:4], tag)
	binary.LittleEndian.PutUint16(data[4:6], dataLength)
	binary.LittleEndian.PutUint32(data[8:12], 0xDEADBEEF)
	copy(data[16:32], vendor[:])
	binary.LittleEndian.PutUint16(data[32:34], uint16(len(name)))
	for i, u := range name {
		binary.LittleEndian.PutUint16(data[34+2*i:34+2*i+2], u)
	}
	return data
}

func utf16Units(s string) []uint16 {
	units := make([]uint16, 0, len(s))
	for _, r := range s {
		units = append(units, uint16(r))
	}
	return units
}

func TestPeekTag(t *testing.T) {
	vendor := uuid.MustParse("d9144b59-4512-43d2-96d1-d50c99f0f9ad")
	raw := buildRaw(0x9000001A, 26, vendor, nil)

	tag, err := PeekTag(raw)
	require.NoError(t, err)
	assert.Equal(t, Tag(0x9000001A), tag)

	// PeekTag only needs the first four bytes.
	tag, err = PeekTag(raw[:4])
	require.NoError(t, err)
	assert.Equal(t, Tag(0x9000001A), tag)

	_, err = PeekTag(raw[:3])
	assert.Error(t, err)
}

func TestDecode(t *testing.T) {
	vendor := uuid.MustParse("d9144b59-4512-43d2-96d1-d50c99f0f9ad")
	name := utf16Units("Documents")

	tests := []struct {
		name    string
		raw     []byte
		wantErr bool
		check   func(t *testing.T, m *Marker)
	}{
		{
			name: "empty name",
			raw:  buildRaw(0x9000001A, 26, vendor, nil),
			check: func(t *testing.T, m *Marker) {
				assert.Equal(t, Tag(0x9000001A), m.Tag)
				assert.Equal(t, uint16(26), m.DataLength)
				assert.Equal(t, vendor, m.VendorID)
				assert.Equal(t, "", m.Name)
			},
		},
		{
			name: "named marker",
			raw:  buildRaw(0xA000001A, uint16(26+2*len(name)), vendor, name),
			check: func(t *testing.T, m *Marker) {
				assert.Equal(t, Tag(0xA000001A), m.Tag)
				assert.Equal(t, "Documents", m.Name)
				assert.Equal(t, uint32(0xDEADBEEF), m.Unused[0])
			},
		},
		{
			name: "declared length larger than minimum is accepted",
			raw:  buildRaw(0x9000001A, 40, vendor, nil),
			check: func(t *testing.T, m *Marker) {
				assert.Equal(t, uint16(40), m.DataLength)
			},
		},
		{
			name:    "truncated header",
			raw:     buildRaw(0x9000001A, 26, vendor, nil)[:20],
			wantErr: true,
		},
		{
			name:    "name extends past blob",
			raw:     buildRaw(0x9000001A, uint16(26+2*len(name)), vendor, name)[:36],
			wantErr: true,
		},
		{
			name:    "declared length too small for name",
			raw:     buildRaw(0x9000001A, 26, vendor, name),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Decode(tt.raw)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, m)
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	m := &Marker{
		Tag:      0x9000001A,
		Unused:   [2]uint32{7, 9},
		VendorID: uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		Name:     "Photos/Camera Roll",
	}

	raw, err := m.Encode()
	require.NoError(t, err)

	decoded, err := Decode(raw)
	require.NoError(t, err)
	assert.Equal(t, m.Tag, decoded.Tag)
	assert.Equal(t, m.Unused, decoded.Unused)
	assert.Equal(t, m.VendorID, decoded.VendorID)
	assert.Equal(t, m.Name, decoded.Name)
	assert.Equal(t, uint16(26+2*len(utf16Units(m.Name))), decoded.DataLength)
}

func TestEncodeRejectsOversizedName(t *testing.T) {
	m := &Marker{Tag: 0x9000001A}
	for len(m.Name) <= MaxNameUnits {
		m.Name += "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
	}
	_, err := m.Encode()
	assert.Error(t, err)
}
