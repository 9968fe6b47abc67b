package placeholder

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

// readBack fetches a leaf's full data stream through the volume layer.
func readBack(t *testing.T, h *harness, leaf *volume.Object) []byte {
	t.Helper()

	stream, err := h.vol.Volume.OpenStream(h.ctx.Context, leaf, volume.DataStream)
	require.NoError(t, err)
	defer stream.Close()

	data := make([]byte, stream.Size())
	total := 0
	for total < len(data) {
		n, err := stream.ReadAt(h.ctx.Context, data[total:], int64(total))
		require.NoError(t, err)
		require.Positive(t, n)
		total += n
	}
	return data
}

func TestWrite(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)

	t.Run("write at zero", func(t *testing.T) {
		leaf := h.mkfile(h.root(), "a.txt", nil)
		resp, err := h.handler.Write(h.ctx, &WriteRequest{
			Object: leaf, Marker: marker, Buf: []byte("hello"), Offset: 0,
		})
		require.NoError(t, err)
		require.Equal(t, StatusOK, resp.Status)
		assert.Equal(t, 5, resp.Count)
		assert.Equal(t, []byte("hello"), readBack(t, h, leaf))
	})

	t.Run("write extends the stream", func(t *testing.T) {
		leaf := h.mkfile(h.root(), "b.txt", []byte("hello"))
		resp, err := h.handler.Write(h.ctx, &WriteRequest{
			Object: leaf, Marker: marker, Buf: []byte(" world"), Offset: 5,
		})
		require.NoError(t, err)
		require.Equal(t, StatusOK, resp.Status)
		assert.Equal(t, []byte("hello world"), readBack(t, h, leaf))
		assert.Equal(t, int64(11), leaf.DataSize)
	})

	t.Run("write past end zero-fills the gap", func(t *testing.T) {
		leaf := h.mkfile(h.root(), "c.txt", []byte("ab"))
		resp, err := h.handler.Write(h.ctx, &WriteRequest{
			Object: leaf, Marker: marker, Buf: []byte("z"), Offset: 5,
		})
		require.NoError(t, err)
		require.Equal(t, StatusOK, resp.Status)
		assert.Equal(t, []byte{'a', 'b', 0, 0, 0, 'z'}, readBack(t, h, leaf))
	})
}

func TestWriteAccumulatesPartialCounts(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)
	leaf := h.mkfile(h.root(), "big.bin", nil)

	// The backing stream accepts at most 4096 bytes per call: 10000 bytes
	// must complete in exactly three underlying writes.
	h.vol.writeChunk = 4096
	h.vol.writeCalls = 0

	payload := bytes.Repeat([]byte{0x5A}, 10000)
	resp, err := h.handler.Write(h.ctx, &WriteRequest{
		Object: leaf, Marker: marker, Buf: payload, Offset: 0,
	})
	require.NoError(t, err)
	require.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, 10000, resp.Count)
	assert.Equal(t, 3, h.vol.writeCalls)
	assert.Equal(t, payload, readBack(t, h, leaf))
}

func TestWriteZeroCountAborts(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)
	leaf := h.mkfile(h.root(), "stuck.bin", nil)

	h.vol.zeroWrites = true

	resp, err := h.handler.Write(h.ctx, &WriteRequest{
		Object: leaf, Marker: marker, Buf: []byte("data"), Offset: 0,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusIO, resp.Status)
}

func TestWriteRejections(t *testing.T) {
	h := newHarness(t)
	leaf := h.mkfile(h.root(), "notes.txt", nil)
	dir := h.mkdir(h.root(), "synced")

	tests := []struct {
		name string
		req  *WriteRequest
	}{
		{"nil request", nil},
		{"nil object", &WriteRequest{Marker: h.marker(Tag), Buf: []byte("x")}},
		{"nil buffer", &WriteRequest{Object: leaf, Marker: h.marker(Tag)}},
		{"negative offset", &WriteRequest{Object: leaf, Marker: h.marker(Tag), Buf: []byte("x"), Offset: -1}},
		{"foreign marker", &WriteRequest{Object: leaf, Marker: h.marker(0x80000017), Buf: []byte("x")}},
		{"container", &WriteRequest{Object: dir, Marker: h.marker(Tag), Buf: []byte("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.handler.Write(h.ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, StatusInvalid, resp.Status)
		})
	}
}

func TestTruncate(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)

	t.Run("shrink", func(t *testing.T) {
		leaf := h.mkfile(h.root(), "a.txt", []byte("hello world"))
		resp, err := h.handler.Truncate(h.ctx, &TruncateRequest{
			Object: leaf, Marker: marker, Size: 5,
		})
		require.NoError(t, err)
		require.Equal(t, StatusOK, resp.Status)
		assert.Equal(t, []byte("hello"), readBack(t, h, leaf))
		assert.Equal(t, int64(5), leaf.DataSize)
	})

	t.Run("grow zero-fills", func(t *testing.T) {
		leaf := h.mkfile(h.root(), "b.txt", []byte("ab"))
		resp, err := h.handler.Truncate(h.ctx, &TruncateRequest{
			Object: leaf, Marker: marker, Size: 4,
		})
		require.NoError(t, err)
		require.Equal(t, StatusOK, resp.Status)
		assert.Equal(t, []byte{'a', 'b', 0, 0}, readBack(t, h, leaf))
	})

	t.Run("rejections", func(t *testing.T) {
		leaf := h.mkfile(h.root(), "c.txt", nil)
		dir := h.mkdir(h.root(), "dir")

		tests := []struct {
			name string
			req  *TruncateRequest
		}{
			{"nil request", nil},
			{"nil object", &TruncateRequest{Marker: marker}},
			{"negative size", &TruncateRequest{Object: leaf, Marker: marker, Size: -1}},
			{"foreign marker", &TruncateRequest{Object: leaf, Marker: h.marker(0x80000017)}},
			{"container", &TruncateRequest{Object: dir, Marker: marker}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, err := h.handler.Truncate(h.ctx, tt.req)
				require.NoError(t, err)
				assert.Equal(t, StatusInvalid, resp.Status)
			})
		}
	})
}
