package placeholder

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

func TestDescribeContainer(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)

	dir := h.mkdir(h.root(), "synced")
	h.mkfile(dir, "a.txt", []byte("alpha"))
	h.mkfile(dir, "b.txt", []byte("beta"))

	resp, err := h.handler.Describe(h.ctx, &DescribeRequest{Object: dir, Marker: marker})
	require.NoError(t, err)
	require.Equal(t, StatusOK, resp.Status)

	desc := resp.Description
	require.NotNil(t, desc)
	assert.True(t, desc.Mode.IsDir())
	assert.Equal(t, os.FileMode(0o555), desc.Mode.Perm(), "containers must not report write bits")
	assert.Positive(t, desc.Size, "index image of a populated container has bytes")
	assert.Equal(t, int64(volume.IndexBlockSize/blockUnit), desc.Blocks,
		"one index block allocated for a small container")
	assert.Equal(t, uint32(1), desc.Links)
	assert.Equal(t, 1, h.vol.indexOpens)
}

func TestDescribeMemoizesContainerSize(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)

	dir := h.mkdir(h.root(), "synced")
	h.mkfile(dir, "a.txt", []byte("alpha"))

	first, err := h.handler.Describe(h.ctx, &DescribeRequest{Object: dir, Marker: marker})
	require.NoError(t, err)
	require.Equal(t, StatusOK, first.Status)
	require.Equal(t, 1, h.vol.indexOpens)

	second, err := h.handler.Describe(h.ctx, &DescribeRequest{Object: dir, Marker: marker})
	require.NoError(t, err)
	require.Equal(t, StatusOK, second.Status)

	assert.Equal(t, 1, h.vol.indexOpens, "second describe must reuse the memo")
	assert.Equal(t, first.Description.Size, second.Description.Size)
	assert.Equal(t, first.Description.Blocks, second.Description.Blocks)
}

func TestDescribeIndexFailureDoesNotPoisonMemo(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)
	dir := h.mkdir(h.root(), "synced")

	h.vol.failIndexOpen = true
	resp, err := h.handler.Describe(h.ctx, &DescribeRequest{Object: dir, Marker: marker})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status, "describe degrades to record values")
	assert.False(t, dir.SizeKnown, "a failed index query must not set the memo")

	h.vol.failIndexOpen = false
	resp, err = h.handler.Describe(h.ctx, &DescribeRequest{Object: dir, Marker: marker})
	require.NoError(t, err)
	require.Equal(t, StatusOK, resp.Status)
	assert.True(t, dir.SizeKnown, "the next describe retries the index query")
	assert.Equal(t, 2, h.vol.indexOpens)
}

func TestDescribeLeaf(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)

	leaf := h.mkfile(h.root(), "notes.txt", make([]byte, 1000))

	resp, err := h.handler.Describe(h.ctx, &DescribeRequest{Object: leaf, Marker: marker})
	require.NoError(t, err)
	require.Equal(t, StatusOK, resp.Status)

	desc := resp.Description
	assert.False(t, desc.Mode.IsDir())
	assert.Equal(t, os.FileMode(0o555), desc.Mode.Perm())
	assert.Equal(t, int64(1000), desc.Size)
	assert.Equal(t, int64(2), desc.Blocks, "1000 bytes round up to two 512-byte blocks")
	assert.Equal(t, uint32(1), desc.Links)
	assert.Zero(t, h.vol.indexOpens, "leaves never touch the index stream")
}

func TestDescribeForcesContainerLinkCount(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)

	dir := h.mkdir(h.root(), "synced")
	// Whatever the volume believes, traversal tools must see 1.
	dir.Links = 5

	resp, err := h.handler.Describe(h.ctx, &DescribeRequest{Object: dir, Marker: marker})
	require.NoError(t, err)
	require.Equal(t, StatusOK, resp.Status)
	assert.Equal(t, uint32(1), resp.Description.Links)
}

func TestDescribeRejections(t *testing.T) {
	h := newHarness(t)
	leaf := h.mkfile(h.root(), "notes.txt", nil)

	tests := []struct {
		name string
		req  *DescribeRequest
	}{
		{"nil request", nil},
		{"nil object", &DescribeRequest{Marker: h.marker(Tag)}},
		{"nil marker", &DescribeRequest{Object: leaf}},
		{"foreign marker", &DescribeRequest{Object: leaf, Marker: h.marker(0x80000017)}},
		{"unknown kind", &DescribeRequest{Object: &volume.Object{ID: 99}, Marker: h.marker(Tag)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := h.handler.Describe(h.ctx, tt.req)
			require.NoError(t, err)
			assert.Equal(t, StatusNotSupported, resp.Status)
			assert.Nil(t, resp.Description)
		})
	}
}
