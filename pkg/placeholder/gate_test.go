package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/pkg/reparse"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

func TestSelectorMatchesIgnoresUnselectedBits(t *testing.T) {
	for _, flags := range []reparse.Tag{0, 0x80000000, 0x40000000, 0xA0000000, 0xFFFF0000} {
		assert.True(t, selector.Matches(Tag|flags), "flags %08x", uint32(flags))
	}
	for _, tag := range []reparse.Tag{0, Tag ^ 1, Tag ^ 0x8000, 0x80000017} {
		assert.False(t, selector.Matches(tag), "tag %08x", uint32(tag))
	}
}

// TestFlaggedMarkerAcceptedEverywhere drives every gated operation with a
// marker whose tag carries vendor flag bits outside the selector mask. All
// of them must admit it: only the selected bits participate in matching.
func TestFlaggedMarkerAcceptedEverywhere(t *testing.T) {
	h := newHarness(t)
	flagged := h.marker(Tag | 0xA0000000)

	dir := h.mkdir(h.root(), "synced")
	leaf := h.mkfile(dir, "notes.txt", []byte("content"))

	resp, err := h.handler.Describe(h.ctx, &DescribeRequest{Object: dir, Marker: flagged})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status, "describe")

	openResp, err := h.handler.OpenRead(h.ctx, &OpenReadRequest{Object: leaf, Marker: flagged})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, openResp.Status, "open-for-read")

	buf := make([]byte, 7)
	readResp, err := h.handler.Read(h.ctx, &ReadRequest{Object: leaf, Marker: flagged, Buf: buf})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, readResp.Status, "read")
	assert.Equal(t, []byte("content"), buf)

	writeResp, err := h.handler.Write(h.ctx, &WriteRequest{Object: leaf, Marker: flagged, Buf: []byte("CONTENT")})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, writeResp.Status, "write")

	truncResp, err := h.handler.Truncate(h.ctx, &TruncateRequest{Object: leaf, Marker: flagged, Size: 3})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, truncResp.Status, "truncate")

	listResp, err := h.handler.OpenList(h.ctx, &OpenListRequest{Object: dir, Marker: flagged, Access: AccessRead})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, listResp.Status, "open-for-list")

	pos := int64(0)
	enumResp, err := h.handler.Enumerate(h.ctx, &EnumerateRequest{
		Object: dir, Marker: flagged, Pos: &pos,
		Emit: func(string, volume.ObjectID, volume.Kind) bool { return true },
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, enumResp.Status, "enumerate")

	createResp, err := h.handler.Create(h.ctx, &CreateRequest{
		Dir: dir, Marker: flagged, Name: "born.txt", Kind: volume.KindFile,
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, createResp.Status, "create")

	linkResp, err := h.handler.Link(h.ctx, &LinkRequest{
		Dir: dir, Marker: flagged, Object: createResp.Object, Name: "born-alias.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, linkResp.Status, "link")

	unlinkResp, err := h.handler.Unlink(h.ctx, &UnlinkRequest{
		Dir: dir, Marker: flagged, Path: "/synced/born-alias.txt", Name: "born-alias.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, unlinkResp.Status, "unlink")
}

// TestRawTagBytesGateWithoutFullDecode checks that admission needs only the
// leading tag: a marker that is nothing but four tag bytes still gates
// correctly, and a truncated blob is out of scope rather than an error.
func TestRawTagBytesGateWithoutFullDecode(t *testing.T) {
	h := newHarness(t)
	leaf := h.mkfile(h.root(), "notes.txt", []byte("data"))

	bare := []byte{0x1A, 0x00, 0x00, 0x90}
	resp, err := h.handler.OpenRead(h.ctx, &OpenReadRequest{Object: leaf, Marker: bare})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)

	resp, err = h.handler.OpenRead(h.ctx, &OpenReadRequest{Object: leaf, Marker: bare[:3]})
	require.NoError(t, err)
	assert.Equal(t, StatusNotSupported, resp.Status)
}
