package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

func TestCreate(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)
	dir := h.mkdir(h.root(), "synced")

	t.Run("file", func(t *testing.T) {
		resp, err := h.handler.Create(h.ctx, &CreateRequest{
			Dir: dir, Marker: marker, Name: "fresh.txt", Kind: volume.KindFile, SecurityID: 42,
		})
		require.NoError(t, err)
		require.Equal(t, StatusOK, resp.Status)
		require.NotNil(t, resp.Object)
		assert.Equal(t, volume.KindFile, resp.Object.Kind)
		assert.Equal(t, uint32(42), resp.Object.SecurityID)

		// The new object carries no placeholder marker: it is an ordinary
		// local object, outside this handler's scope from now on.
		blob, err := h.vol.Marker(h.ctx.Context, resp.Object.ID)
		require.NoError(t, err)
		assert.Nil(t, blob)
	})

	t.Run("directory", func(t *testing.T) {
		resp, err := h.handler.Create(h.ctx, &CreateRequest{
			Dir: dir, Marker: marker, Name: "subdir", Kind: volume.KindDirectory,
		})
		require.NoError(t, err)
		require.Equal(t, StatusOK, resp.Status)
		assert.Equal(t, volume.KindDirectory, resp.Object.Kind)
	})

	t.Run("other kinds rejected without side effects", func(t *testing.T) {
		resp, err := h.handler.Create(h.ctx, &CreateRequest{
			Dir: dir, Marker: marker, Name: "device", Kind: volume.Kind(9),
		})
		require.NoError(t, err)
		assert.Equal(t, StatusNotSupported, resp.Status)
		assert.Nil(t, resp.Object)

		_, err = h.vol.Lookup(h.ctx.Context, dir, "device")
		assert.Error(t, err, "nothing must be created for a rejected kind")
	})

	t.Run("duplicate name", func(t *testing.T) {
		resp, err := h.handler.Create(h.ctx, &CreateRequest{
			Dir: dir, Marker: marker, Name: "fresh.txt", Kind: volume.KindFile,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusExists, resp.Status)
	})

	t.Run("leaf parent rejected", func(t *testing.T) {
		leaf := h.mkfile(h.root(), "plain.txt", nil)
		resp, err := h.handler.Create(h.ctx, &CreateRequest{
			Dir: leaf, Marker: marker, Name: "child", Kind: volume.KindFile,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusNotSupported, resp.Status)
	})

	t.Run("foreign marker rejected", func(t *testing.T) {
		resp, err := h.handler.Create(h.ctx, &CreateRequest{
			Dir: dir, Marker: h.marker(0x80000017), Name: "nope", Kind: volume.KindFile,
		})
		require.NoError(t, err)
		assert.Equal(t, StatusNotSupported, resp.Status)
	})
}

func TestLink(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)
	dir := h.mkdir(h.root(), "synced")
	leaf := h.mkfile(h.root(), "original.txt", []byte("shared"))

	t.Run("adds a name and bumps the link count", func(t *testing.T) {
		resp, err := h.handler.Link(h.ctx, &LinkRequest{
			Dir: dir, Marker: marker, Object: leaf, Name: "alias.txt",
		})
		require.NoError(t, err)
		require.Equal(t, StatusOK, resp.Status)
		assert.Equal(t, uint32(2), leaf.Links)

		found, err := h.vol.Lookup(h.ctx.Context, dir, "alias.txt")
		require.NoError(t, err)
		assert.Equal(t, leaf.ID, found.ID)
	})

	t.Run("containers cannot be linked", func(t *testing.T) {
		sub := h.mkdir(h.root(), "other")
		resp, err := h.handler.Link(h.ctx, &LinkRequest{
			Dir: dir, Marker: marker, Object: sub, Name: "dirlink",
		})
		require.NoError(t, err)
		assert.Equal(t, StatusIsDirectory, resp.Status)
	})

	t.Run("rejections", func(t *testing.T) {
		tests := []struct {
			name string
			req  *LinkRequest
		}{
			{"nil request", nil},
			{"nil object", &LinkRequest{Dir: dir, Marker: marker, Name: "x"}},
			{"leaf parent", &LinkRequest{Dir: leaf, Marker: marker, Object: leaf, Name: "x"}},
			{"foreign marker", &LinkRequest{Dir: dir, Marker: h.marker(0x80000017), Object: leaf, Name: "x"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, err := h.handler.Link(h.ctx, tt.req)
				require.NoError(t, err)
				assert.Equal(t, StatusNotSupported, resp.Status)
			})
		}
	})
}

func TestUnlink(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)
	dir := h.mkdir(h.root(), "synced")

	t.Run("removes the entry", func(t *testing.T) {
		leaf := h.mkfile(dir, "doomed.txt", []byte("bye"))
		resp, err := h.handler.Unlink(h.ctx, &UnlinkRequest{
			Dir: dir, Marker: marker, Path: "/synced/doomed.txt", Object: leaf, Name: "doomed.txt",
		})
		require.NoError(t, err)
		require.Equal(t, StatusOK, resp.Status)

		_, err = h.vol.Lookup(h.ctx.Context, dir, "doomed.txt")
		assert.Error(t, err)
	})

	t.Run("missing entry", func(t *testing.T) {
		resp, err := h.handler.Unlink(h.ctx, &UnlinkRequest{
			Dir: dir, Marker: marker, Path: "/synced/ghost", Name: "ghost",
		})
		require.NoError(t, err)
		assert.Equal(t, StatusNotFound, resp.Status)
	})

	t.Run("non-empty container", func(t *testing.T) {
		sub := h.mkdir(dir, "full")
		h.mkfile(sub, "occupant", nil)

		resp, err := h.handler.Unlink(h.ctx, &UnlinkRequest{
			Dir: dir, Marker: marker, Path: "/synced/full", Object: sub, Name: "full",
		})
		require.NoError(t, err)
		assert.Equal(t, StatusNotEmpty, resp.Status)
	})

	t.Run("rejections", func(t *testing.T) {
		leaf := h.mkfile(dir, "plain.txt", nil)
		tests := []struct {
			name string
			req  *UnlinkRequest
		}{
			{"nil request", nil},
			{"nil directory", &UnlinkRequest{Marker: marker, Name: "x"}},
			{"leaf parent", &UnlinkRequest{Dir: leaf, Marker: marker, Name: "x"}},
			{"foreign marker", &UnlinkRequest{Dir: dir, Marker: h.marker(0x80000017), Name: "x"}},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				resp, err := h.handler.Unlink(h.ctx, tt.req)
				require.NoError(t, err)
				assert.Equal(t, StatusNotSupported, resp.Status)
			})
		}
	})
}
