package placeholder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenRead(t *testing.T) {
	h := newHarness(t)
	marker := h.marker(Tag)

	local := h.mkfile(h.root(), "local.txt", []byte("here"))
	offline := h.mkfile(h.root(), "remote.txt", nil)
	offline.Offline = true
	dir := h.mkdir(h.root(), "synced")

	t.Run("local leaf opens", func(t *testing.T) {
		resp, err := h.handler.OpenRead(h.ctx, &OpenReadRequest{Object: local, Marker: marker})
		require.NoError(t, err)
		assert.Equal(t, StatusOK, resp.Status)
	})

	t.Run("offline leaf is remote only", func(t *testing.T) {
		resp, err := h.handler.OpenRead(h.ctx, &OpenReadRequest{Object: offline, Marker: marker})
		require.NoError(t, err)
		assert.Equal(t, StatusRemote, resp.Status,
			"offline must be distinguishable from out-of-scope")
	})

	t.Run("container rejected", func(t *testing.T) {
		resp, err := h.handler.OpenRead(h.ctx, &OpenReadRequest{Object: dir, Marker: marker})
		require.NoError(t, err)
		assert.Equal(t, StatusNotSupported, resp.Status)
	})

	t.Run("foreign marker rejected even when offline", func(t *testing.T) {
		resp, err := h.handler.OpenRead(h.ctx, &OpenReadRequest{
			Object: offline,
			Marker: h.marker(0x80000017),
		})
		require.NoError(t, err)
		assert.Equal(t, StatusNotSupported, resp.Status)
	})

	t.Run("absent marker rejected", func(t *testing.T) {
		resp, err := h.handler.OpenRead(h.ctx, &OpenReadRequest{Object: local})
		require.NoError(t, err)
		assert.Equal(t, StatusNotSupported, resp.Status)
	})
}

func TestReleaseAlwaysSucceeds(t *testing.T) {
	h := newHarness(t)

	// There is no opened-state data, so release succeeds regardless of the
	// arguments, matching the OPENED -> ... -> RELEASED state machine.
	resp, err := h.handler.Release(h.ctx, &ReleaseRequest{})
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)

	resp, err = h.handler.Release(h.ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, resp.Status)
}
