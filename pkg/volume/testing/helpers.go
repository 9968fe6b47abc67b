package testing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

// AssertCode checks that err is a *volume.Error carrying the expected code.
func AssertCode(t *testing.T, expected volume.ErrorCode, err error) {
	t.Helper()

	var volErr *volume.Error
	if !errors.As(err, &volErr) {
		t.Fatalf("Expected *volume.Error with code %v, got %v", expected, err)
	}
	if volErr.Code != expected {
		t.Errorf("Expected error code %v, got %v (%s)", expected, volErr.Code, volErr.Message)
	}
}

// mustRoot fetches the root container and fails the test if it errors.
func mustRoot(t *testing.T, vol volume.Volume) *volume.Object {
	t.Helper()
	root, err := vol.Root(testContext())
	require.NoError(t, err, "Root should succeed")
	require.NotNil(t, root)
	return root
}

// mustCreate creates an object and fails the test if it errors.
func mustCreate(t *testing.T, vol volume.Volume, dir *volume.Object, name string, kind volume.Kind) *volume.Object {
	t.Helper()
	obj, err := vol.Create(testContext(), dir, name, kind, 0)
	require.NoError(t, err, "Create %s should succeed", name)
	require.NotNil(t, obj)
	return obj
}

// mustLookup resolves a name and fails the test if it errors.
func mustLookup(t *testing.T, vol volume.Volume, dir *volume.Object, name string) *volume.Object {
	t.Helper()
	obj, err := vol.Lookup(testContext(), dir, name)
	require.NoError(t, err, "Lookup %s should succeed", name)
	require.NotNil(t, obj)
	return obj
}

// mustOpen opens a stream and fails the test if it errors.
func mustOpen(t *testing.T, vol volume.Volume, obj *volume.Object, name string) volume.Stream {
	t.Helper()
	stream, err := vol.OpenStream(testContext(), obj, name)
	require.NoError(t, err, "OpenStream %s should succeed", name)
	require.NotNil(t, stream)
	return stream
}

// writeAll pushes the whole buffer through WriteAt, looping over partial
// counts as the contract allows.
func writeAll(t *testing.T, stream volume.Stream, p []byte, off int64) {
	t.Helper()

	for len(p) > 0 {
		n, err := stream.WriteAt(testContext(), p, off)
		require.NoError(t, err, "WriteAt should succeed")
		require.Positive(t, n, "WriteAt should make progress")
		p = p[n:]
		off += int64(n)
	}
}

// readAll fills the buffer through ReadAt, looping over partial counts.
// It fails the test if the stream ends before the buffer fills.
func readAll(t *testing.T, stream volume.Stream, p []byte, off int64) {
	t.Helper()

	for len(p) > 0 {
		n, err := stream.ReadAt(testContext(), p, off)
		require.NoError(t, err, "ReadAt should succeed")
		require.Positive(t, n, "ReadAt should make progress inside the stream")
		p = p[n:]
		off += int64(n)
	}
}
