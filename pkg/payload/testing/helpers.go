package testing

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/pkg/payload"
)

// AssertErrorIs checks if the error matches the expected error using errors.Is.
func AssertErrorIs(t *testing.T, expected error, actual error) {
	t.Helper()
	if !errors.Is(actual, expected) {
		t.Errorf("Expected error %v, got %v", expected, actual)
	}
}

// mustWriteContent writes a whole payload and fails the test if it errors.
func mustWriteContent(t *testing.T, store payload.Store, id payload.ID, data []byte) {
	t.Helper()
	err := store.WriteContent(testContext(), id, data)
	require.NoError(t, err, "WriteContent should succeed")
}

// mustWriteAt writes data at offset and fails the test if it errors.
func mustWriteAt(t *testing.T, store payload.Store, id payload.ID, data []byte, offset int64) {
	t.Helper()
	n, err := store.WriteAt(testContext(), id, data, offset)
	require.NoError(t, err, "WriteAt should succeed")
	require.Equal(t, len(data), n, "WriteAt should report the full count")
}

// mustSize gets the payload size and fails the test if it errors.
func mustSize(t *testing.T, store payload.Store, id payload.ID) int64 {
	t.Helper()
	size, err := store.Size(testContext(), id)
	require.NoError(t, err, "Size should succeed")
	return size
}

// mustReadAll reads the whole payload through ReadAt. The contract allows
// short counts, so it loops until the buffer fills or progress stops.
func mustReadAll(t *testing.T, store payload.Store, id payload.ID) []byte {
	t.Helper()

	size := mustSize(t, store, id)
	buf := make([]byte, size)

	var off int64
	for off < size {
		n, err := store.ReadAt(testContext(), id, buf[off:], off)
		require.NoError(t, err, "ReadAt should succeed")
		require.Positive(t, n, "ReadAt should make progress below the payload size")
		off += int64(n)
	}
	return buf
}

// mustTruncate truncates the payload and fails the test if it errors.
func mustTruncate(t *testing.T, store payload.Store, id payload.ID, size int64) {
	t.Helper()
	err := store.Truncate(testContext(), id, size)
	require.NoError(t, err, "Truncate should succeed")
}

// mustDelete deletes the payload and fails the test if it errors.
func mustDelete(t *testing.T, store payload.Store, id payload.ID) {
	t.Helper()
	err := store.Delete(testContext(), id)
	require.NoError(t, err, "Delete should succeed")
}

// assertPayloadEquals checks if the payload matches the expected bytes.
func assertPayloadEquals(t *testing.T, store payload.Store, id payload.ID, expected []byte) {
	t.Helper()
	actual := mustReadAll(t, store, id)
	assert.Equal(t, expected, actual, "Payload data mismatch")
}

// assertPayloadSize checks if the payload size matches expected.
func assertPayloadSize(t *testing.T, store payload.Store, id payload.ID, expected int64) {
	t.Helper()
	actual := mustSize(t, store, id)
	assert.Equal(t, expected, actual, "Payload size mismatch")
}

// generateTestData creates test data of the given size.
func generateTestData(size int) []byte {
	data := make([]byte, size)
	for i := 0; i < size; i++ {
		data[i] = byte(i % 256)
	}
	return data
}

// generateTestID generates a unique test payload ID.
func generateTestID(name string) payload.ID {
	return payload.ID("test-" + name)
}
