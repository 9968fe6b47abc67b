package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/pkg/payload"
)

// RunReadTests executes all ReadAt and Size tests.
func (suite *StoreTestSuite) RunReadTests(t *testing.T) {
	t.Run("ReadAt_Basic", suite.testReadAtBasic)
	t.Run("ReadAt_Offset", suite.testReadAtOffset)
	t.Run("ReadAt_TailPartial", suite.testReadAtTailPartial)
	t.Run("ReadAt_AtEnd", suite.testReadAtAtEnd)
	t.Run("ReadAt_PastEnd", suite.testReadAtPastEnd)
	t.Run("ReadAt_NotFound", suite.testReadAtNotFound)
	t.Run("ReadAt_NegativeOffset", suite.testReadAtNegativeOffset)
	t.Run("Size_Basic", suite.testSizeBasic)
	t.Run("Size_NotFound", suite.testSizeNotFound)
	t.Run("Size_AfterSparseWrite", suite.testSizeAfterSparseWrite)
	t.Run("ContextCancelled", suite.testReadContextCancelled)
}

func (suite *StoreTestSuite) testReadAtBasic(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("read-basic")
	mustWriteContent(t, store, id, []byte("Hello, World!"))

	buf := make([]byte, 5)
	n, err := store.ReadAt(testContext(), id, buf, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("Hello"), buf)
}

func (suite *StoreTestSuite) testReadAtOffset(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("read-offset")
	mustWriteContent(t, store, id, []byte("Hello, World!"))

	buf := make([]byte, 5)
	n, err := store.ReadAt(testContext(), id, buf, 7)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("World"), buf)
}

func (suite *StoreTestSuite) testReadAtTailPartial(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("read-tail")
	mustWriteContent(t, store, id, []byte("Hello, World!"))

	// 13-byte payload, 10-byte buffer at offset 8: only 5 bytes remain.
	buf := make([]byte, 10)
	n, err := store.ReadAt(testContext(), id, buf, 8)
	require.NoError(t, err, "Short read at the tail is a success")
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("orld!"), buf[:n])
}

func (suite *StoreTestSuite) testReadAtAtEnd(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("read-at-end")
	mustWriteContent(t, store, id, []byte("Hello"))

	buf := make([]byte, 5)
	n, err := store.ReadAt(testContext(), id, buf, 5)
	require.NoError(t, err, "Reading at the end is a zero-byte success")
	assert.Equal(t, 0, n)
}

func (suite *StoreTestSuite) testReadAtPastEnd(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("read-past-end")
	mustWriteContent(t, store, id, []byte("Hello"))

	buf := make([]byte, 5)
	n, err := store.ReadAt(testContext(), id, buf, 1000)
	require.NoError(t, err, "Reading past the end is a zero-byte success")
	assert.Equal(t, 0, n)
}

func (suite *StoreTestSuite) testReadAtNotFound(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("read-notfound")

	buf := make([]byte, 5)
	_, err := store.ReadAt(testContext(), id, buf, 0)
	AssertErrorIs(t, payload.ErrNotFound, err)
}

func (suite *StoreTestSuite) testReadAtNegativeOffset(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("read-negative")
	mustWriteContent(t, store, id, []byte("Hello"))

	buf := make([]byte, 5)
	_, err := store.ReadAt(testContext(), id, buf, -1)
	AssertErrorIs(t, payload.ErrInvalidOffset, err)
}

func (suite *StoreTestSuite) testSizeBasic(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("size-basic")
	mustWriteContent(t, store, id, generateTestData(1234))

	assertPayloadSize(t, store, id, 1234)
}

func (suite *StoreTestSuite) testSizeNotFound(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("size-notfound")

	_, err := store.Size(testContext(), id)
	AssertErrorIs(t, payload.ErrNotFound, err)
}

func (suite *StoreTestSuite) testSizeAfterSparseWrite(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("size-sparse")
	mustWriteAt(t, store, id, []byte("Data"), 100)

	assertPayloadSize(t, store, id, 104)
}

func (suite *StoreTestSuite) testReadContextCancelled(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("read-cancelled")
	mustWriteContent(t, store, id, []byte("Hello"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	buf := make([]byte, 5)
	_, err := store.ReadAt(ctx, id, buf, 0)
	assert.Error(t, err, "Cancelled context should abort the read")
}
