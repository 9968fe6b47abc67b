package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/pkg/payload"
)

// RunWriteTests executes all WriteContent, WriteAt, Truncate and Delete tests.
func (suite *StoreTestSuite) RunWriteTests(t *testing.T) {
	t.Run("WriteContent_Basic", suite.testWriteContentBasic)
	t.Run("WriteContent_Overwrite", suite.testWriteContentOverwrite)
	t.Run("WriteAt_Basic", suite.testWriteAtBasic)
	t.Run("WriteAt_CreateNew", suite.testWriteAtCreateNew)
	t.Run("WriteAt_Sparse", suite.testWriteAtSparse)
	t.Run("WriteAt_Overlap", suite.testWriteAtOverlap)
	t.Run("WriteAt_NegativeOffset", suite.testWriteAtNegativeOffset)
	t.Run("Truncate_Shrink", suite.testTruncateShrink)
	t.Run("Truncate_Grow", suite.testTruncateGrow)
	t.Run("Truncate_SameSize", suite.testTruncateSameSize)
	t.Run("Truncate_NotFound", suite.testTruncateNotFound)
	t.Run("Truncate_NegativeSize", suite.testTruncateNegativeSize)
	t.Run("Delete_Success", suite.testDeleteSuccess)
	t.Run("Delete_Idempotent", suite.testDeleteIdempotent)
}

// ============================================================================
// WriteContent Tests
// ============================================================================

func (suite *StoreTestSuite) testWriteContentBasic(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("write-basic")
	testData := []byte("Hello, World!")

	mustWriteContent(t, store, id, testData)

	assertPayloadEquals(t, store, id, testData)
	assertPayloadSize(t, store, id, int64(len(testData)))
}

func (suite *StoreTestSuite) testWriteContentOverwrite(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("write-overwrite")
	oldData := []byte("Old data that is longer than the replacement")
	newData := []byte("New data")

	mustWriteContent(t, store, id, oldData)
	assertPayloadEquals(t, store, id, oldData)

	// The replacement fully supersedes the old bytes, including the tail.
	mustWriteContent(t, store, id, newData)
	assertPayloadEquals(t, store, id, newData)
	assertPayloadSize(t, store, id, int64(len(newData)))
}

// ============================================================================
// WriteAt Tests
// ============================================================================

func (suite *StoreTestSuite) testWriteAtBasic(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("writeat-basic")

	mustWriteAt(t, store, id, []byte("Hello"), 0)
	assertPayloadEquals(t, store, id, []byte("Hello"))

	mustWriteAt(t, store, id, []byte(", World"), 5)
	assertPayloadEquals(t, store, id, []byte("Hello, World"))
}

func (suite *StoreTestSuite) testWriteAtCreateNew(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("writeat-create")
	testData := []byte("Created via WriteAt")

	mustWriteAt(t, store, id, testData, 0)
	assertPayloadEquals(t, store, id, testData)
}

func (suite *StoreTestSuite) testWriteAtSparse(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("writeat-sparse")

	// Write at offset 100 on an absent payload: 0-99 must read as zeros.
	testData := []byte("Data")
	mustWriteAt(t, store, id, testData, 100)

	assertPayloadSize(t, store, id, 104)

	data := mustReadAll(t, store, id)
	require.Len(t, data, 104)
	for i := 0; i < 100; i++ {
		assert.Equal(t, byte(0), data[i], "Expected zero at position %d", i)
	}
	assert.Equal(t, testData, data[100:104])
}

func (suite *StoreTestSuite) testWriteAtOverlap(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("writeat-overlap")

	mustWriteContent(t, store, id, []byte("Hello, World!"))
	mustWriteAt(t, store, id, []byte("there"), 7)

	assertPayloadEquals(t, store, id, []byte("Hello, there!"))
	assertPayloadSize(t, store, id, 13)
}

func (suite *StoreTestSuite) testWriteAtNegativeOffset(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("writeat-negative")

	_, err := store.WriteAt(testContext(), id, []byte("data"), -1)
	AssertErrorIs(t, payload.ErrInvalidOffset, err)
}

// ============================================================================
// Truncate Tests
// ============================================================================

func (suite *StoreTestSuite) testTruncateShrink(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("truncate-shrink")
	mustWriteContent(t, store, id, []byte("Hello, World!"))

	mustTruncate(t, store, id, 5)

	assertPayloadSize(t, store, id, 5)
	assertPayloadEquals(t, store, id, []byte("Hello"))
}

func (suite *StoreTestSuite) testTruncateGrow(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("truncate-grow")
	mustWriteContent(t, store, id, []byte("Hello"))

	mustTruncate(t, store, id, 10)

	assertPayloadSize(t, store, id, 10)
	data := mustReadAll(t, store, id)
	assert.Equal(t, []byte("Hello"), data[0:5])
	assert.Equal(t, []byte{0, 0, 0, 0, 0}, data[5:10])
}

func (suite *StoreTestSuite) testTruncateSameSize(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("truncate-same")
	testData := []byte("Hello")
	mustWriteContent(t, store, id, testData)

	mustTruncate(t, store, id, int64(len(testData)))

	assertPayloadEquals(t, store, id, testData)
}

func (suite *StoreTestSuite) testTruncateNotFound(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("truncate-notfound")

	err := store.Truncate(testContext(), id, 100)
	AssertErrorIs(t, payload.ErrNotFound, err)
}

func (suite *StoreTestSuite) testTruncateNegativeSize(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("truncate-negative")
	mustWriteContent(t, store, id, []byte("Hello"))

	err := store.Truncate(testContext(), id, -1)
	AssertErrorIs(t, payload.ErrInvalidSize, err)
}

// ============================================================================
// Delete Tests
// ============================================================================

func (suite *StoreTestSuite) testDeleteSuccess(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("delete-success")
	mustWriteContent(t, store, id, []byte("To be deleted"))

	mustDelete(t, store, id)

	_, err := store.Size(testContext(), id)
	AssertErrorIs(t, payload.ErrNotFound, err)
}

func (suite *StoreTestSuite) testDeleteIdempotent(t *testing.T) {
	store := suite.NewStore(t)

	id := generateTestID("delete-idempotent")

	err := store.Delete(testContext(), id)
	require.NoError(t, err)

	err = store.Delete(testContext(), id)
	require.NoError(t, err)
}
