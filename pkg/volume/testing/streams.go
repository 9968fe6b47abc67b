package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

// RunStreamTests executes attribute stream tests: open rules, data stream
// I/O, size accounting, and the synthetic index stream.
func (suite *VolumeTestSuite) RunStreamTests(t *testing.T) {
	t.Run("Open_DataOnContainer", suite.testOpenDataOnContainer)
	t.Run("Open_IndexOnLeaf", suite.testOpenIndexOnLeaf)
	t.Run("Open_UnknownName", suite.testOpenUnknownName)
	t.Run("Data_FreshLeafIsEmpty", suite.testDataFreshLeafIsEmpty)
	t.Run("Data_WriteRead", suite.testDataWriteRead)
	t.Run("Data_WriteUpdatesRecord", suite.testDataWriteUpdatesRecord)
	t.Run("Data_SparseWrite", suite.testDataSparseWrite)
	t.Run("Data_Resize", suite.testDataResize)
	t.Run("Data_ReadPastEnd", suite.testDataReadPastEnd)
	t.Run("Data_NegativeOffset", suite.testDataNegativeOffset)
	t.Run("Index_EmptyContainer", suite.testIndexEmptyContainer)
	t.Run("Index_ImageDecodes", suite.testIndexImageDecodes)
	t.Run("Index_ReadOnly", suite.testIndexReadOnly)
	t.Run("Index_AllocatedRounding", suite.testIndexAllocatedRounding)
}

func (suite *VolumeTestSuite) testOpenDataOnContainer(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	_, err := vol.OpenStream(testContext(), root, volume.DataStream)
	AssertCode(t, volume.ErrIsDirectory, err)
}

func (suite *VolumeTestSuite) testOpenIndexOnLeaf(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	leaf := mustCreate(t, vol, root, "leaf", volume.KindFile)

	_, err := vol.OpenStream(testContext(), leaf, volume.IndexStream)
	AssertCode(t, volume.ErrNotDirectory, err)
}

func (suite *VolumeTestSuite) testOpenUnknownName(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	leaf := mustCreate(t, vol, root, "leaf", volume.KindFile)

	_, err := vol.OpenStream(testContext(), leaf, "shadow")
	AssertCode(t, volume.ErrNotFound, err)
}

func (suite *VolumeTestSuite) testDataFreshLeafIsEmpty(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	leaf := mustCreate(t, vol, root, "leaf", volume.KindFile)

	stream := mustOpen(t, vol, leaf, volume.DataStream)
	defer stream.Close()

	assert.Zero(t, stream.Size())

	buf := make([]byte, 16)
	n, err := stream.ReadAt(testContext(), buf, 0)
	require.NoError(t, err, "Reading an empty stream is a zero-byte success")
	assert.Zero(t, n)
}

func (suite *VolumeTestSuite) testDataWriteRead(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	leaf := mustCreate(t, vol, root, "leaf", volume.KindFile)

	stream := mustOpen(t, vol, leaf, volume.DataStream)
	defer stream.Close()

	content := []byte("stream content goes here")
	writeAll(t, stream, content, 0)

	assert.Equal(t, int64(len(content)), stream.Size())

	got := make([]byte, len(content))
	readAll(t, stream, got, 0)
	assert.Equal(t, content, got)
}

func (suite *VolumeTestSuite) testDataWriteUpdatesRecord(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	leaf := mustCreate(t, vol, root, "leaf", volume.KindFile)

	stream := mustOpen(t, vol, leaf, volume.DataStream)
	writeAll(t, stream, make([]byte, 100), 0)
	require.NoError(t, stream.Close())

	assert.Equal(t, int64(100), leaf.DataSize, "Writes must keep the record size current")
	assert.Equal(t, int64(512), leaf.AllocatedSize, "Allocated size rounds up to the block unit")
}

func (suite *VolumeTestSuite) testDataSparseWrite(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	leaf := mustCreate(t, vol, root, "leaf", volume.KindFile)

	stream := mustOpen(t, vol, leaf, volume.DataStream)
	defer stream.Close()

	writeAll(t, stream, []byte("tail"), 1000)
	assert.Equal(t, int64(1004), stream.Size())

	// The gap reads as zeros.
	gap := make([]byte, 10)
	readAll(t, stream, gap, 500)
	assert.Equal(t, make([]byte, 10), gap)

	tail := make([]byte, 4)
	readAll(t, stream, tail, 1000)
	assert.Equal(t, []byte("tail"), tail)
}

func (suite *VolumeTestSuite) testDataResize(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	leaf := mustCreate(t, vol, root, "leaf", volume.KindFile)

	stream := mustOpen(t, vol, leaf, volume.DataStream)
	defer stream.Close()

	writeAll(t, stream, []byte("Hello, World!"), 0)

	// Shrink.
	require.NoError(t, stream.Resize(testContext(), 5))
	assert.Equal(t, int64(5), stream.Size())
	assert.Equal(t, int64(5), leaf.DataSize)

	kept := make([]byte, 5)
	readAll(t, stream, kept, 0)
	assert.Equal(t, []byte("Hello"), kept)

	// Grow; the extension reads as zeros.
	require.NoError(t, stream.Resize(testContext(), 8))
	assert.Equal(t, int64(8), stream.Size())

	grown := make([]byte, 8)
	readAll(t, stream, grown, 0)
	assert.Equal(t, []byte("Hello\x00\x00\x00"), grown)
}

func (suite *VolumeTestSuite) testDataReadPastEnd(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	leaf := mustCreate(t, vol, root, "leaf", volume.KindFile)

	stream := mustOpen(t, vol, leaf, volume.DataStream)
	defer stream.Close()

	writeAll(t, stream, []byte("Hello"), 0)

	buf := make([]byte, 8)
	n, err := stream.ReadAt(testContext(), buf, 100)
	require.NoError(t, err, "Reading past the end is a zero-byte success")
	assert.Zero(t, n)
}

func (suite *VolumeTestSuite) testDataNegativeOffset(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	leaf := mustCreate(t, vol, root, "leaf", volume.KindFile)

	stream := mustOpen(t, vol, leaf, volume.DataStream)
	defer stream.Close()

	buf := make([]byte, 4)
	_, err := stream.ReadAt(testContext(), buf, -1)
	AssertCode(t, volume.ErrInvalidArgument, err)

	_, err = stream.WriteAt(testContext(), buf, -1)
	AssertCode(t, volume.ErrInvalidArgument, err)

	err = stream.Resize(testContext(), -1)
	AssertCode(t, volume.ErrInvalidArgument, err)
}

func (suite *VolumeTestSuite) testIndexEmptyContainer(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	sub := mustCreate(t, vol, root, "sub", volume.KindDirectory)

	stream := mustOpen(t, vol, sub, volume.IndexStream)
	defer stream.Close()

	image := make([]byte, stream.Size())
	readAll(t, stream, image, 0)

	entries, err := volume.DecodeIndex(image)
	require.NoError(t, err)
	assert.Empty(t, entries)

	assert.Equal(t, int64(volume.IndexBlockSize), stream.AllocatedSize(),
		"Even an empty index occupies one block")
}

func (suite *VolumeTestSuite) testIndexImageDecodes(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	sub := mustCreate(t, vol, root, "sub", volume.KindDirectory)
	beta := mustCreate(t, vol, sub, "beta", volume.KindFile)
	alpha := mustCreate(t, vol, sub, "alpha", volume.KindDirectory)

	stream := mustOpen(t, vol, sub, volume.IndexStream)
	defer stream.Close()

	image := make([]byte, stream.Size())
	readAll(t, stream, image, 0)

	entries, err := volume.DecodeIndex(image)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Name order.
	assert.Equal(t, "alpha", entries[0].Name)
	assert.Equal(t, alpha.ID, entries[0].ID)
	assert.Equal(t, volume.KindDirectory, entries[0].Kind)

	assert.Equal(t, "beta", entries[1].Name)
	assert.Equal(t, beta.ID, entries[1].ID)
	assert.Equal(t, volume.KindFile, entries[1].Kind)
}

func (suite *VolumeTestSuite) testIndexReadOnly(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	stream := mustOpen(t, vol, root, volume.IndexStream)
	defer stream.Close()

	_, err := stream.WriteAt(testContext(), []byte("x"), 0)
	AssertCode(t, volume.ErrNotSupported, err)

	err = stream.Resize(testContext(), 0)
	AssertCode(t, volume.ErrNotSupported, err)
}

func (suite *VolumeTestSuite) testIndexAllocatedRounding(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	sub := mustCreate(t, vol, root, "sub", volume.KindDirectory)
	for _, name := range []string{"one", "two", "three"} {
		mustCreate(t, vol, sub, name, volume.KindFile)
	}

	stream := mustOpen(t, vol, sub, volume.IndexStream)
	defer stream.Close()

	size := stream.Size()
	require.Positive(t, size)
	assert.Equal(t, volume.IndexAllocated(size), stream.AllocatedSize())
	assert.Zero(t, stream.AllocatedSize()%volume.IndexBlockSize)
}
