package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

// emitted captures one delivered directory entry.
type emitted struct {
	Name string
	ID   volume.ObjectID
	Kind volume.Kind
}

// collect walks dir from *pos, accepting up to limit entries (no limit if
// limit <= 0).
func collect(t *testing.T, vol volume.Volume, dir *volume.Object, pos *int64, limit int) []emitted {
	t.Helper()

	var got []emitted
	err := vol.ReadIndex(testContext(), dir, pos, func(name string, id volume.ObjectID, kind volume.Kind) bool {
		if limit > 0 && len(got) >= limit {
			return false
		}
		got = append(got, emitted{Name: name, ID: id, Kind: kind})
		return true
	})
	require.NoError(t, err, "ReadIndex should succeed")
	return got
}

// RunIndexTests executes cursor enumeration tests.
func (suite *VolumeTestSuite) RunIndexTests(t *testing.T) {
	t.Run("Walk_Empty", suite.testWalkEmpty)
	t.Run("Walk_NameOrder", suite.testWalkNameOrder)
	t.Run("Walk_Resume", suite.testWalkResume)
	t.Run("Walk_RefusedEntryNotConsumed", suite.testWalkRefusedEntryNotConsumed)
	t.Run("Walk_PositionPastEnd", suite.testWalkPositionPastEnd)
	t.Run("Walk_NegativePosition", suite.testWalkNegativePosition)
	t.Run("Walk_OnLeaf", suite.testWalkOnLeaf)
}

func (suite *VolumeTestSuite) testWalkEmpty(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	var pos int64
	got := collect(t, vol, root, &pos, 0)

	assert.Empty(t, got)
	assert.Zero(t, pos)
}

func (suite *VolumeTestSuite) testWalkNameOrder(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	// Created out of order; enumeration sorts by name.
	mustCreate(t, vol, root, "cherry", volume.KindFile)
	mustCreate(t, vol, root, "apple", volume.KindDirectory)
	mustCreate(t, vol, root, "banana", volume.KindFile)

	var pos int64
	got := collect(t, vol, root, &pos, 0)

	require.Len(t, got, 3)
	assert.Equal(t, "apple", got[0].Name)
	assert.Equal(t, volume.KindDirectory, got[0].Kind)
	assert.Equal(t, "banana", got[1].Name)
	assert.Equal(t, "cherry", got[2].Name)
	assert.Equal(t, int64(3), pos)
}

func (suite *VolumeTestSuite) testWalkResume(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	for _, name := range []string{"a", "b", "c", "d", "e"} {
		mustCreate(t, vol, root, name, volume.KindFile)
	}

	var pos int64
	first := collect(t, vol, root, &pos, 2)
	require.Len(t, first, 2)
	assert.Equal(t, "a", first[0].Name)
	assert.Equal(t, "b", first[1].Name)
	assert.Equal(t, int64(2), pos)

	second := collect(t, vol, root, &pos, 2)
	require.Len(t, second, 2)
	assert.Equal(t, "c", second[0].Name)
	assert.Equal(t, "d", second[1].Name)
	assert.Equal(t, int64(4), pos)

	rest := collect(t, vol, root, &pos, 0)
	require.Len(t, rest, 1)
	assert.Equal(t, "e", rest[0].Name)
	assert.Equal(t, int64(5), pos)
}

func (suite *VolumeTestSuite) testWalkRefusedEntryNotConsumed(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	mustCreate(t, vol, root, "only", volume.KindFile)

	// Refuse everything: the cursor must not move.
	var pos int64
	err := vol.ReadIndex(testContext(), root, &pos, func(string, volume.ObjectID, volume.Kind) bool {
		return false
	})
	require.NoError(t, err)
	assert.Zero(t, pos, "A refused entry stays at the cursor")

	// The refused entry arrives again on resume.
	got := collect(t, vol, root, &pos, 0)
	require.Len(t, got, 1)
	assert.Equal(t, "only", got[0].Name)
}

func (suite *VolumeTestSuite) testWalkPositionPastEnd(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	mustCreate(t, vol, root, "entry", volume.KindFile)

	pos := int64(50)
	got := collect(t, vol, root, &pos, 0)

	assert.Empty(t, got)
	assert.Equal(t, int64(50), pos)
}

func (suite *VolumeTestSuite) testWalkNegativePosition(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	pos := int64(-1)
	err := vol.ReadIndex(testContext(), root, &pos, func(string, volume.ObjectID, volume.Kind) bool {
		return true
	})
	AssertCode(t, volume.ErrInvalidArgument, err)
}

func (suite *VolumeTestSuite) testWalkOnLeaf(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	leaf := mustCreate(t, vol, root, "leaf", volume.KindFile)

	var pos int64
	err := vol.ReadIndex(testContext(), leaf, &pos, func(string, volume.ObjectID, volume.Kind) bool {
		return true
	})
	AssertCode(t, volume.ErrNotDirectory, err)
}
