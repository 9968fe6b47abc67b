package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

// RunObjectTests executes object lifecycle tests: root, create, lookup,
// link, unlink, and instance stability.
func (suite *VolumeTestSuite) RunObjectTests(t *testing.T) {
	t.Run("Root_IsContainer", suite.testRootIsContainer)
	t.Run("Root_StableInstance", suite.testRootStableInstance)
	t.Run("Create_File", suite.testCreateFile)
	t.Run("Create_Directory", suite.testCreateDirectory)
	t.Run("Create_DuplicateName", suite.testCreateDuplicateName)
	t.Run("Create_InLeaf", suite.testCreateInLeaf)
	t.Run("Create_BadKind", suite.testCreateBadKind)
	t.Run("Create_BadNames", suite.testCreateBadNames)
	t.Run("Lookup_Missing", suite.testLookupMissing)
	t.Run("Lookup_InLeaf", suite.testLookupInLeaf)
	t.Run("Object_Missing", suite.testObjectMissing)
	t.Run("Object_StableInstance", suite.testObjectStableInstance)
	t.Run("SetOffline", suite.testSetOffline)
	t.Run("Link_SecondName", suite.testLinkSecondName)
	t.Run("Link_Directory", suite.testLinkDirectory)
	t.Run("Link_NameTaken", suite.testLinkNameTaken)
	t.Run("Unlink_LastLinkDestroys", suite.testUnlinkLastLinkDestroys)
	t.Run("Unlink_KeepsLinkedObject", suite.testUnlinkKeepsLinkedObject)
	t.Run("Unlink_MissingEntry", suite.testUnlinkMissingEntry)
	t.Run("Unlink_NonEmptyDirectory", suite.testUnlinkNonEmptyDirectory)
	t.Run("Unlink_EmptiedDirectory", suite.testUnlinkEmptiedDirectory)
	t.Run("Close_RejectsFurtherUse", suite.testCloseRejectsFurtherUse)
}

func (suite *VolumeTestSuite) testRootIsContainer(t *testing.T) {
	vol := suite.NewVolume(t)

	root := mustRoot(t, vol)
	assert.True(t, root.IsDir(), "Root must be a container")
	assert.Equal(t, uint32(1), root.Links)
}

func (suite *VolumeTestSuite) testRootStableInstance(t *testing.T) {
	vol := suite.NewVolume(t)

	first := mustRoot(t, vol)
	second := mustRoot(t, vol)
	assert.Same(t, first, second, "Root must hand out the same record instance")
}

func (suite *VolumeTestSuite) testCreateFile(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	obj := mustCreate(t, vol, root, "file.bin", volume.KindFile)

	assert.Equal(t, volume.KindFile, obj.Kind)
	assert.Equal(t, uint32(1), obj.Links)
	assert.False(t, obj.Offline, "New objects start materialized")
	assert.True(t, obj.SizeKnown, "Leaf sizes are authoritative from birth")
	assert.Zero(t, obj.DataSize)

	found := mustLookup(t, vol, root, "file.bin")
	assert.Same(t, obj, found, "Lookup must resolve to the same record instance")
}

func (suite *VolumeTestSuite) testCreateDirectory(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	obj := mustCreate(t, vol, root, "sub", volume.KindDirectory)

	assert.Equal(t, volume.KindDirectory, obj.Kind)
	assert.True(t, obj.IsDir())
	assert.False(t, obj.SizeKnown, "Container sizes stay unknown until queried")
}

func (suite *VolumeTestSuite) testCreateDuplicateName(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	mustCreate(t, vol, root, "taken", volume.KindFile)

	_, err := vol.Create(testContext(), root, "taken", volume.KindDirectory, 0)
	AssertCode(t, volume.ErrAlreadyExists, err)
}

func (suite *VolumeTestSuite) testCreateInLeaf(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	leaf := mustCreate(t, vol, root, "leaf", volume.KindFile)

	_, err := vol.Create(testContext(), leaf, "child", volume.KindFile, 0)
	AssertCode(t, volume.ErrNotDirectory, err)
}

func (suite *VolumeTestSuite) testCreateBadKind(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	_, err := vol.Create(testContext(), root, "odd", volume.Kind(99), 0)
	AssertCode(t, volume.ErrInvalidArgument, err)
}

func (suite *VolumeTestSuite) testCreateBadNames(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	for _, name := range []string{"", ".", "..", "a/b", "nul\x00byte"} {
		_, err := vol.Create(testContext(), root, name, volume.KindFile, 0)
		AssertCode(t, volume.ErrInvalidArgument, err)
	}
}

func (suite *VolumeTestSuite) testLookupMissing(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	_, err := vol.Lookup(testContext(), root, "nothing-here")
	AssertCode(t, volume.ErrNotFound, err)
}

func (suite *VolumeTestSuite) testLookupInLeaf(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	leaf := mustCreate(t, vol, root, "leaf", volume.KindFile)

	_, err := vol.Lookup(testContext(), leaf, "anything")
	AssertCode(t, volume.ErrNotDirectory, err)
}

func (suite *VolumeTestSuite) testObjectMissing(t *testing.T) {
	vol := suite.NewVolume(t)

	_, err := vol.Object(testContext(), volume.ObjectID(999999))
	AssertCode(t, volume.ErrNotFound, err)
}

func (suite *VolumeTestSuite) testObjectStableInstance(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	created := mustCreate(t, vol, root, "file.bin", volume.KindFile)

	byID, err := vol.Object(testContext(), created.ID)
	require.NoError(t, err)
	assert.Same(t, created, byID, "Object must hand out the same record instance")

	// A field written on one handle is visible through the other.
	created.SizeKnown = true
	created.DataSize = 42
	assert.Equal(t, int64(42), byID.DataSize)
}

func (suite *VolumeTestSuite) testSetOffline(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	obj := mustCreate(t, vol, root, "remote.bin", volume.KindFile)
	require.False(t, obj.Offline)

	require.NoError(t, vol.SetOffline(testContext(), obj.ID, true))
	assert.True(t, obj.Offline)

	require.NoError(t, vol.SetOffline(testContext(), obj.ID, false))
	assert.False(t, obj.Offline)
}

func (suite *VolumeTestSuite) testLinkSecondName(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	obj := mustCreate(t, vol, root, "first", volume.KindFile)
	require.NoError(t, vol.LinkObject(testContext(), root, obj, "second"))

	assert.Equal(t, uint32(2), obj.Links)

	viaSecond := mustLookup(t, vol, root, "second")
	assert.Same(t, obj, viaSecond, "Both names must resolve to the same record")
}

func (suite *VolumeTestSuite) testLinkDirectory(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	sub := mustCreate(t, vol, root, "sub", volume.KindDirectory)

	err := vol.LinkObject(testContext(), root, sub, "sub2")
	AssertCode(t, volume.ErrIsDirectory, err)
}

func (suite *VolumeTestSuite) testLinkNameTaken(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	obj := mustCreate(t, vol, root, "first", volume.KindFile)
	mustCreate(t, vol, root, "taken", volume.KindFile)

	err := vol.LinkObject(testContext(), root, obj, "taken")
	AssertCode(t, volume.ErrAlreadyExists, err)
}

func (suite *VolumeTestSuite) testUnlinkLastLinkDestroys(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	obj := mustCreate(t, vol, root, "doomed", volume.KindFile)
	id := obj.ID

	require.NoError(t, vol.Unlink(testContext(), root, "/doomed", obj, "doomed"))

	_, err := vol.Object(testContext(), id)
	AssertCode(t, volume.ErrNotFound, err)

	_, err = vol.Lookup(testContext(), root, "doomed")
	AssertCode(t, volume.ErrNotFound, err)
}

func (suite *VolumeTestSuite) testUnlinkKeepsLinkedObject(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	obj := mustCreate(t, vol, root, "first", volume.KindFile)
	require.NoError(t, vol.LinkObject(testContext(), root, obj, "second"))

	require.NoError(t, vol.Unlink(testContext(), root, "/first", obj, "first"))

	assert.Equal(t, uint32(1), obj.Links)

	survivor, err := vol.Object(testContext(), obj.ID)
	require.NoError(t, err, "Object must survive while a link remains")
	assert.Same(t, obj, survivor)

	mustLookup(t, vol, root, "second")
}

func (suite *VolumeTestSuite) testUnlinkMissingEntry(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	err := vol.Unlink(testContext(), root, "/ghost", nil, "ghost")
	AssertCode(t, volume.ErrNotFound, err)
}

func (suite *VolumeTestSuite) testUnlinkNonEmptyDirectory(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	sub := mustCreate(t, vol, root, "sub", volume.KindDirectory)
	mustCreate(t, vol, sub, "child", volume.KindFile)

	err := vol.Unlink(testContext(), root, "/sub", sub, "sub")
	AssertCode(t, volume.ErrNotEmpty, err)
}

func (suite *VolumeTestSuite) testUnlinkEmptiedDirectory(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	sub := mustCreate(t, vol, root, "sub", volume.KindDirectory)
	child := mustCreate(t, vol, sub, "child", volume.KindFile)

	require.NoError(t, vol.Unlink(testContext(), sub, "/sub/child", child, "child"))
	require.NoError(t, vol.Unlink(testContext(), root, "/sub", sub, "sub"))

	_, err := vol.Object(testContext(), sub.ID)
	AssertCode(t, volume.ErrNotFound, err)
}

func (suite *VolumeTestSuite) testCloseRejectsFurtherUse(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	require.NoError(t, vol.Close())

	_, err := vol.Lookup(testContext(), root, "anything")
	assert.Error(t, err, "A closed volume must refuse operations")
}
