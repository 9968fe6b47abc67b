package testing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

// RunMarkerTests executes raw marker storage tests. Markers are opaque to
// the volume; it stores and returns them verbatim.
func (suite *VolumeTestSuite) RunMarkerTests(t *testing.T) {
	t.Run("Absent_IsNilNotError", suite.testMarkerAbsent)
	t.Run("RoundTrip", suite.testMarkerRoundTrip)
	t.Run("Replace", suite.testMarkerReplace)
	t.Run("Detach", suite.testMarkerDetach)
	t.Run("CallerCannotMutateStored", suite.testMarkerCallerCannotMutateStored)
	t.Run("MissingObject", suite.testMarkerMissingObject)
}

func (suite *VolumeTestSuite) testMarkerAbsent(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	obj := mustCreate(t, vol, root, "plain", volume.KindFile)

	blob, err := vol.Marker(testContext(), obj.ID)
	require.NoError(t, err, "A missing marker is not an error")
	assert.Nil(t, blob)
}

func (suite *VolumeTestSuite) testMarkerRoundTrip(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	obj := mustCreate(t, vol, root, "tagged", volume.KindFile)

	raw := []byte{0x1A, 0x00, 0x00, 0x90, 0x1A, 0x00, 0x00, 0x00, 0xFF}
	require.NoError(t, vol.SetMarker(testContext(), obj.ID, raw))

	got, err := vol.Marker(testContext(), obj.ID)
	require.NoError(t, err)
	assert.Equal(t, raw, got, "The volume must return the blob verbatim")
}

func (suite *VolumeTestSuite) testMarkerReplace(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	obj := mustCreate(t, vol, root, "tagged", volume.KindFile)

	require.NoError(t, vol.SetMarker(testContext(), obj.ID, []byte("old marker")))
	require.NoError(t, vol.SetMarker(testContext(), obj.ID, []byte("new")))

	got, err := vol.Marker(testContext(), obj.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), got)
}

func (suite *VolumeTestSuite) testMarkerDetach(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	obj := mustCreate(t, vol, root, "tagged", volume.KindFile)

	require.NoError(t, vol.SetMarker(testContext(), obj.ID, []byte("marker")))
	require.NoError(t, vol.SetMarker(testContext(), obj.ID, nil))

	got, err := vol.Marker(testContext(), obj.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "A detached marker reads as absent")
}

func (suite *VolumeTestSuite) testMarkerCallerCannotMutateStored(t *testing.T) {
	vol := suite.NewVolume(t)
	root := mustRoot(t, vol)

	obj := mustCreate(t, vol, root, "tagged", volume.KindFile)

	raw := []byte("stable marker")
	require.NoError(t, vol.SetMarker(testContext(), obj.ID, raw))

	// Mutating the caller's slice after SetMarker must not reach the store.
	raw[0] = 'X'

	first, err := vol.Marker(testContext(), obj.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("stable marker"), first)

	// Mutating a returned blob must not reach the store either.
	first[0] = 'Y'

	second, err := vol.Marker(testContext(), obj.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("stable marker"), second)
}

func (suite *VolumeTestSuite) testMarkerMissingObject(t *testing.T) {
	vol := suite.NewVolume(t)

	err := vol.SetMarker(testContext(), volume.ObjectID(424242), []byte("marker"))
	AssertCode(t, volume.ErrNotFound, err)

	_, err = vol.Marker(testContext(), volume.ObjectID(424242))
	AssertCode(t, volume.ErrNotFound, err)
}
