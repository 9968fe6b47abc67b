package testing

import (
	"context"
	"testing"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

// VolumeTestSuite exercises the volume.Volume contract: object lifecycle,
// marker storage, attribute streams, and index enumeration. Both backends
// (memory, badger) run the same suite.
//
// Usage:
//
//	func TestMyVolume(t *testing.T) {
//	    suite := &testing.VolumeTestSuite{
//	        NewVolume: func(t *testing.T) volume.Volume {
//	            return myvolume.New(...)
//	        },
//	    }
//	    suite.Run(t)
//	}
type VolumeTestSuite struct {
	// NewVolume creates a fresh volume for each test. It receives the
	// subtest's *testing.T so backends can use t.TempDir and t.Cleanup.
	NewVolume func(t *testing.T) volume.Volume
}

// Run executes all tests in the suite.
func (suite *VolumeTestSuite) Run(t *testing.T) {
	t.Run("Objects", suite.RunObjectTests)
	t.Run("Markers", suite.RunMarkerTests)
	t.Run("Streams", suite.RunStreamTests)
	t.Run("Index", suite.RunIndexTests)
}

// testContext returns a standard test context.
func testContext() context.Context {
	return context.Background()
}
