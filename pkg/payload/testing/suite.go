package testing

import (
	"context"
	"testing"

	"github.com/hollowfs/hollowfs/pkg/payload"
)

// StoreTestSuite exercises the payload.Store contract. It tests behavior,
// not implementation details, so every backend (memory, filesystem, S3)
// runs the same suite.
//
// Usage:
//
//	func TestMyStore(t *testing.T) {
//	    suite := &testing.StoreTestSuite{
//	        NewStore: func(t *testing.T) payload.Store {
//	            return mystore.New()
//	        },
//	    }
//	    suite.Run(t)
//	}
type StoreTestSuite struct {
	// NewStore creates a fresh store for each test. It receives the
	// subtest's *testing.T so backends can use t.TempDir and t.Cleanup.
	NewStore func(t *testing.T) payload.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("ReadOperations", suite.RunReadTests)
	t.Run("WriteOperations", suite.RunWriteTests)
}

// testContext returns a standard test context.
func testContext() context.Context {
	return context.Background()
}
