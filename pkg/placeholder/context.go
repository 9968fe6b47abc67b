package placeholder

import (
	"context"

	"github.com/hollowfs/hollowfs/pkg/volume"
)

// Context carries what every handler operation needs beyond its request: the
// cancellation context of the host's call and the volume collaborator the
// call runs against.
//
// All operations share one context type. The handler holds nothing between
// calls, so the host builds a fresh Context per call (or reuses one; the
// handler does not care).
type Context struct {
	// Context carries cancellation and deadlines from the host. Operations
	// abort with its error when it fires; the volume primitives observe it
	// too.
	Context context.Context

	// Volume is the storage collaborator the operation executes against.
	Volume volume.Volume
}
