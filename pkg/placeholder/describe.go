package placeholder

import (
	"os"

	"github.com/hollowfs/hollowfs/internal/logger"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// blockUnit is the block size the host's block counts are expressed in.
const blockUnit = 512

// DescribeRequest asks for the synthetic attributes of an in-scope object.
type DescribeRequest struct {
	// Object is the resolved file-system object.
	Object *volume.Object

	// Marker is the object's raw reparse marker, passed through from the
	// host untouched.
	Marker []byte
}

// Description is the attribute set the handler synthesizes for a
// placeholder. Placeholders are never locally writable, so the mode always
// carries read+execute permission bits only.
type Description struct {
	// Mode is the object's file mode: ModeDir|0555 for containers, 0555 for
	// leaves.
	Mode os.FileMode

	// Size is the object's data size in bytes. For containers this is the
	// index stream's size, resolved lazily on first describe.
	Size int64

	// Blocks is the allocated size in 512-byte units.
	Blocks int64

	// Links is the reported hard-link count. Forced to 1 for containers so
	// link-count-heuristic traversal tools keep descending.
	Links uint32
}

// DescribeResponse carries the status and, on success, the description.
type DescribeResponse struct {
	Status      Status
	Description *Description
}

// Describe synthesizes size, mode, and link count for an object under this
// handler's management.
//
// Containers report directory mode with no write bits and a link count of 1.
// Their sizes come from the index-allocation stream, queried at most once
// per object instance: the first successful query writes the sizes into the
// object record (a write-once memo), and later calls reuse them. If the
// index stream cannot be opened the current record values are reported and
// the memo stays unset, so the next call retries.
//
// Leaves report regular-file mode; blocks are the data size rounded up to
// the block unit.
func (h *DefaultHandler) Describe(ctx *Context, req *DescribeRequest) (*DescribeResponse, error) {
	if err := ctx.Context.Err(); err != nil {
		return nil, err
	}

	if req == nil || req.Object == nil || !inScope(req.Marker) {
		logger.Debug("DESCRIBE rejected: object or marker out of scope")
		return &DescribeResponse{Status: StatusNotSupported}, nil
	}

	obj := req.Object
	switch obj.Kind {
	case volume.KindDirectory:
		return h.describeContainer(ctx, obj)
	case volume.KindFile:
		return h.describeLeaf(obj), nil
	default:
		logger.Warn("DESCRIBE rejected: object %d has unknown kind %d", obj.ID, obj.Kind)
		return &DescribeResponse{Status: StatusNotSupported}, nil
	}
}

// describeContainer resolves the container's size memo if needed and builds
// its description.
func (h *DefaultHandler) describeContainer(ctx *Context, obj *volume.Object) (*DescribeResponse, error) {
	if !obj.SizeKnown {
		stream, err := ctx.Volume.OpenStream(ctx.Context, obj, volume.IndexStream)
		if err != nil {
			if cancelled(err) {
				return nil, err
			}
			// Degrade to the record's current values; the memo stays unset
			// so a later describe retries the index query.
			logger.Warn("DESCRIBE: index stream open failed for container %d: %v", obj.ID, err)
		} else {
			obj.DataSize = stream.Size()
			obj.AllocatedSize = stream.AllocatedSize()
			obj.SizeKnown = true
			if err := stream.Close(); err != nil {
				logger.Warn("DESCRIBE: index stream close failed for container %d: %v", obj.ID, err)
			}
			logger.Debug("DESCRIBE: container %d index size resolved: size=%d allocated=%d",
				obj.ID, obj.DataSize, obj.AllocatedSize)
		}
	}

	return &DescribeResponse{
		Status: StatusOK,
		Description: &Description{
			Mode:   os.ModeDir | 0o555,
			Size:   obj.DataSize,
			Blocks: obj.AllocatedSize / blockUnit,
			// Forced to 1: traversal utilities use link-count heuristics to
			// decide whether a directory has subdirectories left to visit.
			Links: 1,
		},
	}, nil
}

// describeLeaf builds a leaf description from the record's current data
// size.
func (h *DefaultHandler) describeLeaf(obj *volume.Object) *DescribeResponse {
	return &DescribeResponse{
		Status: StatusOK,
		Description: &Description{
			Mode:   0o555,
			Size:   obj.DataSize,
			Blocks: (obj.DataSize + blockUnit - 1) / blockUnit,
			Links:  obj.Links,
		},
	}
}
