// Package placeholder implements the reparse-point-aware object handler: the
// operation surface a host driver calls for objects carrying a
// cloud-placeholder marker.
//
// Every operation is gated by the same admission rule (the tag selector over
// the object's raw marker), validates its arguments before touching the
// volume, and scopes any attribute stream it opens strictly to the call. The
// handler keeps no session state: read, write, and truncate reopen the data
// stream each call, and Release is a required-but-trivial success.
//
// Results reach the host as Status values on each response: zero for success,
// negative errno-style codes for failure (see status.go). The error return of
// each operation is reserved for context cancellation; protocol-level
// failures never use it.
package placeholder

import (
	"github.com/hollowfs/hollowfs/pkg/reparse"
)

// Tag is the reparse tag family this handler manages: the cloud-placeholder
// tag with no vendor flag bits set.
const Tag reparse.Tag = 0x9000001A

// TagSelect masks the bits of a tag that must match Tag for an object to be
// in scope. The high half carries vendor-specific flags and is ignored.
const TagSelect reparse.Tag = 0x0000FFFF

// selector is the handler's own admission rule, applied at every entry point.
var selector = reparse.Selector{Target: Tag, Mask: TagSelect}

// inScope reports whether a raw marker blob identifies an object this
// handler is responsible for. Only the leading tag is consulted; a nil,
// absent, or truncated marker is simply out of scope, never an error.
func inScope(marker []byte) bool {
	tag, err := reparse.PeekTag(marker)
	if err != nil {
		return false
	}
	return selector.Matches(tag)
}

// Handler is the fixed operation set handed to the host at registration.
//
// One implementing type exists (DefaultHandler); the interface stands in for
// the capability table the host negotiates with Register.
type Handler interface {
	// Describe synthesizes size, mode, and link count for an in-scope object.
	Describe(ctx *Context, req *DescribeRequest) (*DescribeResponse, error)

	// OpenRead checks whether an in-scope leaf can serve local reads.
	OpenRead(ctx *Context, req *OpenReadRequest) (*OpenReadResponse, error)

	// Read transfers bytes from the object's data stream into the caller's
	// buffer, clamped to the stream's current size.
	Read(ctx *Context, req *ReadRequest) (*ReadResponse, error)

	// Write transfers bytes from the caller's buffer into the object's data
	// stream, extending it as needed.
	Write(ctx *Context, req *WriteRequest) (*WriteResponse, error)

	// Truncate resizes the object's data stream.
	Truncate(ctx *Context, req *TruncateRequest) (*TruncateResponse, error)

	// Release ends a logical handle. Always a trivial success.
	Release(ctx *Context, req *ReleaseRequest) (*ReleaseResponse, error)

	// OpenList checks whether an in-scope container can be enumerated with
	// the requested access intent.
	OpenList(ctx *Context, req *OpenListRequest) (*OpenListResponse, error)

	// Enumerate forwards a directory walk to the volume's index reader.
	Enumerate(ctx *Context, req *EnumerateRequest) (*EnumerateResponse, error)

	// Create makes a new ordinary object inside an in-scope container.
	Create(ctx *Context, req *CreateRequest) (*CreateResponse, error)

	// Link adds a name for an existing object inside an in-scope container.
	Link(ctx *Context, req *LinkRequest) (*LinkResponse, error)

	// Unlink removes a name from an in-scope container.
	Unlink(ctx *Context, req *UnlinkRequest) (*UnlinkResponse, error)
}

// DefaultHandler is the stateless implementation of Handler. The zero value
// is ready to use; Register hands one out after tag negotiation.
type DefaultHandler struct{}

var _ Handler = (*DefaultHandler)(nil)
