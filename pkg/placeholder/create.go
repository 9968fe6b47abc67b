package placeholder

import (
	"github.com/hollowfs/hollowfs/internal/logger"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// CreateRequest makes a new object inside an in-scope container.
type CreateRequest struct {
	// Dir is the parent container. Its marker, not the new object's,
	// decides admission.
	Dir    *volume.Object
	Marker []byte

	// Name is the entry name for the new object.
	Name string

	// Kind must be exactly KindFile or KindDirectory; nothing else is
	// creatable through this handler.
	Kind volume.Kind

	// SecurityID is the opaque security descriptor reference to stamp on
	// the new object.
	SecurityID uint32
}

// CreateResponse carries the status and, on success, the new object.
type CreateResponse struct {
	Status Status
	Object *volume.Object
}

// Create delegates object construction to the volume.
//
// The new object is deliberately not given a placeholder marker: from this
// point on it is an ordinary, fully-local object outside this handler's
// scope. Keeping it in sync with any external system is someone else's
// concern.
func (h *DefaultHandler) Create(ctx *Context, req *CreateRequest) (*CreateResponse, error) {
	if err := ctx.Context.Err(); err != nil {
		return nil, err
	}

	if req == nil || req.Dir == nil || !inScope(req.Marker) {
		logger.Debug("CREATE rejected: directory or marker out of scope")
		return &CreateResponse{Status: StatusNotSupported}, nil
	}
	if !req.Dir.IsDir() {
		logger.Debug("CREATE rejected: parent %d is not a container", req.Dir.ID)
		return &CreateResponse{Status: StatusNotSupported}, nil
	}
	if req.Kind != volume.KindFile && req.Kind != volume.KindDirectory {
		logger.Warn("CREATE rejected: kind %d is not creatable here", req.Kind)
		return &CreateResponse{Status: StatusNotSupported}, nil
	}

	obj, err := ctx.Volume.Create(ctx.Context, req.Dir, req.Name, req.Kind, req.SecurityID)
	if err != nil {
		if cancelled(err) {
			return nil, err
		}
		logger.Warn("CREATE: volume create of %q in container %d failed: %v",
			req.Name, req.Dir.ID, err)
		return &CreateResponse{Status: statusFromError(err)}, nil
	}

	logger.Info("CREATE: %s %q created as object %d in container %d",
		req.Kind, req.Name, obj.ID, req.Dir.ID)
	return &CreateResponse{Status: StatusOK, Object: obj}, nil
}
