package placeholder

import (
	"github.com/hollowfs/hollowfs/internal/logger"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// LinkRequest adds a name for an existing object inside an in-scope
// container.
type LinkRequest struct {
	// Dir is the container receiving the new name; its marker decides
	// admission.
	Dir    *volume.Object
	Marker []byte

	// Object is the existing object to link.
	Object *volume.Object

	// Name is the new entry name.
	Name string
}

// LinkResponse carries the link status.
type LinkResponse struct {
	Status Status
}

// Link delegates to the volume's link primitive after validating that the
// target directory is an in-scope container. No mutation is attempted
// before validation passes.
func (h *DefaultHandler) Link(ctx *Context, req *LinkRequest) (*LinkResponse, error) {
	if err := ctx.Context.Err(); err != nil {
		return nil, err
	}

	if req == nil || req.Dir == nil || req.Object == nil || !inScope(req.Marker) {
		logger.Debug("LINK rejected: directory or marker out of scope")
		return &LinkResponse{Status: StatusNotSupported}, nil
	}
	if !req.Dir.IsDir() {
		logger.Debug("LINK rejected: parent %d is not a container", req.Dir.ID)
		return &LinkResponse{Status: StatusNotSupported}, nil
	}

	if err := ctx.Volume.LinkObject(ctx.Context, req.Dir, req.Object, req.Name); err != nil {
		if cancelled(err) {
			return nil, err
		}
		logger.Warn("LINK: volume link of object %d as %q in container %d failed: %v",
			req.Object.ID, req.Name, req.Dir.ID, err)
		return &LinkResponse{Status: statusFromError(err)}, nil
	}

	logger.Info("LINK: object %d linked as %q in container %d",
		req.Object.ID, req.Name, req.Dir.ID)
	return &LinkResponse{Status: StatusOK}, nil
}
