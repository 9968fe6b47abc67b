package placeholder

import (
	"github.com/hollowfs/hollowfs/internal/logger"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

// UnlinkRequest removes a name from an in-scope container.
type UnlinkRequest struct {
	// Dir is the container losing the entry; its marker decides admission.
	Dir    *volume.Object
	Marker []byte

	// Path is the full path context the volume's delete primitive needs for
	// cleanup. Passed through unchanged.
	Path string

	// Object is the object the entry references, when the host has it
	// resolved. May be nil; the volume then resolves the entry itself.
	Object *volume.Object

	// Name is the entry name to remove.
	Name string
}

// UnlinkResponse carries the unlink status.
type UnlinkResponse struct {
	Status Status
}

// Unlink delegates to the volume's delete primitive after validating that
// the target directory is an in-scope container. The path context travels
// through verbatim; no mutation precedes validation.
func (h *DefaultHandler) Unlink(ctx *Context, req *UnlinkRequest) (*UnlinkResponse, error) {
	if err := ctx.Context.Err(); err != nil {
		return nil, err
	}

	if req == nil || req.Dir == nil || !inScope(req.Marker) {
		logger.Debug("UNLINK rejected: directory or marker out of scope")
		return &UnlinkResponse{Status: StatusNotSupported}, nil
	}
	if !req.Dir.IsDir() {
		logger.Debug("UNLINK rejected: parent %d is not a container", req.Dir.ID)
		return &UnlinkResponse{Status: StatusNotSupported}, nil
	}

	if err := ctx.Volume.Unlink(ctx.Context, req.Dir, req.Path, req.Object, req.Name); err != nil {
		if cancelled(err) {
			return nil, err
		}
		logger.Warn("UNLINK: volume unlink of %q in container %d failed: %v",
			req.Name, req.Dir.ID, err)
		return &UnlinkResponse{Status: statusFromError(err)}, nil
	}

	logger.Info("UNLINK: %q removed from container %d", req.Name, req.Dir.ID)
	return &UnlinkResponse{Status: StatusOK}, nil
}
