package placeholder

import (
	"fmt"

	"github.com/hollowfs/hollowfs/internal/logger"
	"github.com/hollowfs/hollowfs/pkg/reparse"
)

// Register performs the one-time capability negotiation with the host: the
// host names the tag family it wants managed, and the handler answers with
// its operation table only if that family is its own.
//
// Registration is idempotent and side-effect-free. Nothing is retained from
// the call; the returned handler is stateless and safe to share.
func Register(tag reparse.Tag) (Handler, error) {
	if !selector.Matches(tag) {
		return nil, fmt.Errorf("tag %08x is not served by this handler (selector %s)",
			uint32(tag), selector)
	}

	logger.Debug("REGISTER: tag=%08x selector=%s", uint32(tag), selector)
	return &DefaultHandler{}, nil
}
