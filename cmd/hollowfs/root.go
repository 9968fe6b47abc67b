package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hollowfs/hollowfs/internal/logger"
	"github.com/hollowfs/hollowfs/pkg/config"
	"github.com/hollowfs/hollowfs/pkg/payload"
	"github.com/hollowfs/hollowfs/pkg/placeholder"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

var (
	configPath string
	logLevel   string
)

// vendorID identifies markers minted by this workbench. Drivers only look at
// the tag; the GUID is carried opaquely.
var vendorID = uuid.MustParse("6d15f4f8-3f96-4b3e-9a6a-31d71042a01f")

var rootCmd = &cobra.Command{
	Use:   "hollowfs",
	Short: "Workbench for the cloud-placeholder object handler",
	Long: `hollowfs is a command-line workbench around the cloud-placeholder
reparse handler. It drives every handler operation against a configured
volume the way a filesystem driver would: resolve a path, fetch the object's
raw marker, and pass both to the handler.

Commands:
  inspect     Decode a raw marker blob
  mark        Attach a placeholder marker to an object
  stat        Describe an object through the handler
  ls          Enumerate a marked container
  cat         Read a marked leaf to stdout
  put         Write stdin into a marked leaf
  resize      Truncate a marked leaf
  mkdir       Create a container inside a marked container
  touch       Create a leaf inside a marked container
  ln          Add a name for an existing leaf
  rm          Remove a name from a marked container
  seed        Populate a demo tree`,
	SilenceUsage: true,
}

// Execute runs the root command and exits non-zero on any error, including
// handler statuses other than ok.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file path (default: XDG config dir)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level override (DEBUG, INFO, WARN, ERROR)")
}

// cmdContext is the context commands run under. Interrupts cancel it so
// in-flight volume operations unwind cleanly.
func cmdContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	return ctx
}

// workbench bundles everything a command needs: the configured stores and a
// registered handler. Commands acquire one with openWorkbench and must Close
// it.
type workbench struct {
	ctx      context.Context
	cfg      *config.Config
	payloads payload.Store
	vol      volume.Volume
	handler  placeholder.Handler
}

// openWorkbench loads configuration, builds the payload store and volume via
// the config factories, and registers the handler for the placeholder tag.
func openWorkbench(ctx context.Context) (*workbench, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if logLevel != "" {
		cfg.Logging.Level = strings.ToUpper(logLevel)
	}
	logger.SetLevel(cfg.Logging.Level)

	payloads, err := config.CreatePayloadStore(ctx, &cfg.Payload)
	if err != nil {
		return nil, err
	}

	vol, err := config.CreateVolume(ctx, &cfg.Volume, payloads)
	if err != nil {
		payloads.Close()
		return nil, err
	}

	handler, err := placeholder.Register(placeholder.Tag)
	if err != nil {
		vol.Close()
		payloads.Close()
		return nil, err
	}

	return &workbench{
		ctx:      ctx,
		cfg:      cfg,
		payloads: payloads,
		vol:      vol,
		handler:  handler,
	}, nil
}

// Close releases the volume and payload store, in that order.
func (w *workbench) Close() {
	if err := w.vol.Close(); err != nil {
		logger.Warn("closing volume: %v", err)
	}
	if err := w.payloads.Close(); err != nil {
		logger.Warn("closing payload store: %v", err)
	}
}

// handlerCtx builds the per-call context the handler expects.
func (w *workbench) handlerCtx() *placeholder.Context {
	return &placeholder.Context{Context: w.ctx, Volume: w.vol}
}

// resolve walks an absolute path from the volume root. It returns the object
// along with its parent container and final name component; for the root
// itself the parent is nil.
func (w *workbench) resolve(path string) (obj, parent *volume.Object, name string, err error) {
	if !strings.HasPrefix(path, "/") {
		return nil, nil, "", fmt.Errorf("path must be absolute: %q", path)
	}

	cur, err := w.vol.Root(w.ctx)
	if err != nil {
		return nil, nil, "", fmt.Errorf("resolving root: %w", err)
	}

	for _, part := range strings.Split(path, "/") {
		if part == "" {
			continue
		}
		next, err := w.vol.Lookup(w.ctx, cur, part)
		if err != nil {
			return nil, nil, "", fmt.Errorf("resolving %q: %w", path, err)
		}
		parent, cur, name = cur, next, part
	}

	return cur, parent, name, nil
}

// markerOf fetches an object's raw marker blob. Objects without one yield
// nil, which the handler treats as out of scope.
func (w *workbench) markerOf(obj *volume.Object) ([]byte, error) {
	blob, err := w.vol.Marker(w.ctx, obj.ID)
	if err != nil {
		return nil, fmt.Errorf("fetching marker for object %d: %w", obj.ID, err)
	}
	return blob, nil
}

// statusErr converts a non-ok handler status into a command error carrying
// the status name, so Execute exits 1 the way the host contract demands.
func statusErr(op string, s placeholder.Status) error {
	if s == placeholder.StatusOK {
		return nil
	}
	return fmt.Errorf("%s: %s (%d)", op, s, int32(s))
}
