package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollowfs/hollowfs/pkg/placeholder"
	"github.com/hollowfs/hollowfs/pkg/reparse"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate a demo tree",
	Long: `Populate the volume with a small demo tree for experimentation:

  /                     marked container
  /cloud                marked container
  /cloud/readme.txt     marked leaf with local data
  /cloud/remote.bin     marked leaf flagged offline (cat fails with "resource remote")
  /cloud/local-only.txt unmarked leaf, outside the handler's scope

Seeding acts in the host role: it creates objects and attaches markers through
the volume directly, then the other commands drive them through the handler.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed()
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed() error {
	w, err := openWorkbench(cmdContext())
	if err != nil {
		return err
	}
	defer w.Close()

	root, err := w.vol.Root(w.ctx)
	if err != nil {
		return fmt.Errorf("resolving root: %w", err)
	}
	if err := w.attachMarker(root.ID); err != nil {
		return err
	}

	cloud, err := w.vol.Create(w.ctx, root, "cloud", volume.KindDirectory, 0)
	if err != nil {
		return fmt.Errorf("creating /cloud: %w", err)
	}
	if err := w.attachMarker(cloud.ID); err != nil {
		return err
	}

	readme, err := w.vol.Create(w.ctx, cloud, "readme.txt", volume.KindFile, 0)
	if err != nil {
		return fmt.Errorf("creating /cloud/readme.txt: %w", err)
	}
	if err := w.attachMarker(readme.ID); err != nil {
		return err
	}
	if err := w.writeLeaf(readme, []byte("Welcome to hollowfs.\nThis leaf is local: cat works.\n")); err != nil {
		return err
	}

	remote, err := w.vol.Create(w.ctx, cloud, "remote.bin", volume.KindFile, 0)
	if err != nil {
		return fmt.Errorf("creating /cloud/remote.bin: %w", err)
	}
	if err := w.attachMarker(remote.ID); err != nil {
		return err
	}
	if err := w.vol.SetOffline(w.ctx, remote.ID, true); err != nil {
		return fmt.Errorf("flagging /cloud/remote.bin offline: %w", err)
	}

	// Deliberately unmarked: every handler operation on it reports
	// "operation not supported".
	local, err := w.vol.Create(w.ctx, cloud, "local-only.txt", volume.KindFile, 0)
	if err != nil {
		return fmt.Errorf("creating /cloud/local-only.txt: %w", err)
	}
	if err := w.writeLeaf(local, []byte("No marker here.\n")); err != nil {
		return err
	}

	fmt.Println("seeded demo tree:")
	fmt.Println("  /cloud                (marked container)")
	fmt.Println("  /cloud/readme.txt     (marked, local data)")
	fmt.Println("  /cloud/remote.bin     (marked, offline)")
	fmt.Println("  /cloud/local-only.txt (unmarked)")
	return nil
}

// attachMarker mints the standard placeholder marker and attaches it.
func (w *workbench) attachMarker(id volume.ObjectID) error {
	marker := &reparse.Marker{
		Tag:      placeholder.Tag,
		VendorID: vendorID,
		Name:     "OneDrive",
	}
	blob, err := marker.Encode()
	if err != nil {
		return fmt.Errorf("encoding marker: %w", err)
	}
	if err := w.vol.SetMarker(w.ctx, id, blob); err != nil {
		return fmt.Errorf("attaching marker to object %d: %w", id, err)
	}
	return nil
}

// writeLeaf fills a leaf's data stream directly through the volume.
func (w *workbench) writeLeaf(leaf *volume.Object, data []byte) error {
	stream, err := w.vol.OpenStream(w.ctx, leaf, volume.DataStream)
	if err != nil {
		return fmt.Errorf("opening data stream for object %d: %w", leaf.ID, err)
	}
	defer stream.Close()

	total := 0
	for total < len(data) {
		n, err := stream.WriteAt(w.ctx, data[total:], int64(total))
		if err != nil {
			return fmt.Errorf("writing data for object %d: %w", leaf.ID, err)
		}
		if n <= 0 {
			return fmt.Errorf("writing data for object %d: stalled at %d bytes", leaf.ID, total)
		}
		total += n
	}
	return nil
}
