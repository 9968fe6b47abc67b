package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hollowfs/hollowfs/pkg/placeholder"
	"github.com/hollowfs/hollowfs/pkg/reparse"
)

var (
	markTag     string
	markName    string
	markOffline bool
)

var markCmd = &cobra.Command{
	Use:   "mark PATH",
	Short: "Attach a placeholder marker to an object",
	Long: `Build a reparse marker and attach it to the object at PATH, putting it
in the handler's scope. This is the host-side half of placeholder setup: the
handler itself never mints markers.

Examples:
  hollowfs mark /cloud
  hollowfs mark /cloud/report.docx --name "OneDrive" --offline
  hollowfs mark /cloud/flagged.txt --tag 0xA000001A`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runMark(args[0])
	},
}

func init() {
	rootCmd.AddCommand(markCmd)

	markCmd.Flags().StringVar(&markTag, "tag", "", "marker tag (default: the placeholder tag; accepts 0x-prefixed hex)")
	markCmd.Flags().StringVar(&markName, "name", "OneDrive", "service name embedded in the marker")
	markCmd.Flags().BoolVar(&markOffline, "offline", false, "also flag the object as offline (no local data)")
}

func runMark(path string) error {
	tag := placeholder.Tag
	if markTag != "" {
		parsed, err := strconv.ParseUint(markTag, 0, 32)
		if err != nil {
			return fmt.Errorf("parsing tag %q: %w", markTag, err)
		}
		tag = reparse.Tag(parsed)
	}

	w, err := openWorkbench(cmdContext())
	if err != nil {
		return err
	}
	defer w.Close()

	obj, _, _, err := w.resolve(path)
	if err != nil {
		return err
	}

	marker := &reparse.Marker{
		Tag:      tag,
		VendorID: vendorID,
		Name:     markName,
	}
	blob, err := marker.Encode()
	if err != nil {
		return fmt.Errorf("encoding marker: %w", err)
	}

	if err := w.vol.SetMarker(w.ctx, obj.ID, blob); err != nil {
		return fmt.Errorf("attaching marker: %w", err)
	}

	if markOffline {
		if err := w.vol.SetOffline(w.ctx, obj.ID, true); err != nil {
			return fmt.Errorf("flagging offline: %w", err)
		}
	}

	fmt.Printf("marked %s: tag=0x%08x name=%q offline=%v\n", path, uint32(tag), markName, markOffline)
	return nil
}
