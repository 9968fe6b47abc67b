package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollowfs/hollowfs/pkg/placeholder"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

var lsCmd = &cobra.Command{
	Use:   "ls PATH",
	Short: "Enumerate a marked container",
	Long: `Open the container at PATH for read-only listing and enumerate its
entries in name order.

Example:
  hollowfs ls /cloud`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLs(args[0])
	},
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func runLs(path string) error {
	w, err := openWorkbench(cmdContext())
	if err != nil {
		return err
	}
	defer w.Close()

	dir, _, _, err := w.resolve(path)
	if err != nil {
		return err
	}
	marker, err := w.markerOf(dir)
	if err != nil {
		return err
	}

	hctx := w.handlerCtx()

	openResp, err := w.handler.OpenList(hctx, &placeholder.OpenListRequest{
		Object: dir,
		Marker: marker,
		Access: placeholder.AccessRead,
	})
	if err != nil {
		return err
	}
	if openResp.Status != placeholder.StatusOK {
		return statusErr("ls", openResp.Status)
	}

	pos := int64(0)
	enumResp, err := w.handler.Enumerate(hctx, &placeholder.EnumerateRequest{
		Object: dir,
		Marker: marker,
		Pos:    &pos,
		Emit: func(name string, id volume.ObjectID, kind volume.Kind) bool {
			suffix := ""
			if kind == volume.KindDirectory {
				suffix = "/"
			}
			fmt.Printf("%-10d %s%s\n", id, name, suffix)
			return true
		},
	})
	if err != nil {
		return err
	}
	if enumResp.Status != placeholder.StatusOK {
		return statusErr("ls", enumResp.Status)
	}

	if _, err := w.handler.Release(hctx, &placeholder.ReleaseRequest{Object: dir, Marker: marker}); err != nil {
		return err
	}

	return nil
}
