package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hollowfs/hollowfs/pkg/placeholder"
)

var statCmd = &cobra.Command{
	Use:   "stat PATH",
	Short: "Describe an object through the handler",
	Long: `Resolve PATH, fetch the object's marker, and call the handler's
Describe operation, printing the synthesized attributes.

Example:
  hollowfs stat /cloud/report.docx`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runStat(args[0])
	},
}

func init() {
	rootCmd.AddCommand(statCmd)
}

func runStat(path string) error {
	w, err := openWorkbench(cmdContext())
	if err != nil {
		return err
	}
	defer w.Close()

	obj, _, _, err := w.resolve(path)
	if err != nil {
		return err
	}
	marker, err := w.markerOf(obj)
	if err != nil {
		return err
	}

	resp, err := w.handler.Describe(w.handlerCtx(), &placeholder.DescribeRequest{
		Object: obj,
		Marker: marker,
	})
	if err != nil {
		return err
	}
	if resp.Status != placeholder.StatusOK {
		return statusErr("stat", resp.Status)
	}

	d := resp.Description
	fmt.Printf("object:  %d (%s)\n", obj.ID, obj.Kind)
	fmt.Printf("mode:    %s\n", d.Mode)
	fmt.Printf("size:    %d\n", d.Size)
	fmt.Printf("blocks:  %d\n", d.Blocks)
	fmt.Printf("links:   %d\n", d.Links)
	fmt.Printf("offline: %v\n", obj.Offline)

	return nil
}
