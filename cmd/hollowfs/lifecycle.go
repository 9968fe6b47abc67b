package main

import (
	"fmt"
	"path"

	"github.com/spf13/cobra"

	"github.com/hollowfs/hollowfs/pkg/placeholder"
	"github.com/hollowfs/hollowfs/pkg/volume"
)

var createSecurityID uint32

var mkdirCmd = &cobra.Command{
	Use:   "mkdir PATH",
	Short: "Create a container inside a marked container",
	Long: `Create a new container at PATH through the handler. The parent must
be a marked container; the new object starts as an ordinary local object with
no marker of its own.

Example:
  hollowfs mkdir /cloud/photos`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(args[0], volume.KindDirectory)
	},
}

var touchCmd = &cobra.Command{
	Use:   "touch PATH",
	Short: "Create a leaf inside a marked container",
	Long: `Create a new empty leaf at PATH through the handler. The parent must
be a marked container; the new object starts as an ordinary local object with
no marker of its own.

Example:
  hollowfs touch /cloud/notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCreate(args[0], volume.KindFile)
	},
}

var lnCmd = &cobra.Command{
	Use:   "ln TARGET DIR NAME",
	Short: "Add a name for an existing leaf",
	Long: `Link the leaf at TARGET under the marked container DIR as NAME,
bumping the leaf's link count.

Example:
  hollowfs ln /cloud/notes.txt /cloud backup-notes.txt`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLn(args[0], args[1], args[2])
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm PATH",
	Short: "Remove a name from a marked container",
	Long: `Unlink the final component of PATH from its parent, which must be a
marked container. Removing a container requires it to be empty.

Example:
  hollowfs rm /cloud/notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRm(args[0])
	},
}

func init() {
	rootCmd.AddCommand(mkdirCmd)
	rootCmd.AddCommand(touchCmd)
	rootCmd.AddCommand(lnCmd)
	rootCmd.AddCommand(rmCmd)

	mkdirCmd.Flags().Uint32Var(&createSecurityID, "security-id", 0, "security descriptor reference for the new object")
	touchCmd.Flags().Uint32Var(&createSecurityID, "security-id", 0, "security descriptor reference for the new object")
}

func runCreate(target string, kind volume.Kind) error {
	dirPath, name := path.Split(target)
	if name == "" {
		return fmt.Errorf("path %q has no final component", target)
	}

	w, err := openWorkbench(cmdContext())
	if err != nil {
		return err
	}
	defer w.Close()

	dir, _, _, err := w.resolve(path.Clean(dirPath))
	if err != nil {
		return err
	}
	marker, err := w.markerOf(dir)
	if err != nil {
		return err
	}

	resp, err := w.handler.Create(w.handlerCtx(), &placeholder.CreateRequest{
		Dir:        dir,
		Marker:     marker,
		Name:       name,
		Kind:       kind,
		SecurityID: createSecurityID,
	})
	if err != nil {
		return err
	}
	if resp.Status != placeholder.StatusOK {
		return statusErr("create", resp.Status)
	}

	fmt.Printf("created %s %s (object %d)\n", kind, target, resp.Object.ID)
	return nil
}

func runLn(target, dirPath, name string) error {
	w, err := openWorkbench(cmdContext())
	if err != nil {
		return err
	}
	defer w.Close()

	obj, _, _, err := w.resolve(target)
	if err != nil {
		return err
	}
	dir, _, _, err := w.resolve(dirPath)
	if err != nil {
		return err
	}
	marker, err := w.markerOf(dir)
	if err != nil {
		return err
	}

	resp, err := w.handler.Link(w.handlerCtx(), &placeholder.LinkRequest{
		Dir:    dir,
		Marker: marker,
		Object: obj,
		Name:   name,
	})
	if err != nil {
		return err
	}
	if resp.Status != placeholder.StatusOK {
		return statusErr("ln", resp.Status)
	}

	fmt.Printf("linked %s as %s/%s (links now %d)\n", target, dirPath, name, obj.Links)
	return nil
}

func runRm(target string) error {
	w, err := openWorkbench(cmdContext())
	if err != nil {
		return err
	}
	defer w.Close()

	obj, dir, name, err := w.resolve(target)
	if err != nil {
		return err
	}
	if dir == nil {
		return fmt.Errorf("cannot remove the root")
	}
	marker, err := w.markerOf(dir)
	if err != nil {
		return err
	}

	resp, err := w.handler.Unlink(w.handlerCtx(), &placeholder.UnlinkRequest{
		Dir:    dir,
		Marker: marker,
		Path:   target,
		Object: obj,
		Name:   name,
	})
	if err != nil {
		return err
	}
	if resp.Status != placeholder.StatusOK {
		return statusErr("rm", resp.Status)
	}

	fmt.Printf("removed %s\n", target)
	return nil
}
