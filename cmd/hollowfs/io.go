package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hollowfs/hollowfs/pkg/placeholder"
)

// catChunkSize is the buffer size cat requests per handler read.
const catChunkSize = 64 * 1024

var putOffset int64

var catCmd = &cobra.Command{
	Use:   "cat PATH",
	Short: "Read a marked leaf to stdout",
	Long: `Open the leaf at PATH for local read and stream its data to stdout.
An offline leaf fails with "resource remote": the data lives elsewhere and
this workbench has no recall channel.

Example:
  hollowfs cat /cloud/notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCat(args[0])
	},
}

var putCmd = &cobra.Command{
	Use:   "put PATH",
	Short: "Write stdin into a marked leaf",
	Long: `Read stdin to the end and write it into the leaf at PATH at the
given offset.

Example:
  echo "hello" | hollowfs put /cloud/notes.txt`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPut(args[0])
	},
}

var resizeCmd = &cobra.Command{
	Use:   "resize PATH SIZE",
	Short: "Truncate a marked leaf",
	Long: `Resize the data stream of the leaf at PATH to exactly SIZE bytes,
zero-filling growth and discarding shrinkage.

Example:
  hollowfs resize /cloud/notes.txt 4096`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		size, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return fmt.Errorf("parsing size %q: %w", args[1], err)
		}
		return runResize(args[0], size)
	},
}

func init() {
	rootCmd.AddCommand(catCmd)
	rootCmd.AddCommand(putCmd)
	rootCmd.AddCommand(resizeCmd)

	putCmd.Flags().Int64Var(&putOffset, "offset", 0, "byte offset to write at")
}

func runCat(path string) error {
	w, err := openWorkbench(cmdContext())
	if err != nil {
		return err
	}
	defer w.Close()

	leaf, _, _, err := w.resolve(path)
	if err != nil {
		return err
	}
	marker, err := w.markerOf(leaf)
	if err != nil {
		return err
	}

	hctx := w.handlerCtx()

	openResp, err := w.handler.OpenRead(hctx, &placeholder.OpenReadRequest{Object: leaf, Marker: marker})
	if err != nil {
		return err
	}
	if openResp.Status != placeholder.StatusOK {
		return statusErr("cat", openResp.Status)
	}

	buf := make([]byte, catChunkSize)
	offset := int64(0)
	for {
		resp, err := w.handler.Read(hctx, &placeholder.ReadRequest{
			Object: leaf,
			Marker: marker,
			Buf:    buf,
			Offset: offset,
		})
		if err != nil {
			return err
		}
		if resp.Status != placeholder.StatusOK {
			return statusErr("cat", resp.Status)
		}
		if resp.Count == 0 {
			break
		}
		if _, err := os.Stdout.Write(buf[:resp.Count]); err != nil {
			return fmt.Errorf("writing to stdout: %w", err)
		}
		offset += int64(resp.Count)
	}

	if _, err := w.handler.Release(hctx, &placeholder.ReleaseRequest{Object: leaf, Marker: marker}); err != nil {
		return err
	}

	return nil
}

func runPut(path string) error {
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	w, err := openWorkbench(cmdContext())
	if err != nil {
		return err
	}
	defer w.Close()

	leaf, _, _, err := w.resolve(path)
	if err != nil {
		return err
	}
	marker, err := w.markerOf(leaf)
	if err != nil {
		return err
	}

	resp, err := w.handler.Write(w.handlerCtx(), &placeholder.WriteRequest{
		Object: leaf,
		Marker: marker,
		Buf:    data,
		Offset: putOffset,
	})
	if err != nil {
		return err
	}
	if resp.Status != placeholder.StatusOK {
		return statusErr("put", resp.Status)
	}

	fmt.Printf("wrote %d bytes at offset %d\n", resp.Count, putOffset)
	return nil
}

func runResize(path string, size int64) error {
	w, err := openWorkbench(cmdContext())
	if err != nil {
		return err
	}
	defer w.Close()

	leaf, _, _, err := w.resolve(path)
	if err != nil {
		return err
	}
	marker, err := w.markerOf(leaf)
	if err != nil {
		return err
	}

	resp, err := w.handler.Truncate(w.handlerCtx(), &placeholder.TruncateRequest{
		Object: leaf,
		Marker: marker,
		Size:   size,
	})
	if err != nil {
		return err
	}
	if resp.Status != placeholder.StatusOK {
		return statusErr("resize", resp.Status)
	}

	fmt.Printf("resized %s to %d bytes\n", path, size)
	return nil
}
