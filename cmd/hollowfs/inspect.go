package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hollowfs/hollowfs/pkg/placeholder"
	"github.com/hollowfs/hollowfs/pkg/reparse"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect FILE|-",
	Short: "Decode a raw marker blob",
	Long: `Decode a raw reparse marker and print its fields.

The argument is a file containing the raw marker bytes, or "-" to read
hex-encoded bytes from stdin.

Examples:
  hollowfs inspect marker.bin
  xxd -p marker.bin | hollowfs inspect -`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runInspect(args[0])
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(source string) error {
	blob, err := readMarkerBlob(source)
	if err != nil {
		return err
	}

	m, err := reparse.Decode(blob)
	if err != nil {
		return fmt.Errorf("decoding marker: %w", err)
	}

	selector := reparse.Selector{Target: placeholder.Tag, Mask: placeholder.TagSelect}

	fmt.Printf("tag:         0x%08x\n", uint32(m.Tag))
	fmt.Printf("data length: %d\n", m.DataLength)
	fmt.Printf("reserved:    0x%04x\n", m.Reserved)
	fmt.Printf("opaque:      0x%08x 0x%08x\n", m.Unused[0], m.Unused[1])
	fmt.Printf("vendor id:   %s\n", m.VendorID)
	fmt.Printf("name:        %q\n", m.Name)
	fmt.Printf("in scope:    %v (selector %s)\n", selector.Matches(m.Tag), selector)

	return nil
}

// readMarkerBlob loads raw marker bytes from a file, or hex text from stdin
// when the source is "-".
func readMarkerBlob(source string) ([]byte, error) {
	if source != "-" {
		blob, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("reading marker file: %w", err)
		}
		return blob, nil
	}

	text, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("reading stdin: %w", err)
	}

	cleaned := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
			return -1
		}
		return r
	}, string(text))

	blob, err := hex.DecodeString(cleaned)
	if err != nil {
		return nil, fmt.Errorf("decoding hex from stdin: %w", err)
	}
	return blob, nil
}
