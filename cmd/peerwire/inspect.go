package main

import (
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"github.com/spf13/cobra"

	"github.com/vango-dev/peerwire/internal/errors"
	"github.com/vango-dev/peerwire/pkg/message"
)

func inspectCmd() *cobra.Command {
	var (
		file  string
		limit int64
	)

	cmd := &cobra.Command{
		Use:   "inspect [hex]",
		Short: "Describe a frame",
		Long: `Inspect checks the framing of a frame and prints its op, flag,
lengths and field bytes. Compressed fields are shown gunzipped.

The frame is given as hex (spaces and a 0x prefix are ignored), or as raw
bytes with --file.

Examples:
  peerwire inspect 0000000104
  peerwire encode -f put.json --raw | peerwire inspect -f -`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var frame []byte
			switch {
			case len(args) == 1 && file != "":
				return errors.Newf(errors.CategoryCLI, "give either a hex argument or --file, not both")
			case len(args) == 1:
				b, err := parseHex(args[0])
				if err != nil {
					return errors.New("PW040").WithDetail("The frame argument is not valid hex").Wrap(err)
				}
				frame = b
			case file != "":
				b, err := readInput(cmd, file)
				if err != nil {
					return err
				}
				frame = b
			default:
				return errors.Newf(errors.CategoryCLI, "a hex frame argument or --file is required")
			}

			info, err := message.InspectLimit(frame, limit)
			if err != nil {
				return errors.Classify(err, "PW020")
			}
			printFrameInfo(cmd, info)
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Raw frame file, - for stdin")
	cmd.Flags().Int64Var(&limit, "limit", message.DefaultInspectLimit, "Maximum gunzipped field size in bytes")

	return cmd
}

func parseHex(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	return hex.DecodeString(s)
}

func printFrameInfo(cmd *cobra.Command, info *message.FrameInfo) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "op:           %s (%d)\n", info.Op, uint8(info.Op))
	fmt.Fprintf(out, "body length:  %d\n", info.BodyLen)
	switch {
	case !info.Compressible:
		fmt.Fprintln(out, "flag:         none")
	case info.Compressed:
		fmt.Fprintln(out, "flag:         compressed")
	default:
		fmt.Fprintln(out, "flag:         plain")
	}
	fmt.Fprintf(out, "wire fields:  %d bytes\n", info.WireFieldLen)
	fmt.Fprintf(out, "fields:       %d bytes\n", len(info.Fields))
	if len(info.Fields) > 0 {
		fmt.Fprint(out, hex.Dump(info.Fields))
	}
}
