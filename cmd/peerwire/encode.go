package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vango-dev/peerwire/internal/errors"
	"github.com/vango-dev/peerwire/internal/msgjson"
	"github.com/vango-dev/peerwire/pkg/message"
)

func encodeCmd(g *globals) *cobra.Command {
	var (
		file       string
		compressed bool
		raw        bool
	)

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode a JSON message description into a frame",
		Long: `Encode reads a JSON message description and prints the frame as hex.

Examples:
  echo '{"op": "ping"}' | peerwire encode
  peerwire encode -f put.json --compressed
  peerwire encode -f pong.json --raw > pong.bin`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := g.load(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer e.log.Sync()

			data, err := readInput(cmd, file)
			if err != nil {
				return err
			}

			m, err := msgjson.Parse(data)
			if err != nil {
				return errors.Classify(err, "PW016")
			}

			frame, err := e.codec.Encode(m, modeFlag(compressed))
			if err != nil {
				return errors.Classify(err, "PW012")
			}

			out := cmd.OutOrStdout()
			if raw {
				if _, err := out.Write(frame); err != nil {
					return errors.New("PW042").Wrap(err)
				}
				return nil
			}
			fmt.Fprintln(out, hex.EncodeToString(frame))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "-", "JSON description file, - for stdin")
	cmd.Flags().BoolVar(&compressed, "compressed", false, "Gzip the fields (compressible ops only)")
	cmd.Flags().BoolVar(&raw, "raw", false, "Write raw frame bytes instead of hex")

	return cmd
}

func modeFlag(compressed bool) message.Mode {
	if compressed {
		return message.Compressed
	}
	return message.Plain
}
