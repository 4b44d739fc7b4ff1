package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/vango-dev/peerwire/pkg/message"
)

type opRow struct {
	Name         string `json:"name"`
	Code         uint8  `json:"code"`
	Wire         bool   `json:"wire"`
	Compressible bool   `json:"compressible"`
}

func opsCmd() *cobra.Command {
	var (
		asJSON   bool
		wireOnly bool
	)

	cmd := &cobra.Command{
		Use:   "ops",
		Short: "List the message types",
		Long: `List every registered message type with its opcode.

Internal ops are node-local notifications and have no wire encoding.
Compressible ops carry a flag byte and may be gzip-compressed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var rows []opRow
			for _, op := range message.Ops() {
				if wireOnly && op.IsInternal() {
					continue
				}
				rows = append(rows, opRow{
					Name:         op.String(),
					Code:         uint8(op),
					Wire:         !op.IsInternal(),
					Compressible: op.Compressible(),
				})
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tCODE\tWIRE\tCOMPRESSIBLE")
			for _, r := range rows {
				fmt.Fprintf(tw, "%s\t%d\t%s\t%s\n", r.Name, r.Code, yesNo(r.Wire), yesNo(r.Compressible))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")
	cmd.Flags().BoolVar(&wireOnly, "wire", false, "Only list ops with a wire encoding")

	return cmd
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
