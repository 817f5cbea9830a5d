package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"llamalaunch/internal/registry"
)

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models [dir]",
		Short: "List *.gguf files that can be used as MODEL_PATH",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			models, err := registry.LoadDir(dir)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(models) == 0 {
				fmt.Fprintf(out, "No .gguf models found in %s\n", dir)
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tQUANT\tSIZE\tPATH")
			for _, m := range models {
				quant := m.Quant
				if quant == "" {
					quant = "-"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", m.ID, quant, humanize.Bytes(m.SizeBytes), m.Path)
			}
			return tw.Flush()
		},
	}
}
