package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/ordersheet/internal/mappings"
	"github.com/lehigh-university-libraries/ordersheet/internal/report"
)

func newMappingsCmd(opts *rootOptions) *cobra.Command {
	var show string

	cmd := &cobra.Command{
		Use:   "mappings",
		Short: "Show the loaded mapping tables",
		Long: `Load the mapping tables from the mapping directory and print one line per table
with its entry count. Tables that are missing or lack their columns are reported as
degraded; they are treated as empty during processing.`,
		Example: `  ordersheet mappings
  ordersheet mappings --mappings /srv/ordersheet/Mapping --show 949v`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			tables, warnings := mappings.NewLoader(cfg.MappingsDir).Load()
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, report.RenderMappings(tables, warnings))

			if show == "" {
				return nil
			}
			for _, n := range tables.All() {
				if n.Source.Name == show {
					fmt.Fprintln(out, report.RenderEntries(n.Source, n.Table))
					return nil
				}
			}
			return fmt.Errorf("unknown mapping table %q", show)
		},
	}

	cmd.Flags().StringVar(&show, "show", "", "Print the entries of one table (949v, 949d, 949x, 905o, articles, sonderzeichen, 905c)")

	return cmd
}
