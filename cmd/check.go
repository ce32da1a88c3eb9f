package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/ordersheet/internal/processing"
	"github.com/lehigh-university-libraries/ordersheet/internal/report"
)

func newCheckCmd(opts *rootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Run the duplicate check on an existing spreadsheet",
		Long: `Check every row of an existing spreadsheet against the union catalog.

The ISBN column is the first header containing 020$a or ISBN, the title column the
first header containing 24510$a or Titel. Results go into the columns Dublette,
Anzahl Treffer, SRU 338$a and SRU 020$a, which are appended when missing. Duplicates
are highlighted.

Parquet artifacts written by "ordersheet process --format parquet" are checked
and rewritten as parquet.`,
		Example: `  # Annotate an import list in place
  ordersheet check Output/Bestellliste_20250131_142501.xlsx

  # Write the annotated copy elsewhere
  ordersheet check orders.csv --output orders-checked.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if !cfg.DuplicatesEnabled {
				return fmt.Errorf("duplicate check is disabled in the configuration")
			}

			svc := processing.NewService(cfg, cfg.NewCatalogClient())
			outcome, err := svc.Check(cmd.Context(), args[0], output)
			if outcome != nil {
				fmt.Fprintln(cmd.OutOrStdout(), report.RenderSummary(outcome))
				if reportErr := writeReport(cfg, outcome); reportErr != nil {
					slog.Error("Failed to write run report", "error", reportErr)
				}
			}
			return err
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output path (default overwrites xlsx and parquet inputs)")
	addSRUFlags(cmd)

	return cmd
}
