package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/lehigh-university-libraries/ordersheet/internal/annotate"
	"github.com/lehigh-university-libraries/ordersheet/internal/config"
	"github.com/lehigh-university-libraries/ordersheet/internal/processing"
	"github.com/lehigh-university-libraries/ordersheet/internal/report"
)

func newProcessCmd(opts *rootOptions) *cobra.Command {
	var skipDuplicates bool

	cmd := &cobra.Command{
		Use:   "process [files or directories...]",
		Short: "Convert order spreadsheets into an import list",
		Long: `Convert one or more order spreadsheets (.xlsx or .csv) into a single import list.

Directories are expanded to the spreadsheets they contain, sorted by name. Every row is
mapped onto the fixed import schema, enriched from the mapping tables and checked for
duplicates in the union catalog. Rows without a title are dropped.

The result is written to the output directory as Bestellliste_<timestamp>.xlsx
(or .parquet with --format parquet).`,
		Example: `  # Convert every spreadsheet in ./Input
  ordersheet process ./Input

  # Convert two files without the duplicate check
  ordersheet process order-e01.xlsx order-e03.csv --skip-duplicates

  # Write a parquet artifact and a YAML run report
  ordersheet process ./Input --format parquet --report reports/run.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if skipDuplicates {
				opts.viper.Set(config.KeyDuplicatesEnabled, false)
			}
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			var detector annotate.Detector
			if cfg.DuplicatesEnabled {
				detector = cfg.NewCatalogClient()
			}

			outcome, err := processing.NewService(cfg, detector).Run(cmd.Context(), args)
			if outcome != nil {
				fmt.Fprintln(cmd.OutOrStdout(), report.RenderSummary(outcome))
				if reportErr := writeReport(cfg, outcome); reportErr != nil {
					slog.Error("Failed to write run report", "error", reportErr)
				}
			}
			return err
		},
	}

	cmd.Flags().String("output-dir", "./Output", "Directory for the import list")
	cmd.Flags().String("format", "xlsx", "Artifact format (xlsx or parquet)")
	cmd.Flags().Int("year", 0, "Cataloging year for 264$c (default current year)")
	cmd.Flags().BoolVar(&skipDuplicates, "skip-duplicates", false, "Skip the union catalog duplicate check")
	addSRUFlags(cmd)

	return cmd
}

func writeReport(cfg *config.Config, outcome *processing.Outcome) error {
	if cfg.ReportPath == "" {
		return nil
	}
	if err := report.SaveToYAML(cfg.ReportPath, report.New(cfg, outcome)); err != nil {
		return err
	}
	slog.Info("Run report written", "path", cfg.ReportPath)
	return nil
}
