package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/lepinkainen/humanlog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lehigh-university-libraries/ordersheet/internal/config"
)

// rootOptions holds the persistent flags and the resolved configuration
type rootOptions struct {
	configFile string
	verbose    bool
	logFormat  string
	viper      *viper.Viper
}

// flagBindings maps config keys to the flags that override them
var flagBindings = map[string]string{
	config.KeyMappingsDir:    "mappings",
	config.KeyOutputDir:      "output-dir",
	config.KeyOutputFormat:   "format",
	config.KeySRUURL:         "sru-url",
	config.KeySRUTimeout:     "sru-timeout",
	config.KeySRUInterval:    "sru-interval",
	config.KeyCatalogingYear: "year",
	config.KeyReportPath:     "report",
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "ordersheet",
		Short: "Convert bibliographic order spreadsheets into catalog import lists",
		Long: `Ordersheet converts order spreadsheets from libraries into a normalized
import list for the library catalog and flags titles the union catalog already holds.

Mapping tables (CSV) control supplier codes, edition notes, call number suffixes,
title articles and special character replacements. The duplicate check queries
the swisscovery SRU interface, ISBN first, title second.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			if err := setupLogging(cmd.ErrOrStderr(), opts.verbose, opts.logFormat); err != nil {
				return err
			}

			v, err := config.New(opts.configFile)
			if err != nil {
				return err
			}
			for key, name := range flagBindings {
				if flag := cmd.Flags().Lookup(name); flag != nil {
					if err := v.BindPFlag(key, flag); err != nil {
						return fmt.Errorf("failed to bind flag %s: %w", name, err)
					}
				}
			}
			opts.viper = v
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "Config file (default ./"+config.DefaultFile+" when present)")
	cmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose logging")
	cmd.PersistentFlags().StringVar(&opts.logFormat, "log-format", "text", "Log format (text or json)")
	cmd.PersistentFlags().String("mappings", "./Mapping", "Directory containing the mapping CSV files")

	cmd.AddCommand(newProcessCmd(opts))
	cmd.AddCommand(newCheckCmd(opts))
	cmd.AddCommand(newMappingsCmd(opts))

	return cmd
}

// loadConfig resolves the configuration after flags were bound
func (o *rootOptions) loadConfig() (*config.Config, error) {
	if o.viper == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return config.Load(o.viper)
}

func setupLogging(w io.Writer, verbose bool, format string) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	var handler slog.Handler
	switch strings.ToLower(format) {
	case "", "text":
		handler = humanlog.NewHandler(w, &humanlog.Options{
			Level: level,
		})
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	default:
		return fmt.Errorf("unknown log format %q (use text or json)", format)
	}

	slog.SetDefault(slog.New(handler))
	return nil
}

// addSRUFlags registers the flags shared by commands that query the catalog
func addSRUFlags(cmd *cobra.Command) {
	cmd.Flags().String("sru-url", "", "SRU base URL (default swisscovery network zone)")
	cmd.Flags().Duration("sru-timeout", 0, "Timeout per SRU request (default 10s)")
	cmd.Flags().Duration("sru-interval", 0, "Minimum interval between SRU requests (default 300ms)")
	cmd.Flags().String("report", "", "Write a YAML run report to this path")
}
