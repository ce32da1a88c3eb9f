package processing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/lehigh-university-libraries/ordersheet/internal/annotate"
	"github.com/lehigh-university-libraries/ordersheet/internal/config"
	"github.com/lehigh-university-libraries/ordersheet/internal/export"
	"github.com/lehigh-university-libraries/ordersheet/internal/mappings"
	"github.com/lehigh-university-libraries/ordersheet/internal/records"
	"github.com/lehigh-university-libraries/ordersheet/internal/schema"
	"github.com/lehigh-university-libraries/ordersheet/internal/sheet"
)

// ErrNoInput is returned when the given paths contain no readable spreadsheet.
var ErrNoInput = errors.New("no input spreadsheets found")

// Outcome summarizes one run.
type Outcome struct {
	Inputs          []string
	Artifact        string
	Format          export.Format
	Table           *records.Table
	RowErrors       []records.RowError
	MappingWarnings []error
	Stats           annotate.Stats
	DuplicatesRun   bool
	StartedAt       time.Time
	FinishedAt      time.Time
}

// Duration returns the wall time of the run.
func (o *Outcome) Duration() time.Duration {
	return o.FinishedAt.Sub(o.StartedAt)
}

// Service runs the conversion pipeline: build, annotate, persist.
type Service struct {
	cfg      *config.Config
	detector annotate.Detector
	now      func() time.Time
}

// NewService creates a service. A nil detector disables the duplicate check.
func NewService(cfg *config.Config, detector annotate.Detector) *Service {
	return &Service{
		cfg:      cfg,
		detector: detector,
		now:      time.Now,
	}
}

// Run converts the input spreadsheets into one import artifact. Row, mapping and
// catalog failures are collected in the outcome; only an unusable input list or a
// failed write returns an error.
func (s *Service) Run(ctx context.Context, inputs []string) (*Outcome, error) {
	files, err := sheet.Expand(inputs)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, ErrNoInput
	}

	outcome := &Outcome{
		Inputs:    files,
		Format:    s.cfg.OutputFormat,
		StartedAt: s.now(),
	}

	tables, warnings := mappings.NewLoader(s.cfg.MappingsDir).Load()
	outcome.MappingWarnings = warnings

	builder := records.NewBuilder(tables, schema.DefaultValues(s.cfg.CatalogingYear))
	table, rowErrors := builder.Build(files)
	outcome.Table = table
	outcome.RowErrors = rowErrors
	slog.Info("Built import table", "files", len(files), "rows", table.Len(), "row_errors", len(rowErrors))

	outcome.Stats = s.annotate(ctx, table)
	outcome.DuplicatesRun = s.duplicatesEnabled()

	path := filepath.Join(s.cfg.OutputDir, export.FileName(export.ArtifactPrefix, s.cfg.OutputFormat, outcome.StartedAt))
	if err := save(path, s.cfg.OutputFormat, table); err != nil {
		outcome.FinishedAt = s.now()
		return outcome, fmt.Errorf("failed to write artifact: %w", err)
	}
	outcome.Artifact = path
	outcome.FinishedAt = s.now()

	slog.Info("Import artifact written", "path", path, "rows", table.Len(), "duration", outcome.Duration())
	return outcome, nil
}

func (s *Service) duplicatesEnabled() bool {
	return s.cfg.DuplicatesEnabled && s.detector != nil
}

func (s *Service) annotate(ctx context.Context, table *records.Table) annotate.Stats {
	if !s.duplicatesEnabled() {
		slog.Info("Duplicate check disabled")
		return annotate.Stats{Total: table.Len(), Skipped: table.Len()}
	}

	slog.Info("Starting duplicate check", "rows", table.Len())
	stats := annotate.New(s.detector).Annotate(ctx, table)
	slog.Info("Duplicate check finished",
		"checked", stats.Checked,
		"duplicates", stats.Duplicates,
		"errors", stats.Errors,
	)
	return stats
}

func save(path string, format export.Format, table *records.Table) error {
	return export.Save(path, func(w io.Writer) error {
		if format == export.FormatParquet {
			return export.WriteParquet(w, table)
		}
		return export.WriteXLSX(w, export.FromRecords(table))
	})
}
