package annotate

import (
	"context"
	"log/slog"
	"strings"

	"github.com/lehigh-university-libraries/ordersheet/internal/models"
	"github.com/lehigh-university-libraries/ordersheet/internal/records"
	"github.com/lehigh-university-libraries/ordersheet/internal/schema"
)

// Detector classifies a title as held or not held by the catalog.
type Detector interface {
	Detect(ctx context.Context, isbn, title string) models.SearchResult
}

// Stats aggregates the outcome of an annotation run.
type Stats struct {
	Total      int `yaml:"total"`
	Checked    int `yaml:"checked"`
	Duplicates int `yaml:"duplicates"`
	Errors     int `yaml:"errors"`
	Skipped    int `yaml:"skipped"`

	// Number of checked rows decided by each search type
	BySearchType map[string]int `yaml:"by_search_type,omitempty"`
}

func (s *Stats) record(a *models.DuplicateAnnotation) {
	s.Checked++
	switch a.Status {
	case models.Found:
		s.Duplicates++
	case models.Error:
		s.Errors++
	}
	if s.BySearchType == nil {
		s.BySearchType = make(map[string]int)
	}
	s.BySearchType[a.SearchType.String()]++
}

// Annotator writes duplicate check results into output rows.
type Annotator struct {
	detector Detector
}

// New creates an annotator backed by the given detector
func New(detector Detector) *Annotator {
	return &Annotator{detector: detector}
}

// Annotate checks every row of the table in order. Rows without ISBN and title
// are skipped and keep a nil annotation. A cancelled context stops the run; the
// remaining rows stay unannotated.
func (a *Annotator) Annotate(ctx context.Context, table *records.Table) Stats {
	var stats Stats

	for i, row := range table.Rows {
		stats.Total++
		if ctx.Err() != nil {
			stats.Skipped++
			continue
		}

		isbn, title := row.Record.Get(schema.ISBN), row.Record.Get(schema.Title)
		if strings.TrimSpace(isbn) == "" && strings.TrimSpace(title) == "" {
			stats.Skipped++
			continue
		}

		result := a.detector.Detect(ctx, isbn, title)
		annotation := result.Annotation()
		Apply(row, annotation)
		stats.record(annotation)

		slog.Info("Duplicate check",
			"row", i+1,
			"of", len(table.Rows),
			"status", annotation.Status,
			"hits", annotation.HitCount,
			"search", annotation.SearchType,
		)
		if annotation.Status == models.Error {
			slog.Warn("Duplicate check failed", "row", i+1, "title", title, "error", annotation.Error)
		}
	}

	return stats
}

// Apply attaches the annotation to a row and writes its values into the
// annotation columns.
func Apply(row *records.Row, annotation *models.DuplicateAnnotation) {
	row.Annotation = annotation
	row.Record.Set(schema.DuplicateFlag, annotation.Status.Flag())
	row.Record.Set(schema.HitCount, annotation.CountValue())
	row.Record.Set(schema.MatchCarrier, annotation.Carrier)
	row.Record.Set(schema.MatchISBN, annotation.ISBN)
}
