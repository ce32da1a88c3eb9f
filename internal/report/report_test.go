package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/ordersheet/internal/annotate"
	"github.com/lehigh-university-libraries/ordersheet/internal/config"
	"github.com/lehigh-university-libraries/ordersheet/internal/export"
	"github.com/lehigh-university-libraries/ordersheet/internal/mappings"
	"github.com/lehigh-university-libraries/ordersheet/internal/models"
	"github.com/lehigh-university-libraries/ordersheet/internal/processing"
	"github.com/lehigh-university-libraries/ordersheet/internal/records"
	"github.com/lehigh-university-libraries/ordersheet/internal/schema"
)

func sampleOutcome() *processing.Outcome {
	found := &records.Row{Source: "/in/a.xlsx", Line: 2, Annotation: &models.DuplicateAnnotation{
		Status: models.Found, HitCount: 2, SearchType: models.SearchISBN, Carrier: "Band", ISBN: "9783161484100",
	}}
	found.Record.Set(schema.Title, "Der Zauberberg")
	found.Record.Set(schema.ISBN, "9783161484100")

	failed := &records.Row{Source: "/in/a.xlsx", Line: 3, Annotation: &models.DuplicateAnnotation{
		Status: models.Error, SearchType: models.SearchTitle, Error: "timeout",
	}}
	failed.Record.Set(schema.Title, "Kaputt")

	plain := &records.Row{Source: "/in/b.xlsx", Line: 2, Annotation: &models.DuplicateAnnotation{Status: models.NotFound}}
	plain.Record.Set(schema.Title, "Neu")

	start := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)
	return &processing.Outcome{
		Inputs:          []string{"/in/a.xlsx", "/in/b.xlsx"},
		Artifact:        "/out/Bestellliste_20260302_093000.xlsx",
		Format:          export.FormatXLSX,
		Table:           &records.Table{Rows: []*records.Row{found, failed, plain}},
		RowErrors:       []records.RowError{{File: "/in/b.xlsx", Line: 7, Err: errors.New("bare quote")}},
		MappingWarnings: []error{errors.New("mapping 949v: missing")},
		Stats:           annotate.Stats{Total: 3, Checked: 3, Duplicates: 1, Errors: 1},
		DuplicatesRun:   true,
		StartedAt:       start,
		FinishedAt:      start.Add(1500 * time.Millisecond),
	}
}

func TestNew(t *testing.T) {
	cfg := &config.Config{MappingsDir: "./Mapping", CatalogingYear: 2026, SRU: config.SRU{URL: "https://example.org/sru"}}

	r := New(cfg, sampleOutcome())

	assert.Equal(t, "2026-03-02_09-30-00", r.Config.Timestamp)
	assert.Equal(t, "1.5s", r.Config.Duration)
	assert.Equal(t, "https://example.org/sru", r.Config.SRUURL)
	assert.Equal(t, 3, r.Rows)
	assert.Equal(t, []string{"mapping 949v: missing"}, r.MappingWarnings)

	require.Len(t, r.RowErrors, 1)
	assert.Equal(t, RowIssue{File: "b.xlsx", Line: 7, Error: "bare quote"}, r.RowErrors[0])

	require.Len(t, r.Duplicates, 1)
	assert.Equal(t, "Der Zauberberg", r.Duplicates[0].Title)
	assert.Equal(t, "isbn", r.Duplicates[0].SearchType)
	assert.Equal(t, "a.xlsx", r.Duplicates[0].File)

	require.Len(t, r.CheckErrors, 1)
	assert.Equal(t, "timeout", r.CheckErrors[0].Error)
}

func TestSaveToYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reports", "run.yaml")
	cfg := &config.Config{MappingsDir: "./Mapping", CatalogingYear: 2026}

	require.NoError(t, SaveToYAML(path, New(cfg, sampleOutcome())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "config")
	assert.Contains(t, decoded, "duplicates")
	assert.Contains(t, string(data), "artifact: /out/Bestellliste_20260302_093000.xlsx")
}

func TestRenderSummary(t *testing.T) {
	out := RenderSummary(sampleOutcome())

	for _, want := range []string{"Input files", "Duplicates", "Check errors", "Bestellliste_20260302_093000.xlsx"} {
		assert.Contains(t, out, want)
	}

	o := sampleOutcome()
	o.DuplicatesRun = false
	assert.NotContains(t, RenderSummary(o), "Duplicates")
}

func TestRenderMappings(t *testing.T) {
	tables := mappings.Empty()
	tables.ShelfCode = mappings.DefaultShelfCodes()
	tables.Articles = mappings.NewTable(mappings.Entry{Key: "der", Value: "<<Der>>"})

	out := RenderMappings(tables, []error{errors.New("mapping 949v: failed to read")})

	lines := strings.Split(out, "\n")
	var publisher, shelf string
	for _, l := range lines {
		if strings.Contains(l, "mapping_949v.csv") {
			publisher = l
		}
		if strings.Contains(l, "mapping_905c.csv") {
			shelf = l
		}
	}
	assert.Contains(t, publisher, "degraded")
	assert.Contains(t, shelf, "built-in")
}

func TestRenderEntries(t *testing.T) {
	out := RenderEntries(mappings.ArticlesSource, mappings.NewTable(mappings.Entry{Key: "der", Value: "<<Der>>"}))
	assert.Contains(t, strings.ToLower(out), "formatted_article")
	assert.Contains(t, out, "<<Der>>")
}
