package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lehigh-university-libraries/ordersheet/internal/annotate"
	"github.com/lehigh-university-libraries/ordersheet/internal/config"
	"github.com/lehigh-university-libraries/ordersheet/internal/models"
	"github.com/lehigh-university-libraries/ordersheet/internal/processing"
	"github.com/lehigh-university-libraries/ordersheet/internal/schema"
)

// RunConfig represents the configuration section of the report
type RunConfig struct {
	MappingsDir    string `yaml:"mappingsdir"`
	OutputFormat   string `yaml:"outputformat"`
	SRUURL         string `yaml:"sruurl,omitempty"`
	Duplicates     bool   `yaml:"duplicates"`
	CatalogingYear int    `yaml:"catalogingyear"`
	Timestamp      string `yaml:"timestamp"`
	Duration       string `yaml:"duration"`
}

// RowIssue identifies a row that was dropped or could not be checked
type RowIssue struct {
	File  string `yaml:"file"`
	Line  int    `yaml:"line,omitempty"`
	Title string `yaml:"title,omitempty"`
	Error string `yaml:"error"`
}

// Duplicate lists one row already held by the catalog
type Duplicate struct {
	File       string `yaml:"file"`
	Line       int    `yaml:"line"`
	ISBN       string `yaml:"isbn,omitempty"`
	Title      string `yaml:"title"`
	Hits       int    `yaml:"hits"`
	SearchType string `yaml:"searchtype"`
	Carrier    string `yaml:"carrier,omitempty"`
	MatchISBN  string `yaml:"matchisbn,omitempty"`
}

// Report represents the complete run report
type Report struct {
	Config          RunConfig      `yaml:"config"`
	Inputs          []string       `yaml:"inputs"`
	Artifact        string         `yaml:"artifact"`
	Rows            int            `yaml:"rows"`
	Stats           annotate.Stats `yaml:"stats"`
	MappingWarnings []string       `yaml:"mappingwarnings,omitempty"`
	RowErrors       []RowIssue     `yaml:"rowerrors,omitempty"`
	CheckErrors     []RowIssue     `yaml:"checkerrors,omitempty"`
	Duplicates      []Duplicate    `yaml:"duplicates,omitempty"`
}

// New builds the report of a finished run
func New(cfg *config.Config, outcome *processing.Outcome) *Report {
	r := &Report{
		Config: RunConfig{
			MappingsDir:    cfg.MappingsDir,
			OutputFormat:   string(outcome.Format),
			Duplicates:     outcome.DuplicatesRun,
			CatalogingYear: cfg.CatalogingYear,
			Timestamp:      outcome.StartedAt.Format("2006-01-02_15-04-05"),
			Duration:       outcome.Duration().Round(time.Millisecond).String(),
		},
		Inputs:   outcome.Inputs,
		Artifact: outcome.Artifact,
		Stats:    outcome.Stats,
	}
	if outcome.DuplicatesRun {
		r.Config.SRUURL = cfg.SRU.URL
	}

	for _, w := range outcome.MappingWarnings {
		r.MappingWarnings = append(r.MappingWarnings, w.Error())
	}
	for _, e := range outcome.RowErrors {
		r.RowErrors = append(r.RowErrors, RowIssue{File: filepath.Base(e.File), Line: e.Line, Error: e.Err.Error()})
	}

	if outcome.Table == nil {
		return r
	}
	r.Rows = outcome.Table.Len()

	for _, row := range outcome.Table.Rows {
		a := row.Annotation
		if a == nil {
			continue
		}
		switch a.Status {
		case models.Found:
			r.Duplicates = append(r.Duplicates, Duplicate{
				File:       filepath.Base(row.Source),
				Line:       row.Line,
				ISBN:       row.Record.Get(schema.ISBN),
				Title:      row.Record.Get(schema.Title),
				Hits:       a.HitCount,
				SearchType: a.SearchType.String(),
				Carrier:    a.Carrier,
				MatchISBN:  a.ISBN,
			})
		case models.Error:
			r.CheckErrors = append(r.CheckErrors, RowIssue{
				File:  filepath.Base(row.Source),
				Line:  row.Line,
				Title: row.Record.Get(schema.Title),
				Error: a.Error,
			})
		}
	}

	return r
}

// SaveToYAML writes the report to path, creating its directory
func SaveToYAML(path string, r *Report) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write YAML file: %w", err)
	}

	return nil
}
