package records

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/ordersheet/internal/fieldmap"
	"github.com/lehigh-university-libraries/ordersheet/internal/mappings"
	"github.com/lehigh-university-libraries/ordersheet/internal/models"
	"github.com/lehigh-university-libraries/ordersheet/internal/schema"
	"github.com/lehigh-university-libraries/ordersheet/internal/sheet"
)

// Row is one output row of the import table.
type Row struct {
	Record     schema.Record
	Source     string // file the row was read from
	Line       int
	Annotation *models.DuplicateAnnotation
}

// Table is the ordered output of a build.
type Table struct {
	Rows []*Row
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// RemoveEmptyTitles deletes every row whose title is empty or whitespace only
// and returns the number of rows removed.
func (t *Table) RemoveEmptyTitles() int {
	removed := 0
	for i := len(t.Rows) - 1; i >= 0; i-- {
		if strings.TrimSpace(t.Rows[i].Record.Get(schema.Title)) != "" {
			continue
		}
		slog.Debug("Removing row without title", "file", filepath.Base(t.Rows[i].Source), "line", t.Rows[i].Line)
		t.Rows = append(t.Rows[:i], t.Rows[i+1:]...)
		removed++
	}
	return removed
}

// RowError reports a row or file that could not be built.
// Line is 0 when the whole file failed.
type RowError struct {
	File string
	Line int
	Err  error
}

func (e RowError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s: %v", filepath.Base(e.File), e.Err)
	}
	return fmt.Sprintf("%s line %d: %v", filepath.Base(e.File), e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

type rowResult struct {
	row *Row
	err error
}

// Builder turns order spreadsheets into an import table.
type Builder struct {
	mapper *fieldmap.Mapper
	tables *mappings.Tables
	read   func(path string) (*sheet.File, error)
}

// NewBuilder creates a builder using the given mapping tables and defaults
func NewBuilder(tables *mappings.Tables, defaults schema.Defaults) *Builder {
	return &Builder{
		mapper: fieldmap.New(tables, defaults),
		tables: tables,
		read:   sheet.ReadFile,
	}
}

// Build maps every row of every file, in order, applies the enrichment rules and
// finally removes rows without a title. Failures are collected per row or file;
// they never stop the batch.
func (b *Builder) Build(files []string) (*Table, []RowError) {
	table := &Table{}
	var failures []RowError

	for _, path := range files {
		file, err := b.read(path)
		if err != nil {
			slog.Error("Failed to read input file", "file", path, "error", err)
			failures = append(failures, RowError{File: path, Err: err})
			continue
		}

		for _, skipped := range file.Skipped {
			slog.Warn("Skipping unreadable line", "file", filepath.Base(skipped.File), "line", skipped.Line, "error", skipped.Err)
			failures = append(failures, RowError{File: skipped.File, Line: skipped.Line, Err: skipped.Err})
		}

		slog.Info("Processing input file", "file", filepath.Base(path), "rows", len(file.Rows))
		for _, source := range file.Rows {
			result := b.buildRow(source)
			if result.err != nil {
				slog.Error("Failed to build row", "file", filepath.Base(path), "line", source.Line, "error", result.err)
				failures = append(failures, RowError{File: path, Line: source.Line, Err: result.err})
				continue
			}
			table.Rows = append(table.Rows, result.row)
		}
	}

	if removed := table.RemoveEmptyTitles(); removed > 0 {
		slog.Info("Removed rows without title", "count", removed)
	}

	return table, failures
}

func (b *Builder) buildRow(source sheet.SourceRow) (result rowResult) {
	defer func() {
		if r := recover(); r != nil {
			result = rowResult{err: fmt.Errorf("failed to build row: %v", r)}
		}
	}()

	record := b.mapper.Map(source)
	b.enrich(&record, source.Line)

	return rowResult{row: &Row{Record: record, Source: source.File, Line: source.Line}}
}

// enrich applies the rules that derive fields from already mapped sibling fields.
func (b *Builder) enrich(record *schema.Record, line int) {
	library := record.Get(schema.Library)

	if v, ok := b.lookupLibrary(b.tables.CallNumberSuffix, library); ok {
		record.Set(schema.CallNumberSuffix, v)
	}

	if v, ok := b.lookupLibrary(b.tables.SupplierTag, library); ok {
		record.Set(schema.SupplierTag, v)
	}

	if v, ok := b.lookupLibrary(b.tables.EditionNote, library); ok {
		record.Set(schema.EditionNote, CombineEdition(v, record.Get(schema.EditionNote)))
	}

	if publisher := record.Get(schema.Publisher); publisher != "" {
		if v, ok := b.tables.Publisher.FirstContained(publisher); ok {
			record.Set(schema.SupplierCode, v)
		} else {
			slog.Info("No supplier code for publisher", "publisher", publisher, "line", line)
		}
	}

	if v, ok := b.lookupLibrary(b.tables.ShelfCode, library); ok {
		record.Set(schema.ShelfCode, v)
	} else {
		slog.Debug("No shelf code for library", "library", library, "line", line)
	}
}

func (b *Builder) lookupLibrary(table *mappings.Table, library string) (string, bool) {
	if library == "" {
		return "", false
	}
	return table.Lookup(library)
}

// CombineEdition prepends a library edition note to an existing edition value.
func CombineEdition(note, existing string) string {
	if existing == "" {
		return note
	}
	return note + ", " + existing
}
