package processing

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/ordersheet/internal/export"
	"github.com/lehigh-university-libraries/ordersheet/internal/records"
	"github.com/lehigh-university-libraries/ordersheet/internal/schema"
	"github.com/lehigh-university-libraries/ordersheet/internal/sheet"
)

// ErrNoDetector is returned by Check when the duplicate check is disabled.
var ErrNoDetector = errors.New("duplicate check is disabled")

var annotationFields = []schema.Field{
	schema.DuplicateFlag,
	schema.HitCount,
	schema.MatchCarrier,
	schema.MatchISBN,
}

// CheckOutputPath is the default output of Check: the input itself for xlsx and
// parquet files, a sibling xlsx file otherwise.
func CheckOutputPath(input string) string {
	switch strings.ToLower(filepath.Ext(input)) {
	case ".xlsx", ".parquet":
		return input
	}
	return strings.TrimSuffix(input, filepath.Ext(input)) + export.FormatXLSX.Extension()
}

// Check runs the duplicate check on an existing spreadsheet or parquet artifact
// and writes an annotated copy to output.
func (s *Service) Check(ctx context.Context, input, output string) (*Outcome, error) {
	if !s.duplicatesEnabled() {
		return nil, ErrNoDetector
	}
	if output == "" {
		output = CheckOutputPath(input)
	}

	outcome := &Outcome{Inputs: []string{input}, StartedAt: s.now(), DuplicatesRun: true}

	var err error
	if strings.EqualFold(filepath.Ext(input), ".parquet") {
		outcome.Format = export.FormatParquet
		err = s.checkParquet(ctx, input, output, outcome)
	} else {
		outcome.Format = export.FormatXLSX
		err = s.checkSheet(ctx, input, output, outcome)
	}
	outcome.FinishedAt = s.now()
	if err != nil {
		return outcome, err
	}

	outcome.Artifact = output
	slog.Info("Checked file written", "path", output, "duplicates", outcome.Stats.Duplicates, "errors", outcome.Stats.Errors)
	return outcome, nil
}

func (s *Service) checkParquet(ctx context.Context, input, output string, outcome *Outcome) error {
	rows, err := export.ReadParquet(input)
	if err != nil {
		return err
	}

	table := &records.Table{Rows: make([]*records.Row, 0, len(rows))}
	for i, r := range rows {
		row := r.Row()
		row.Source = input
		row.Line = i + 1
		table.Rows = append(table.Rows, row)
	}
	outcome.Table = table
	outcome.Stats = s.annotate(ctx, table)

	if err := save(output, export.FormatParquet, table); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

func (s *Service) checkSheet(ctx context.Context, input, output string, outcome *Outcome) error {
	file, err := sheet.ReadFile(input)
	if err != nil {
		return err
	}
	for _, skipped := range file.Skipped {
		outcome.RowErrors = append(outcome.RowErrors, records.RowError{File: skipped.File, Line: skipped.Line, Err: skipped.Err})
	}

	isbnCol := findColumn(file.Header, func(h string) bool {
		return strings.Contains(h, schema.ISBN.Name()) || strings.Contains(strings.ToUpper(h), "ISBN")
	})
	titleCol := findColumn(file.Header, func(h string) bool {
		return strings.Contains(h, schema.Title.Name()) || strings.Contains(strings.ToUpper(h), "TITEL")
	})
	if isbnCol < 0 && titleCol < 0 {
		return fmt.Errorf("no ISBN or title column in %s", filepath.Base(input))
	}
	slog.Debug("Located check columns", "isbn", isbnCol, "title", titleCol)

	table := &records.Table{Rows: make([]*records.Row, 0, len(file.Rows))}
	for _, source := range file.Rows {
		row := &records.Row{Source: input, Line: source.Line}
		row.Record.Set(schema.ISBN, cell(source.Cells, isbnCol))
		row.Record.Set(schema.Title, cell(source.Cells, titleCol))
		table.Rows = append(table.Rows, row)
	}
	outcome.Table = table
	outcome.Stats = s.annotate(ctx, table)

	out := annotatedSheet(file, table)
	if err := export.Save(output, func(w io.Writer) error {
		return export.WriteXLSX(w, out)
	}); err != nil {
		return fmt.Errorf("failed to write artifact: %w", err)
	}
	return nil
}

// annotatedSheet copies the input sheet and fills the annotation columns,
// reusing existing ones and appending the missing ones.
func annotatedSheet(file *sheet.File, table *records.Table) *export.Table {
	header := append([]string(nil), file.Header...)
	columns := make([]int, len(annotationFields))
	for i, field := range annotationFields {
		columns[i] = findColumn(header, func(h string) bool { return h == field.Name() })
		if columns[i] < 0 {
			columns[i] = len(header)
			header = append(header, field.Name())
		}
	}

	out := &export.Table{
		Sheet:       export.SheetName,
		Header:      header,
		Rows:        make([][]string, 0, table.Len()),
		Highlight:   make([]bool, 0, table.Len()),
		FlagColumn:  columns[0],
		CountColumn: columns[1],
	}

	for i, row := range table.Rows {
		values := make([]string, len(header))
		copy(values, file.Rows[i].Cells)
		if row.Annotation != nil {
			for j, field := range annotationFields {
				values[columns[j]] = row.Record.Get(field)
			}
		}
		out.Rows = append(out.Rows, values)
		out.Highlight = append(out.Highlight, row.Annotation.Highlight())
	}
	return out
}

func findColumn(header []string, match func(string) bool) int {
	for i, h := range header {
		if match(strings.TrimSpace(h)) {
			return i
		}
	}
	return -1
}

func cell(cells []string, col int) string {
	if col < 0 || col >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[col])
}
