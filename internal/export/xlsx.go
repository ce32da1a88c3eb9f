package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/lehigh-university-libraries/ordersheet/internal/records"
	"github.com/lehigh-university-libraries/ordersheet/internal/schema"
)

// SheetName is the worksheet name of the import artifact
const SheetName = "Importdaten Alma"

const (
	highlightFill = "FFFF00"
	highlightFont = "FF0000"
)

// Table is a header plus positional rows ready to be written as a worksheet.
type Table struct {
	Sheet  string
	Header []string
	Rows   [][]string

	// Highlight marks rows whose flag and count cells are emphasized.
	Highlight []bool
	// FlagColumn and CountColumn are 0-based column indexes, -1 when absent.
	FlagColumn  int
	CountColumn int
}

// FromRecords converts an import table into a worksheet in canonical column order.
func FromRecords(t *records.Table) *Table {
	out := &Table{
		Sheet:       SheetName,
		Header:      schema.Header(),
		Rows:        make([][]string, 0, t.Len()),
		Highlight:   make([]bool, 0, t.Len()),
		FlagColumn:  int(schema.DuplicateFlag),
		CountColumn: int(schema.HitCount),
	}
	for _, row := range t.Rows {
		out.Rows = append(out.Rows, row.Record.Values())
		out.Highlight = append(out.Highlight, row.Annotation.Highlight())
	}
	return out
}

// WriteXLSX writes the table as a single-sheet workbook with a bold header row.
func WriteXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := t.Sheet
	if sheet == "" {
		sheet = SheetName
	}
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	styles, err := newStyles(f)
	if err != nil {
		return err
	}

	if err := writeRow(f, sheet, 1, t.Header); err != nil {
		return err
	}
	if len(t.Header) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(t.Header), 1)
		if err := f.SetCellStyle(sheet, "A1", last, styles.header); err != nil {
			return fmt.Errorf("failed to style header: %w", err)
		}
	}

	for i, values := range t.Rows {
		rowNum := i + 2
		if err := writeRow(f, sheet, rowNum, values); err != nil {
			return err
		}
		if i < len(t.Highlight) && t.Highlight[i] {
			if err := styleCell(f, sheet, t.FlagColumn, rowNum, styles.flag); err != nil {
				return err
			}
			if err := styleCell(f, sheet, t.CountColumn, rowNum, styles.count); err != nil {
				return err
			}
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

type styleSet struct {
	header int
	flag   int
	count  int
}

func newStyles(f *excelize.File) (styleSet, error) {
	var s styleSet
	var err error

	s.header, err = f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return s, fmt.Errorf("failed to create header style: %w", err)
	}

	fill := excelize.Fill{Type: "pattern", Color: []string{highlightFill}, Pattern: 1}
	s.flag, err = f.NewStyle(&excelize.Style{
		Fill: fill,
		Font: &excelize.Font{Bold: true, Color: highlightFont},
	})
	if err != nil {
		return s, fmt.Errorf("failed to create highlight style: %w", err)
	}

	s.count, err = f.NewStyle(&excelize.Style{Fill: fill})
	if err != nil {
		return s, fmt.Errorf("failed to create highlight style: %w", err)
	}
	return s, nil
}

func writeRow(f *excelize.File, sheet string, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", rowNum, err)
	}
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}

func styleCell(f *excelize.File, sheet string, col, rowNum, style int) error {
	if col < 0 {
		return nil
	}
	cell, err := excelize.CoordinatesToCellName(col+1, rowNum)
	if err != nil {
		return fmt.Errorf("failed to address cell: %w", err)
	}
	if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
		return fmt.Errorf("failed to style %s: %w", cell, err)
	}
	return nil
}
