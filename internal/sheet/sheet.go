package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for input files that are neither xlsx nor csv.
var ErrUnsupportedFormat = errors.New("unsupported input format")

// SourceRow is one data line of an order spreadsheet, keyed by header name.
type SourceRow struct {
	File   string
	Line   int // 1-based, the header is line 1
	Values map[string]string
	Cells  []string // raw values in column order
}

// Get returns the trimmed value of a column, or "" when the column is absent.
func (r SourceRow) Get(column string) string {
	return strings.TrimSpace(r.Values[column])
}

// LineError reports a line that could not be read.
type LineError struct {
	File string
	Line int
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("%s line %d: %v", filepath.Base(e.File), e.Line, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// File is the parsed content of one input spreadsheet.
type File struct {
	Path    string
	Header  []string
	Rows    []SourceRow
	Skipped []*LineError
}

// ReadFile reads the first worksheet of an xlsx file or a csv file.
// The first row is the header; fully empty lines are ignored.
func ReadFile(path string) (*File, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return readXLSX(path)
	case ".csv":
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		return readCSV(path, bytes.NewReader(data))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func readXLSX(path string) (*File, error) {
	f, err := excelize.OpenFile(path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no sheets", path)
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %s: %w", sheets[0], err)
	}

	return fromRows(path, rows), nil
}

func readCSV(path string, r io.Reader) (*File, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return &File{Path: path}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}

	file := &File{Path: path, Header: cleanHeader(header)}
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			file.Skipped = append(file.Skipped, &LineError{File: path, Line: line, Err: err})
			continue
		}
		if row, ok := newRow(path, line, file.Header, record); ok {
			file.Rows = append(file.Rows, row)
		}
	}

	return file, nil
}

func fromRows(path string, rows [][]string) *File {
	file := &File{Path: path}
	if len(rows) == 0 {
		return file
	}

	file.Header = cleanHeader(rows[0])
	for i, record := range rows[1:] {
		if row, ok := newRow(path, i+2, file.Header, record); ok {
			file.Rows = append(file.Rows, row)
		}
	}
	return file
}

func cleanHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		out[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}
	return out
}

func newRow(path string, line int, header, record []string) (SourceRow, bool) {
	values := make(map[string]string, len(header))
	empty := true
	for i, name := range header {
		if name == "" || i >= len(record) {
			continue
		}
		if _, dup := values[name]; dup {
			continue
		}
		values[name] = record[i]
		if strings.TrimSpace(record[i]) != "" {
			empty = false
		}
	}
	if empty {
		return SourceRow{}, false
	}
	return SourceRow{File: path, Line: line, Values: values, Cells: record}, true
}

// Expand resolves directories to the spreadsheets they contain, sorted by name.
// Plain files are returned as given, in the given order.
func Expand(paths []string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory %s: %w", p, err)
		}
		var found []string
		for _, e := range entries {
			if e.IsDir() || strings.HasPrefix(e.Name(), "~$") {
				continue
			}
			if Supported(e.Name()) {
				found = append(found, filepath.Join(p, e.Name()))
			}
		}
		sort.Strings(found)
		files = append(files, found...)
	}
	return files, nil
}

// Supported reports whether the file extension can be read.
func Supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm", ".csv":
		return true
	}
	return false
}
