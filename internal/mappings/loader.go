package mappings

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Source describes where a mapping table lives and which columns it uses.
type Source struct {
	Name        string
	File        string
	KeyColumn   string
	ValueColumn string
}

var (
	PublisherSource         = Source{Name: "949v", File: "mapping_949v.csv", KeyColumn: "264$b", ValueColumn: "949$v"}
	EditionNoteSource       = Source{Name: "949d", File: "mapping_949d.csv", KeyColumn: "905$n", ValueColumn: "949$d"}
	SupplierTagSource       = Source{Name: "949x", File: "mapping_949x.csv", KeyColumn: "905$n", ValueColumn: "949$x"}
	CallNumberSuffixSource  = Source{Name: "905o", File: "mapping_905o.csv", KeyColumn: "905$n", ValueColumn: "905$o"}
	ArticlesSource          = Source{Name: "articles", File: "mapping_articles.csv", KeyColumn: "article", ValueColumn: "formatted_article"}
	SpecialCharactersSource = Source{Name: "sonderzeichen", File: "mapping_sonderzeichen.csv", KeyColumn: "original", ValueColumn: "replacement"}
	ShelfCodeSource         = Source{Name: "905c", File: "mapping_905c.csv", KeyColumn: "905$n", ValueColumn: "905$c"}
)

// ErrMissingColumn is reported when a mapping file lacks its key or value column.
var ErrMissingColumn = errors.New("missing expected column")

// DefaultShelfCodes is used for 905$c when no mapping_905c.csv is present.
func DefaultShelfCodes() *Table {
	return NewTable(
		Entry{Key: "E01", Value: "01"},
		Entry{Key: "E03", Value: "21"},
		Entry{Key: "E05", Value: "01"},
		Entry{Key: "E06", Value: "01"},
	)
}

// Tables bundles every lookup table the record builder needs.
type Tables struct {
	Publisher         *Table // 264$b substring -> 949$v
	EditionNote       *Table // 905$n -> 949$d
	SupplierTag       *Table // 905$n -> 949$x
	CallNumberSuffix  *Table // 905$n -> 905$o
	Articles          *Table // article -> formatted article
	SpecialCharacters *Table // original -> replacement
	ShelfCode         *Table // 905$n -> 905$c
}

// Empty returns a Tables value with every table present but empty.
func Empty() *Tables {
	return &Tables{
		Publisher:         NewTable(),
		EditionNote:       NewTable(),
		SupplierTag:       NewTable(),
		CallNumberSuffix:  NewTable(),
		Articles:          NewTable(),
		SpecialCharacters: NewTable(),
		ShelfCode:         NewTable(),
	}
}

// Named pairs a table with its source, in a stable order for reporting.
type Named struct {
	Source Source
	Table  *Table
}

// All returns the tables with their sources.
func (t *Tables) All() []Named {
	return []Named{
		{PublisherSource, t.Publisher},
		{EditionNoteSource, t.EditionNote},
		{SupplierTagSource, t.SupplierTag},
		{CallNumberSuffixSource, t.CallNumberSuffix},
		{ArticlesSource, t.Articles},
		{SpecialCharactersSource, t.SpecialCharacters},
		{ShelfCodeSource, t.ShelfCode},
	}
}

// Loader reads mapping tables from a directory of CSV files
type Loader struct {
	dir string
}

// NewLoader creates a loader for the given mapping directory
func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// Load reads every mapping table. A missing file or column degrades that table to
// empty (the 905$c table falls back to DefaultShelfCodes) and is reported in the
// returned warnings; Load itself never fails.
func (l *Loader) Load() (*Tables, []error) {
	var warnings []error

	load := func(src Source) *Table {
		table, err := l.loadTable(src)
		if err != nil {
			slog.Warn("Mapping table degraded to empty", "table", src.Name, "file", src.File, "error", err)
			warnings = append(warnings, fmt.Errorf("mapping %s: %w", src.Name, err))
			return NewTable()
		}
		slog.Debug("Loaded mapping table", "table", src.Name, "entries", table.Len())
		return table
	}

	tables := &Tables{
		Publisher:         load(PublisherSource),
		EditionNote:       load(EditionNoteSource),
		SupplierTag:       load(SupplierTagSource),
		CallNumberSuffix:  load(CallNumberSuffixSource),
		Articles:          load(ArticlesSource),
		SpecialCharacters: load(SpecialCharactersSource),
	}

	shelf, err := l.loadTable(ShelfCodeSource)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		shelf = DefaultShelfCodes()
	case err != nil:
		slog.Warn("Mapping table degraded to built-in codes", "table", ShelfCodeSource.Name, "error", err)
		warnings = append(warnings, fmt.Errorf("mapping %s: %w", ShelfCodeSource.Name, err))
		shelf = DefaultShelfCodes()
	}
	tables.ShelfCode = shelf

	return tables, warnings
}

func (l *Loader) loadTable(src Source) (*Table, error) {
	path := filepath.Join(l.dir, src.File)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return ParseTable(bytes.NewReader(data), src)
}

// ParseTable reads a two-column mapping from CSV, locating the columns by header name.
// Rows with an empty key are skipped.
func ParseTable(r io.Reader, src Source) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	keyCol, valueCol := -1, -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		switch h {
		case src.KeyColumn:
			keyCol = i
		case src.ValueColumn:
			valueCol = i
		}
	}
	if keyCol < 0 || valueCol < 0 {
		return nil, fmt.Errorf("%w: want %q and %q, have %v", ErrMissingColumn, src.KeyColumn, src.ValueColumn, header)
	}

	var entries []Entry
	line := 1
	for {
		record, err := reader.Read()
		line++
		if err == io.EOF {
			break
		}
		if err != nil {
			slog.Warn("Skipping unreadable mapping row", "table", src.Name, "line", line, "error", err)
			continue
		}
		if keyCol >= len(record) {
			continue
		}
		key := record[keyCol]
		if key == "" {
			continue
		}
		value := ""
		if valueCol < len(record) {
			value = record[valueCol]
		}
		entries = append(entries, Entry{Key: key, Value: value})
	}

	return NewTable(entries...), nil
}
