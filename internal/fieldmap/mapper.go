package fieldmap

import (
	"strings"
	"unicode/utf8"

	"github.com/lehigh-university-libraries/ordersheet/internal/mappings"
	"github.com/lehigh-university-libraries/ordersheet/internal/schema"
	"github.com/lehigh-university-libraries/ordersheet/internal/sheet"
)

// Mapper transforms source rows into canonical records.
type Mapper struct {
	columns           map[schema.Field]string
	defaults          schema.Defaults
	articles          *mappings.Table
	specialCharacters *mappings.Table
}

// New creates a mapper using the standard rename rules.
func New(tables *mappings.Tables, defaults schema.Defaults) *Mapper {
	return &Mapper{
		columns:           schema.SourceColumns,
		defaults:          defaults,
		articles:          tables.Articles,
		specialCharacters: tables.SpecialCharacters,
	}
}

// Map builds a record with every catalog field populated from the source row
// or from its default. Annotation fields are left empty.
func (m *Mapper) Map(row sheet.SourceRow) schema.Record {
	var record schema.Record
	for i := 0; i < schema.CatalogFieldCount; i++ {
		field := schema.Field(i)
		record.Set(field, m.value(field, row))
	}
	return record
}

func (m *Mapper) value(field schema.Field, row sheet.SourceRow) string {
	var value string
	if column, ok := m.columns[field]; ok {
		value = row.Get(column)
	}
	if !utf8.ValidString(value) {
		value = ""
	}

	value = ReplaceSpecialCharacters(value, m.specialCharacters)

	switch field {
	case schema.ISBN:
		value = NormalizeISBN(value)
	case schema.Title:
		value = FormatArticle(value, m.articles)
	}

	if value == "" {
		return m.defaults.For(field)
	}
	return value
}

// ReplaceSpecialCharacters applies every substitution of the table in table order.
// Overlapping rules are order dependent.
func ReplaceSpecialCharacters(value string, table *mappings.Table) string {
	if value == "" {
		return value
	}
	for _, e := range table.Entries() {
		if e.Key == "" {
			continue
		}
		value = strings.ReplaceAll(value, e.Key, e.Value)
	}
	return value
}

// NormalizeISBN removes hyphens and cuts the value at the first '.',
// which strips the ".0" left behind by numeric spreadsheet cells.
func NormalizeISBN(value string) string {
	value = strings.ReplaceAll(value, "-", "")
	if i := strings.IndexByte(value, '.'); i >= 0 {
		value = value[:i]
	}
	return value
}

// FormatArticle replaces a leading article with its formatted form, for example
// "der Zauberberg" becomes "<<Der>> Zauberberg". The article must be followed by
// a space and is matched case-insensitively; the first matching entry wins.
func FormatArticle(title string, articles *mappings.Table) string {
	for _, e := range articles.Entries() {
		prefix := e.Key + " "
		if len(title) < len(prefix) || !strings.EqualFold(title[:len(prefix)], prefix) {
			continue
		}
		return e.Value + " " + title[len(prefix):]
	}
	return title
}
