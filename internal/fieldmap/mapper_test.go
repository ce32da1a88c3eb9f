package fieldmap

import (
	"testing"

	"github.com/lehigh-university-libraries/ordersheet/internal/mappings"
	"github.com/lehigh-university-libraries/ordersheet/internal/schema"
	"github.com/lehigh-university-libraries/ordersheet/internal/sheet"
)

func testTables() *mappings.Tables {
	tables := mappings.Empty()
	tables.Articles = mappings.NewTable(
		mappings.Entry{Key: "der", Value: "<<Der>>"},
		mappings.Entry{Key: "die", Value: "<<Die>>"},
		mappings.Entry{Key: "the", Value: "<<The>>"},
	)
	tables.SpecialCharacters = mappings.NewTable(
		mappings.Entry{Key: "&", Value: "und"},
		mappings.Entry{Key: "\u00a0", Value: " "},
	)
	return tables
}

func TestNormalizeISBN(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"hyphens", "978-3-16-148410-0", "9783161484100"},
		{"numeric cell", "9783161484100.0", "9783161484100"},
		{"hyphens and decimal", "978-3-16-148410.0", "978316148410"},
		{"already normalized", "9783161484100", "9783161484100"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeISBN(tt.input)
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
			if again := NormalizeISBN(got); again != got {
				t.Errorf("Normalization not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestFormatArticle(t *testing.T) {
	articles := testTables().Articles

	tests := []struct {
		title    string
		expected string
	}{
		{"der Zauberberg", "<<Der>> Zauberberg"},
		{"Der Zauberberg", "<<Der>> Zauberberg"},
		{"DIE Blechtrommel", "<<Die>> Blechtrommel"},
		{"The Hobbit", "<<The>> Hobbit"},
		{"Derrida lesen", "Derrida lesen"},
		{"der", "der"},
		{"Zauberberg, der", "Zauberberg, der"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			if got := FormatArticle(tt.title, articles); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestFormatArticleFirstMatchWins(t *testing.T) {
	articles := mappings.NewTable(
		mappings.Entry{Key: "la", Value: "<<La>>"},
		mappings.Entry{Key: "LA", Value: "<<LA>>"},
	)
	if got := FormatArticle("La Strada", articles); got != "<<La>> Strada" {
		t.Errorf("Expected first table entry to win, got %q", got)
	}
}

func TestReplaceSpecialCharacters(t *testing.T) {
	table := mappings.NewTable(
		mappings.Entry{Key: "a", Value: "b"},
		mappings.Entry{Key: "b", Value: "c"},
	)
	// pairs apply in table order, so the first replacement feeds the second
	if got := ReplaceSpecialCharacters("aab", table); got != "ccc" {
		t.Errorf("Expected ccc, got %q", got)
	}
	if got := ReplaceSpecialCharacters("xyz", nil); got != "xyz" {
		t.Errorf("Expected unchanged value with nil table, got %q", got)
	}
}

func TestMapAppliesRulesAndDefaults(t *testing.T) {
	mapper := New(testTables(), schema.DefaultValues(2026))
	row := sheet.SourceRow{
		Values: map[string]string{
			"Bibliothek": "E01",
			"ISBN":       " 978-3-16-148410-0 ",
			"Titel":      "der Zauberberg",
			"Autor(en)":  "Mann & Sohn",
			"Verlag":     "S. Fischer",
			"Preis Euro": "",
			"Unrelated":  "ignored",
		},
	}

	record := mapper.Map(row)

	tests := []struct {
		field    schema.Field
		expected string
	}{
		{schema.Library, "E01"},
		{schema.ISBN, "9783161484100"},
		{schema.Title, "<<Der>> Zauberberg"},
		{schema.Responsibility, "Mann und Sohn"},
		{schema.Publisher, "S. Fischer"},
		{schema.Price, ""},
		{schema.PublicationDate, "2026"},
		{schema.Leader, "#####nam#a22004095c#4500"},
		{schema.ShippingCode, "100"},
		{schema.ShelfCode, ""},
		{schema.DuplicateFlag, ""},
	}

	for _, tt := range tests {
		t.Run(tt.field.Name(), func(t *testing.T) {
			if got := record.Get(tt.field); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestMapEmptyRowUsesDefaults(t *testing.T) {
	defaults := schema.DefaultValues(2025)
	mapper := New(mappings.Empty(), defaults)

	record := mapper.Map(sheet.SourceRow{Values: map[string]string{}})

	for i := 0; i < schema.CatalogFieldCount; i++ {
		field := schema.Field(i)
		if got := record.Get(field); got != defaults.For(field) {
			t.Errorf("%s: expected default %q, got %q", field, defaults.For(field), got)
		}
	}
}

func TestMapInvalidUTF8DegradesToEmpty(t *testing.T) {
	mapper := New(mappings.Empty(), schema.DefaultValues(2026))
	record := mapper.Map(sheet.SourceRow{Values: map[string]string{"Titel": "Bad \xff value"}})

	if got := record.Get(schema.Title); got != "" {
		t.Errorf("Expected empty title, got %q", got)
	}
}
