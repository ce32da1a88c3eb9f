package schema

import (
	"testing"
)

func TestHeaderOrder(t *testing.T) {
	header := Header()

	if len(header) != FieldCount {
		t.Fatalf("Expected %d header columns, got %d", FieldCount, len(header))
	}

	expectedCatalog := []string{
		"LDR", "008", "020$a", "040$a", "040$b", "040$e", "24510$a", "24510$c",
		"264$a", "264$b", "264$c", "336$b", "336$2",
		"337$b", "337$2", "338$b", "338$2", "905$c", "905$n", "905$o", "949$v", "949$s",
		"949$x", "949$u", "949$w", "949$d", "949$z",
	}

	if CatalogFieldCount != len(expectedCatalog) {
		t.Fatalf("Expected %d catalog fields, got %d", len(expectedCatalog), CatalogFieldCount)
	}

	for i, name := range expectedCatalog {
		if header[i] != name {
			t.Errorf("Column %d: expected %s, got %s", i, name, header[i])
		}
	}

	annotations := header[CatalogFieldCount:]
	expectedAnnotations := []string{"Dublette", "Anzahl Treffer", "SRU 338$a", "SRU 020$a"}
	for i, name := range expectedAnnotations {
		if annotations[i] != name {
			t.Errorf("Annotation column %d: expected %s, got %s", i, name, annotations[i])
		}
	}
}

func TestHeaderNamesUnique(t *testing.T) {
	seen := make(map[string]bool)
	for _, name := range Header() {
		if seen[name] {
			t.Errorf("Duplicate header name %q", name)
		}
		seen[name] = true
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name     string
		expected Field
		found    bool
	}{
		{"020$a", ISBN, true},
		{"24510$a", Title, true},
		{"905$n", Library, true},
		{"Dublette", DuplicateFlag, true},
		{"ISBN", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field, ok := Lookup(tt.name)
			if ok != tt.found {
				t.Fatalf("Expected found=%v, got %v", tt.found, ok)
			}
			if ok && field != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, field)
			}
		})
	}
}

func TestDefaultValues(t *testing.T) {
	defaults := DefaultValues(2026)

	if got := defaults.For(PublicationDate); got != "2026" {
		t.Errorf("Expected publication date default 2026, got %s", got)
	}
	if got := defaults.For(CatalogingAgency); got != "CH-ZuSLS ETH" {
		t.Errorf("Expected agency default, got %s", got)
	}
	if got := defaults.For(Title); got != "" {
		t.Errorf("Expected no default for title, got %s", got)
	}
	if got := defaults.For(ShippingCode); got != "100" {
		t.Errorf("Expected shipping default 100, got %s", got)
	}
}

func TestRecordValues(t *testing.T) {
	var r Record
	r.Set(Title, "Zauberberg")
	r.Set(MatchISBN, "9783161484100")

	values := r.Values()
	if len(values) != FieldCount {
		t.Fatalf("Expected %d values, got %d", FieldCount, len(values))
	}
	if values[Title] != "Zauberberg" {
		t.Errorf("Expected title at position %d", Title)
	}
	if values[FieldCount-1] != "9783161484100" {
		t.Errorf("Expected match ISBN in the last column, got %q", values[FieldCount-1])
	}

	// Values is a copy
	values[Title] = "changed"
	if r.Get(Title) != "Zauberberg" {
		t.Error("Values must not alias the record")
	}
}
