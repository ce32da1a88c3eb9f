package mappings

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMapping(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestTableOrderAndDuplicates(t *testing.T) {
	table := NewTable(
		Entry{Key: "b", Value: "1"},
		Entry{Key: "a", Value: "2"},
		Entry{Key: "b", Value: "3"},
	)

	assert.Equal(t, 2, table.Len())
	assert.Equal(t, []Entry{{Key: "b", Value: "3"}, {Key: "a", Value: "2"}}, table.Entries())

	v, ok := table.Lookup("b")
	assert.True(t, ok)
	assert.Equal(t, "3", v)

	_, ok = table.Lookup("c")
	assert.False(t, ok)
}

func TestFirstContained(t *testing.T) {
	table := NewTable(
		Entry{Key: "Springer", Value: "SPR"},
		Entry{Key: "Springer Nature", Value: "SN"},
		Entry{Key: "Hanser", Value: "HAN"},
	)

	v, ok := table.FirstContained("Springer Nature Switzerland")
	require.True(t, ok)
	assert.Equal(t, "SPR", v, "first key in table order wins")

	v, ok = table.FirstContained("Carl Hanser Verlag")
	require.True(t, ok)
	assert.Equal(t, "HAN", v)

	_, ok = table.FirstContained("Suhrkamp")
	assert.False(t, ok)
}

func TestNilTable(t *testing.T) {
	var table *Table
	assert.Equal(t, 0, table.Len())
	_, ok := table.Lookup("x")
	assert.False(t, ok)
	_, ok = table.FirstContained("x")
	assert.False(t, ok)
}

func TestParseTable(t *testing.T) {
	input := "\ufeff905$n,949$d\nE01,Sonderausgabe\n,ignored\nE02,\"Mit, Komma\"\n"

	table, err := ParseTable(strings.NewReader(input), EditionNoteSource)
	require.NoError(t, err)

	assert.Equal(t, 2, table.Len())
	v, _ := table.Lookup("E02")
	assert.Equal(t, "Mit, Komma", v)
}

func TestParseTableColumnOrderIndependent(t *testing.T) {
	input := "replacement,original\nss,ß\n"

	table, err := ParseTable(strings.NewReader(input), SpecialCharactersSource)
	require.NoError(t, err)

	v, ok := table.Lookup("ß")
	require.True(t, ok)
	assert.Equal(t, "ss", v)
}

func TestParseTableMissingColumn(t *testing.T) {
	_, err := ParseTable(strings.NewReader("article,other\nder,<<Der>>\n"), ArticlesSource)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingColumn))
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeMapping(t, dir, "mapping_949v.csv", "264$b,949$v\nSpringer,SPR\n")
	writeMapping(t, dir, "mapping_articles.csv", "article,formatted_article\nder,<<Der>>\ndie,<<Die>>\n")
	writeMapping(t, dir, "mapping_949x.csv", "wrong,columns\nE01,X\n")

	tables, warnings := NewLoader(dir).Load()
	require.NotNil(t, tables)

	assert.Equal(t, 1, tables.Publisher.Len())
	assert.Equal(t, 2, tables.Articles.Len())
	assert.Equal(t, 0, tables.SupplierTag.Len(), "bad columns degrade to empty")
	assert.Equal(t, 0, tables.EditionNote.Len(), "missing file degrades to empty")

	// 949d, 949x, 905o, sonderzeichen are missing or broken
	assert.Len(t, warnings, 4)

	code, ok := tables.ShelfCode.Lookup("E03")
	require.True(t, ok, "905$c falls back to the built-in codes")
	assert.Equal(t, "21", code)
}

func TestLoadShelfCodeOverride(t *testing.T) {
	dir := t.TempDir()
	writeMapping(t, dir, "mapping_905c.csv", "905$n,905$c\nE01,07\n")

	tables, _ := NewLoader(dir).Load()

	code, ok := tables.ShelfCode.Lookup("E01")
	require.True(t, ok)
	assert.Equal(t, "07", code)

	_, ok = tables.ShelfCode.Lookup("E03")
	assert.False(t, ok)
}

func TestAllReportsEveryTable(t *testing.T) {
	tables := Empty()
	named := tables.All()
	assert.Len(t, named, 7)
	for _, n := range named {
		assert.NotNil(t, n.Table, n.Source.Name)
	}
}
