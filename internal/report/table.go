package report

import (
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lehigh-university-libraries/ordersheet/internal/mappings"
	"github.com/lehigh-university-libraries/ordersheet/internal/processing"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i := 0; i < columns; i++ {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// RenderSummary renders the run statistics as a console table
func RenderSummary(o *processing.Outcome) string {
	rows := [][]string{
		{"Input files", strconv.Itoa(len(o.Inputs))},
	}
	if o.Table != nil {
		rows = append(rows, []string{"Rows", strconv.Itoa(o.Table.Len())})
	}
	if o.DuplicatesRun {
		rows = append(rows,
			[]string{"Checked", strconv.Itoa(o.Stats.Checked)},
			[]string{"Duplicates", strconv.Itoa(o.Stats.Duplicates)},
			[]string{"Check errors", strconv.Itoa(o.Stats.Errors)},
			[]string{"Skipped", strconv.Itoa(o.Stats.Skipped)},
		)
	}
	rows = append(rows,
		[]string{"Row errors", strconv.Itoa(len(o.RowErrors))},
		[]string{"Mapping warnings", strconv.Itoa(len(o.MappingWarnings))},
	)
	if o.Artifact != "" {
		rows = append(rows, []string{"Artifact", o.Artifact})
	}

	return renderTable([]string{"Run", "Value"}, rows, []columnAlignment{alignLeft, alignRight})
}

// RenderMappings renders one line per mapping table
func RenderMappings(tables *mappings.Tables, warnings []error) string {
	rows := make([][]string, 0, 7)
	for _, n := range tables.All() {
		status := "ok"
		for _, w := range warnings {
			if strings.HasPrefix(w.Error(), "mapping "+n.Source.Name+":") {
				status = "degraded"
				break
			}
		}
		if n.Source == mappings.ShelfCodeSource && status == "ok" && n.Table.Len() > 0 {
			if isDefaultShelfCodes(n.Table) {
				status = "built-in"
			}
		}
		rows = append(rows, []string{
			n.Source.Name,
			n.Source.File,
			n.Source.KeyColumn + " -> " + n.Source.ValueColumn,
			strconv.Itoa(n.Table.Len()),
			status,
		})
	}
	return renderTable(
		[]string{"Table", "File", "Columns", "Entries", "Status"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	)
}

// RenderEntries renders the key/value pairs of one mapping table
func RenderEntries(src mappings.Source, t *mappings.Table) string {
	entries := t.Entries()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Key, e.Value})
	}
	return renderTable([]string{src.KeyColumn, src.ValueColumn}, rows, nil)
}

func isDefaultShelfCodes(t *mappings.Table) bool {
	defaults := mappings.DefaultShelfCodes().Entries()
	entries := t.Entries()
	if len(entries) != len(defaults) {
		return false
	}
	for i := range entries {
		if entries[i] != defaults[i] {
			return false
		}
	}
	return true
}
