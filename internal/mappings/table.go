package mappings

import "strings"

// Entry is one key/value pair of a mapping table.
type Entry struct {
	Key   string
	Value string
}

// Table is an ordered, read-only key/value lookup table.
// Iteration follows load order; a repeated key keeps its first position and its last value.
type Table struct {
	entries []Entry
	index   map[string]int
}

// NewTable builds a table from entries in order.
func NewTable(entries ...Entry) *Table {
	t := &Table{index: make(map[string]int, len(entries))}
	for _, e := range entries {
		if i, ok := t.index[e.Key]; ok {
			t.entries[i].Value = e.Value
			continue
		}
		t.index[e.Key] = len(t.entries)
		t.entries = append(t.entries, e)
	}
	return t
}

// Len returns the number of distinct keys.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the entries in table order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Lookup performs an exact-match lookup.
func (t *Table) Lookup(key string) (string, bool) {
	if t == nil {
		return "", false
	}
	i, ok := t.index[key]
	if !ok {
		return "", false
	}
	return t.entries[i].Value, true
}

// FirstContained returns the value of the first key, in table order,
// that occurs as a substring of text.
func (t *Table) FirstContained(text string) (string, bool) {
	if t == nil {
		return "", false
	}
	for _, e := range t.entries {
		if strings.Contains(text, e.Key) {
			return e.Value, true
		}
	}
	return "", false
}
