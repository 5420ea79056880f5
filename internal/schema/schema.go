// Package schema models the inferred shape of a delimited source: an ordered
// list of columns, each with a logical kind chosen by inspecting sampled
// values. Backends map logical kinds to their SQL dialect's types.
package schema

// Kind is a logical column type. The set is closed; storage backends are
// expected to handle every member.
type Kind string

const (
	KindInteger   Kind = "integer"
	KindReal      Kind = "real"
	KindBoolean   Kind = "boolean"
	KindDate      Kind = "date"
	KindTimestamp Kind = "timestamp"
	KindText      Kind = "text"
)

// Column pairs a canonical (normalized) column name with its inferred kind.
// Source preserves the original header cell for diagnostics.
type Column struct {
	Name   string
	Kind   Kind
	Source string
}

// Table is an ordered column list for a destination table. Column order
// follows the source header's left-to-right order.
type Table struct {
	Name    string
	Columns []Column
}

// ColumnNames returns the canonical column names in table order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Kinds returns a name→kind lookup for the table's columns.
func (t Table) Kinds() map[string]Kind {
	m := make(map[string]Kind, len(t.Columns))
	for _, c := range t.Columns {
		m[c.Name] = c.Kind
	}
	return m
}
