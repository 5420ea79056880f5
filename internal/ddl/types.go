// Package ddl defines a small, backend-agnostic model for table definitions
// and a deterministic CREATE TABLE renderer. Dialect differences (type names,
// identifier quoting) are injected by the storage backends.
package ddl

// ColumnDef describes a single column in a rendered table definition.
type ColumnDef struct {
	// Name is the logical column name; quoting happens at render time.
	Name string
	// SQLType is the dialect's type name, e.g. TEXT, BIGINT, TIMESTAMPTZ.
	SQLType string
	// Nullable controls the NOT NULL clause.
	Nullable bool
	// PrimaryKey marks the column as part of the table's primary key.
	PrimaryKey bool
	// Default is a raw default expression emitted verbatim.
	Default string
}

// TableDef holds a possibly schema-qualified table name in dotted form
// (e.g. "public.users") and an ordered column list.
type TableDef struct {
	FQN     string
	Columns []ColumnDef
}
