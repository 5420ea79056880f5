package ddl

import (
	"fmt"
	"strings"
)

// Builder renders CREATE TABLE statements for one SQL dialect.
//
// The zero value emits identifiers verbatim and a plain CREATE TABLE; storage
// backends construct a Builder with their own quoting rule and, since every
// supported dialect accepts it, IfNotExists set.
type Builder struct {
	// QuoteIdent quotes a single identifier segment. When nil, identifiers
	// are emitted as-is.
	QuoteIdent func(string) string

	// IfNotExists adds the IF NOT EXISTS clause so repeated runs against an
	// existing table do not fail.
	IfNotExists bool
}

// Build renders a CREATE TABLE statement from a TableDef.
//
// Each column is rendered as
//
//	<name> <type> [NOT NULL] [DEFAULT <expr>]
//
// and columns with PrimaryKey set are collected into a trailing
// PRIMARY KEY (...) clause. Default expressions are emitted as raw SQL; the
// caller is responsible for their dialect correctness.
func (b Builder) Build(t TableDef) (string, error) {
	fqn := strings.TrimSpace(t.FQN)
	if fqn == "" {
		return "", fmt.Errorf("ddl: table name must not be empty")
	}
	if len(t.Columns) == 0 {
		return "", fmt.Errorf("ddl: table %s has no columns", fqn)
	}

	cols := make([]string, 0, len(t.Columns)+1)
	pks := make([]string, 0, len(t.Columns))

	for _, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", fmt.Errorf("ddl: column with empty name in table %s", fqn)
		}
		typ := strings.TrimSpace(c.SQLType)
		if typ == "" {
			return "", fmt.Errorf("ddl: column %s missing SQL type", name)
		}

		var sb strings.Builder
		sb.WriteString(b.quote(name))
		sb.WriteByte(' ')
		sb.WriteString(typ)
		if !c.Nullable {
			sb.WriteString(" NOT NULL")
		}
		if def := strings.TrimSpace(c.Default); def != "" {
			sb.WriteString(" DEFAULT ")
			sb.WriteString(def)
		}
		cols = append(cols, sb.String())

		if c.PrimaryKey {
			pks = append(pks, b.quote(name))
		}
	}

	if len(pks) > 0 {
		cols = append(cols, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(pks, ", ")))
	}

	create := "CREATE TABLE"
	if b.IfNotExists {
		create = "CREATE TABLE IF NOT EXISTS"
	}
	stmt := fmt.Sprintf(
		"%s %s (\n  %s\n);",
		create,
		b.quoteFQN(fqn),
		strings.Join(cols, ",\n  "),
	)
	return stmt, nil
}

func (b Builder) quote(ident string) string {
	if b.QuoteIdent == nil {
		return ident
	}
	return b.QuoteIdent(ident)
}

// quoteFQN quotes each dot-separated segment of a qualified name.
func (b Builder) quoteFQN(fqn string) string {
	if b.QuoteIdent == nil {
		return fqn
	}
	parts := strings.Split(fqn, ".")
	for i, p := range parts {
		parts[i] = b.QuoteIdent(p)
	}
	return strings.Join(parts, ".")
}
