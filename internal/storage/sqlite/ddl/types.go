// Package ddl maps the inferred logical schema to SQLite DDL.
package ddl

import (
	"strings"

	gddl "csvingest/internal/ddl"
	"csvingest/internal/schema"
)

// MapType maps a logical kind to a SQLite type affinity. SQLite has no native
// boolean or date types; INTEGER holds 0/1 booleans and TEXT holds temporal
// values in their formatted form.
func MapType(kind schema.Kind) string {
	switch kind {
	case schema.KindInteger, schema.KindBoolean:
		return "INTEGER"
	case schema.KindReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// Definition converts an inferred table into the generic DDL model with all
// columns nullable, matching the other backends.
func Definition(t schema.Table) gddl.TableDef {
	cols := make([]gddl.ColumnDef, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = gddl.ColumnDef{
			Name:     c.Name,
			SQLType:  MapType(c.Kind),
			Nullable: true,
		}
	}
	return gddl.TableDef{FQN: t.Name, Columns: cols}
}

// CreateSQL renders CREATE TABLE IF NOT EXISTS for t in SQLite dialect.
func CreateSQL(t schema.Table) (string, error) {
	b := gddl.Builder{QuoteIdent: QuoteIdent, IfNotExists: true}
	return b.Build(Definition(t))
}

// QuoteIdent quotes a single identifier segment for SQLite.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
