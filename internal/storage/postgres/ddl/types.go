// Package ddl maps the inferred logical schema to Postgres DDL.
package ddl

import (
	"strings"

	gddl "csvingest/internal/ddl"
	"csvingest/internal/schema"
)

// MapType maps a logical kind to its Postgres SQL type.
func MapType(kind schema.Kind) string {
	switch kind {
	case schema.KindInteger:
		return "BIGINT"
	case schema.KindReal:
		return "DOUBLE PRECISION"
	case schema.KindBoolean:
		return "BOOLEAN"
	case schema.KindDate:
		return "DATE"
	case schema.KindTimestamp:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// Definition converts an inferred table into the generic DDL model. All
// columns are nullable: inference sees only a sample, so stricter constraints
// would reject rows the sample never showed.
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

// CreateSQL renders CREATE TABLE IF NOT EXISTS for t in Postgres dialect.
func CreateSQL(t schema.Table) (string, error) {
	b := gddl.Builder{QuoteIdent: QuoteIdent, IfNotExists: true}
	return b.Build(Definition(t))
}

// QuoteIdent quotes a single identifier segment for Postgres.
func QuoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
