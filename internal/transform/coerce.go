// Package transform converts raw string rows into typed values matching the
// inferred schema, and optionally de-duplicates identical rows within a run.
package transform

import (
	"fmt"
	"strconv"
	"strings"

	"csvingest/internal/schema"
)

// CoerceError reports a value that does not conform to its column's inferred
// kind. Line is the 1-based source line (header = 1).
type CoerceError struct {
	Line   int
	Column string
	Value  string
	Kind   schema.Kind
}

func (e *CoerceError) Error() string {
	return fmt.Sprintf("line %d: column %q: value %q does not conform to inferred type %s",
		e.Line, e.Column, e.Value, e.Kind)
}

// Coercer turns positional string rows into typed []any rows aligned with
// Columns. The inferred kind applies uniformly to every row: in strict mode a
// non-conforming value aborts the run with a *CoerceError; in lenient mode the
// cell becomes NULL and is counted in Nulled.
type Coercer struct {
	Columns []schema.Column
	Strict  bool

	// NullTokens are treated as SQL NULL for every kind except text, where
	// only the empty string is NULL. Case-sensitive, matching the source
	// conventions ("null", "NaN").
	NullTokens []string

	// TrueTokens / FalseTokens are accepted (lowercased) for boolean columns.
	TrueTokens  []string
	FalseTokens []string

	// Nulled counts cells nulled by lenient-mode coercion failures.
	Nulled int64
}

// NewCoercer builds a Coercer for cols with the default token sets.
func NewCoercer(cols []schema.Column, strict bool) *Coercer {
	return &Coercer{
		Columns:     cols,
		Strict:      strict,
		NullTokens:  []string{"", "null", "NULL", "NaN"},
		TrueTokens:  []string{"true", "t", "yes", "y", "1"},
		FalseTokens: []string{"false", "f", "no", "n", "0"},
	}
}

// Row coerces one row. len(row) must equal len(c.Columns); the parser
// enforces this before rows reach the coercer.
func (c *Coercer) Row(line int, row []string) ([]any, error) {
	out := make([]any, len(c.Columns))
	for i, col := range c.Columns {
		v, err := c.cell(line, col, row[i])
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (c *Coercer) cell(line int, col schema.Column, raw string) (any, error) {
	if col.Kind == schema.KindText {
		if raw == "" {
			return nil, nil
		}
		return raw, nil
	}

	s := strings.TrimSpace(raw)
	if c.isNull(s) {
		return nil, nil
	}

	switch col.Kind {
	case schema.KindInteger:
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
	case schema.KindReal:
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
	case schema.KindBoolean:
		if b, ok := c.parseBool(s); ok {
			return b, nil
		}
	case schema.KindDate:
		if t, ok := schema.ParseDate(s); ok {
			return t, nil
		}
	case schema.KindTimestamp:
		if t, ok := schema.ParseTimestamp(s); ok {
			return t, nil
		}
		// A date-only value in a timestamp column is still valid: the sample
		// decided timestamp because some values carry a time part.
		if t, ok := schema.ParseDate(s); ok {
			return t, nil
		}
	}

	if c.Strict {
		return nil, &CoerceError{Line: line, Column: col.Name, Value: raw, Kind: col.Kind}
	}
	c.Nulled++
	return nil, nil
}

func (c *Coercer) isNull(s string) bool {
	for _, tok := range c.NullTokens {
		if s == tok {
			return true
		}
	}
	return false
}

func (c *Coercer) parseBool(s string) (bool, bool) {
	ls := strings.ToLower(s)
	for _, tok := range c.TrueTokens {
		if ls == tok {
			return true, true
		}
	}
	for _, tok := range c.FalseTokens {
		if ls == tok {
			return false, true
		}
	}
	return false, false
}
