package schema

import (
	"strconv"
	"strings"
	"time"
)

// Infer builds a Table from a header row and a bounded sample of data rows.
// One kind is chosen per column and applies uniformly to every row the
// ingestor later writes; the loader enforces conformance at coercion time.
//
// Heuristic: all non-empty trimmed values in the sample must satisfy the
// narrower kind, with precedence integer → boolean → real → date/timestamp.
// Anything else, including a column whose sample is entirely empty, is text.
func Infer(tableName string, headers []string, sample [][]string) Table {
	cols := make([][]string, len(headers))
	for _, row := range sample {
		for i := 0; i < len(headers) && i < len(row); i++ {
			cols[i] = append(cols[i], row[i])
		}
	}

	out := Table{Name: tableName, Columns: make([]Column, len(headers))}
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		name := NormalizeFieldName(h)
		// Duplicate headers get a positional suffix so DDL stays valid. The
		// suffixed name is re-checked: a header may itself be "x_2".
		for base, n := name, 2; seen[name]; n++ {
			name = base + "_" + strconv.Itoa(n)
		}
		seen[name] = true

		out.Columns[i] = Column{
			Name:   name,
			Kind:   inferKind(cols[i]),
			Source: h,
		}
	}
	return out
}

// inferKind guesses a logical kind for one column's sampled values.
func inferKind(values []string) Kind {
	nonEmpty := nonEmptyTrimmed(values)
	if len(nonEmpty) == 0 {
		return KindText
	}
	if allMatch(nonEmpty, isInt) {
		return KindInteger
	}
	if allMatch(nonEmpty, isBool) {
		return KindBoolean
	}
	if allMatch(nonEmpty, isFloat) {
		return KindReal
	}

	// Dates vs timestamps: timestamp wins when any value carries a time part.
	allTemporal := true
	anyTime := false
	for _, v := range nonEmpty {
		ok, hasTime := isTemporal(v)
		if !ok {
			allTemporal = false
			break
		}
		if hasTime {
			anyTime = true
		}
	}
	if allTemporal {
		if anyTime {
			return KindTimestamp
		}
		return KindDate
	}
	return KindText
}

func nonEmptyTrimmed(vals []string) []string {
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		v = strings.TrimSpace(v)
		if v != "" {
			out = append(out, v)
		}
	}
	return out
}

func allMatch(vals []string, fn func(string) bool) bool {
	for _, v := range vals {
		if !fn(v) {
			return false
		}
	}
	return true
}

// isBool accepts common textual booleans and 1/0.
func isBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "false", "t", "f", "yes", "no", "y", "n", "1", "0":
		return true
	default:
		return false
	}
}

// isInt requires a signed base-10 integer that fits in int64.
func isInt(s string) bool {
	_, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	return err == nil
}

// isFloat accepts decimal or scientific notation, integers included; the
// integer check runs first, so all-integer columns never reach it.
func isFloat(s string) bool {
	_, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return err == nil
}

// isTemporal reports whether s matches a known timestamp or date layout and
// whether a time component was present.
func isTemporal(s string) (ok, hasTime bool) {
	if _, ok := ParseTimestamp(s); ok {
		return true, true
	}
	if _, ok := ParseDate(s); ok {
		return true, false
	}
	return false, false
}

// dateLayouts are common date formats (no time component).
var dateLayouts = []string{
	"2006-01-02", // ISO
	"02.01.2006", // DMY dot
	"01.02.2006", // MDY dot
	"02/01/2006", // DMY slash
	"01/02/2006", // MDY slash
	"2 Jan 2006",
	"02-Jan-2006",
	"2006/01/02",
	"20060102",
}

// timestampLayouts are common timestamp formats (with time component).
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006/01/02 15:04:05",
	"02/01/2006 15:04:05", // DMY
	"01/02/2006 15:04:05", // MDY
	"2006-01-02T15:04:05Z0700",
	"2006-01-02 15:04:05 -0700",
}

// ParseDate parses s against the known date layouts.
func ParseDate(s string) (time.Time, bool) {
	st := strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, st); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseTimestamp parses s against the known timestamp layouts.
func ParseTimestamp(s string) (time.Time, bool) {
	st := strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, st); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
