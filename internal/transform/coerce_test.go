package transform

import (
	"errors"
	"testing"
	"time"

	"csvingest/internal/schema"
)

func cols(kinds ...schema.Kind) []schema.Column {
	out := make([]schema.Column, len(kinds))
	for i, k := range kinds {
		out[i] = schema.Column{Name: string(rune('a' + i)), Kind: k}
	}
	return out
}

func TestRow_TypedValues(t *testing.T) {
	t.Parallel()

	c := NewCoercer(cols(
		schema.KindInteger,
		schema.KindReal,
		schema.KindBoolean,
		schema.KindTimestamp,
		schema.KindText,
	), true)

	got, err := c.Row(2, []string{"42", "2.5", "Yes", "2023-01-12T09:14:02Z", "hello"})
	if err != nil {
		t.Fatalf("Row error: %v", err)
	}
	if v, ok := got[0].(int64); !ok || v != 42 {
		t.Fatalf("integer = %#v; want int64(42)", got[0])
	}
	if v, ok := got[1].(float64); !ok || v != 2.5 {
		t.Fatalf("real = %#v; want float64(2.5)", got[1])
	}
	if v, ok := got[2].(bool); !ok || !v {
		t.Fatalf("boolean = %#v; want true", got[2])
	}
	ts, ok := got[3].(time.Time)
	if !ok || !ts.Equal(time.Date(2023, 1, 12, 9, 14, 2, 0, time.UTC)) {
		t.Fatalf("timestamp = %#v", got[3])
	}
	if got[4] != "hello" {
		t.Fatalf("text = %#v; want %q", got[4], "hello")
	}
}

func TestRow_NullTokens(t *testing.T) {
	t.Parallel()

	c := NewCoercer(cols(schema.KindInteger, schema.KindReal, schema.KindText), true)
	got, err := c.Row(2, []string{"null", "NaN", ""})
	if err != nil {
		t.Fatalf("Row error: %v", err)
	}
	for i, v := range got {
		if v != nil {
			t.Fatalf("value %d = %#v; want nil", i, v)
		}
	}
}

func TestRow_StrictMismatch(t *testing.T) {
	t.Parallel()

	c := NewCoercer(cols(schema.KindInteger), true)
	_, err := c.Row(7, []string{"x"})

	var ce *CoerceError
	if !errors.As(err, &ce) {
		t.Fatalf("Row error = %v; want *CoerceError", err)
	}
	if ce.Line != 7 || ce.Column != "a" || ce.Value != "x" || ce.Kind != schema.KindInteger {
		t.Fatalf("CoerceError = %+v", ce)
	}
}

func TestRow_LenientNullsAndCounts(t *testing.T) {
	t.Parallel()

	c := NewCoercer(cols(schema.KindInteger, schema.KindInteger), false)
	got, err := c.Row(2, []string{"x", "3"})
	if err != nil {
		t.Fatalf("Row error: %v", err)
	}
	if got[0] != nil {
		t.Fatalf("lenient bad cell = %#v; want nil", got[0])
	}
	if v := got[1].(int64); v != 3 {
		t.Fatalf("good cell = %#v; want 3", got[1])
	}
	if c.Nulled != 1 {
		t.Fatalf("Nulled = %d; want 1", c.Nulled)
	}
}

// A date-only value must still coerce in a timestamp column: the sample
// decided timestamp because some other value carried a time part.
func TestRow_DateOnlyInTimestampColumn(t *testing.T) {
	t.Parallel()

	c := NewCoercer(cols(schema.KindTimestamp), true)
	got, err := c.Row(2, []string{"2023-05-01"})
	if err != nil {
		t.Fatalf("Row error: %v", err)
	}
	if _, ok := got[0].(time.Time); !ok {
		t.Fatalf("value = %#v; want time.Time", got[0])
	}
}
