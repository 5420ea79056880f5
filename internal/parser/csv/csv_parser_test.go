package csv

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSample_HeaderAndRows(t *testing.T) {
	t.Parallel()

	in := "\uFEFF id , name \n1,Alice\n2,Bob\n"
	p := NewParser(Options{})

	headers, rows, err := p.Sample(strings.NewReader(in), 10)
	if err != nil {
		t.Fatalf("Sample error: %v", err)
	}
	if got := strings.Join(headers, "|"); got != "id|name" {
		t.Fatalf("headers = %q; want %q", got, "id|name")
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d; want 2", len(rows))
	}
	if rows[0][1] != "Alice" || rows[1][0] != "2" {
		t.Fatalf("rows = %v", rows)
	}
}

func TestSample_SkipsMisalignedRowsAndHonorsLimit(t *testing.T) {
	t.Parallel()

	in := "a,b,c\n1,2,3\n4,5\n6,7,8\n9,10,11\n"
	p := NewParser(Options{})

	_, rows, err := p.Sample(strings.NewReader(in), 2)
	if err != nil {
		t.Fatalf("Sample error: %v", err)
	}
	// The short row is dropped; the limit caps well-formed rows at 2.
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d; want 2", len(rows))
	}
	for i, r := range rows {
		if len(r) != 3 {
			t.Fatalf("row %d width = %d; want 3", i, len(r))
		}
	}
}

func TestSample_EmptyInput(t *testing.T) {
	t.Parallel()

	p := NewParser(Options{})
	if _, _, err := p.Sample(strings.NewReader(""), 10); !errors.Is(err, ErrNoHeader) {
		t.Fatalf("Sample error = %v; want ErrNoHeader", err)
	}
}

func TestStream_LinesAndSkips(t *testing.T) {
	t.Parallel()

	in := "id,name\n1,Alice\nonly_one_field\n2,Bob\n"
	p := NewParser(Options{})

	type seen struct {
		line int
		row  string
	}
	var got []seen
	st, err := p.Stream(context.Background(), strings.NewReader(in), func(line int, row []string) error {
		got = append(got, seen{line, strings.Join(row, ",")})
		return nil
	})
	if err != nil {
		t.Fatalf("Stream error: %v", err)
	}
	if st.Rows != 2 || st.Skipped != 1 {
		t.Fatalf("stats = %+v; want Rows=2 Skipped=1", st)
	}
	// Line numbers are 1-based with the header on line 1.
	want := []seen{{2, "1,Alice"}, {4, "2,Bob"}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("row %d = %+v; want %+v", i, got[i], want[i])
		}
	}
}

// A quoted field spanning multiple lines must not shift the reported line of
// the rows that follow it.
func TestStream_QuotedNewlineKeepsLineNumbers(t *testing.T) {
	t.Parallel()

	in := "id,note\n1,\"a\nb\"\n2,plain\n"
	p := NewParser(Options{})

	var lines []int
	_, err := p.Stream(context.Background(), strings.NewReader(in), func(line int, _ []string) error {
		lines = append(lines, line)
		return nil
	})
	if err != nil {
		t.Fatalf("Stream error: %v", err)
	}
	// Row one starts on line 2 and spans lines 2-3; row two starts on line 4.
	if len(lines) != 2 || lines[0] != 2 || lines[1] != 4 {
		t.Fatalf("lines = %v; want [2 4]", lines)
	}
}

func TestStream_FnErrorAborts(t *testing.T) {
	t.Parallel()

	in := "id\n1\n2\n3\n"
	p := NewParser(Options{})
	boom := errors.New("boom")

	calls := 0
	_, err := p.Stream(context.Background(), strings.NewReader(in), func(int, []string) error {
		calls++
		if calls == 2 {
			return boom
		}
		return nil
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Stream error = %v; want boom", err)
	}
	if calls != 2 {
		t.Fatalf("calls = %d; want 2", calls)
	}
}

func TestStream_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewParser(Options{})
	_, err := p.Stream(ctx, strings.NewReader("id\n1\n"), func(int, []string) error { return nil })
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Stream error = %v; want context.Canceled", err)
	}
}

func TestTrimSpaceOption(t *testing.T) {
	t.Parallel()

	in := "id,name\n1, Alice \n"
	p := NewParser(Options{TrimSpace: true})
	_, rows, err := p.Sample(strings.NewReader(in), 10)
	if err != nil {
		t.Fatalf("Sample error: %v", err)
	}
	if rows[0][1] != "Alice" {
		t.Fatalf("value = %q; want %q", rows[0][1], "Alice")
	}
}

func TestDecodeDelimiter(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want rune
	}{
		{"", ','},
		{",", ','},
		{";", ';'},
		{"\\t", '\t'},
		{"\t", '\t'},
		{"|x", '|'},
	}
	for _, c := range cases {
		if got := DecodeDelimiter(c.in); got != c.want {
			t.Fatalf("DecodeDelimiter(%q) = %q; want %q", c.in, got, c.want)
		}
	}
}
