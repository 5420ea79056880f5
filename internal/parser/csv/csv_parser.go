// Package csv implements a streaming CSV parser for the ingestor. It never
// buffers the whole input, tolerates real-world quoting oddities via lazy
// quotes, and enforces a fixed row width derived from the header so that
// downstream stages can rely on positional alignment with the schema.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log"
	"strings"
)

// ErrNoHeader is returned when the input ends before a usable header row.
var ErrNoHeader = errors.New("csv: no header row")

// Options configures parsing. All fields are optional; zero values get
// sensible defaults.
type Options struct {
	// Comma is the field delimiter; ',' when zero.
	Comma rune

	// TrimSpace trims leading/trailing ASCII spaces from each field value.
	TrimSpace bool

	// MaxSkipLogged caps how many skipped-row log lines are emitted; further
	// skips are only counted. Defaults to 100.
	MaxSkipLogged int
}

// Parser parses CSV input according to Options. A Parser is safe to reuse
// across inputs but is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser {
	if opt.Comma == 0 {
		opt.Comma = ','
	}
	if opt.MaxSkipLogged == 0 {
		opt.MaxSkipLogged = 100
	}
	return &Parser{opt: opt}
}

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\uFEFF"

// Stats summarizes one parsing pass.
type Stats struct {
	// Rows is the number of data rows delivered.
	Rows int64
	// Skipped counts rows dropped for parse errors or width mismatches.
	Skipped int64
}

// Sample reads the header plus up to maxRows data rows, skipping malformed
// or misaligned rows so type inference sees only well-formed data. It returns
// ErrNoHeader when the input has no usable header line.
func (p *Parser) Sample(r io.Reader, maxRows int) (headers []string, rows [][]string, err error) {
	cr := p.newReader(r)

	headers, err = p.readHeader(cr)
	if err != nil {
		return nil, nil, err
	}

	want := len(headers)
	for maxRows <= 0 || len(rows) < maxRows {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil || len(rec) != want {
			// Misaligned sample rows would skew inference; drop them here the
			// same way Stream drops them during the load pass.
			continue
		}
		rows = append(rows, p.trim(rec))
	}
	return headers, rows, nil
}

// Stream reads the header and then invokes fn for every well-formed data row,
// in input order. line is the 1-based line on which the row starts (header =
// 1), taken from the reader's field positions so quoted fields spanning
// multiple lines do not drift the numbering. An error from fn aborts the pass
// and is returned as-is; rows that fail to parse or have the wrong width are
// skipped and counted.
func (p *Parser) Stream(ctx context.Context, r io.Reader, fn func(line int, row []string) error) (Stats, error) {
	cr := p.newReader(r)

	headers, err := p.readHeader(cr)
	if err != nil {
		return Stats{}, err
	}
	want := len(headers)

	var st Stats
	for {
		if err := ctx.Err(); err != nil {
			return st, err
		}
		rec, err := cr.Read()
		if err == io.EOF {
			return st, nil
		}
		if err != nil {
			// The csv error already names its line.
			p.logSkip(st.Skipped, "skipping record: %v", err)
			st.Skipped++
			continue
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != want {
			p.logSkip(st.Skipped, "skipping line %d: %d fields, header has %d", line, len(rec), want)
			st.Skipped++
			continue
		}
		if err := fn(line, p.trim(rec)); err != nil {
			return st, err
		}
		st.Rows++
	}
}

func (p *Parser) newReader(r io.Reader) *csv.Reader {
	cr := csv.NewReader(r)
	cr.Comma = p.opt.Comma
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1 // width is enforced after read, against the header
	return cr
}

// readHeader skips malformed or empty lines until a usable header row.
func (p *Parser) readHeader(cr *csv.Reader) ([]string, error) {
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil, ErrNoHeader
		}
		if err != nil || len(rec) == 0 {
			continue
		}
		rec[0] = strings.TrimPrefix(rec[0], utf8BOM)
		for i, h := range rec {
			rec[i] = strings.TrimSpace(h)
		}
		return rec, nil
	}
}

func (p *Parser) trim(rec []string) []string {
	if !p.opt.TrimSpace {
		return rec
	}
	for i, v := range rec {
		rec[i] = strings.TrimSpace(v)
	}
	return rec
}

func (p *Parser) logSkip(skipped int64, format string, args ...any) {
	if skipped < int64(p.opt.MaxSkipLogged) {
		log.Printf(format, args...)
	} else if skipped == int64(p.opt.MaxSkipLogged) {
		log.Printf("further skipped rows suppressed after %d", p.opt.MaxSkipLogged)
	}
}

// DecodeDelimiter converts a user-supplied delimiter string into a rune,
// accepting the literal "\t" for tabs and defaulting to ','.
func DecodeDelimiter(s string) rune {
	switch s {
	case "", ",":
		return ','
	case "\\t", "\t":
		return '\t'
	default:
		for _, r := range s {
			return r
		}
		return ','
	}
}
