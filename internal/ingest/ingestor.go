// Package ingest implements the CSV-to-table loader: it samples the source
// to infer a column schema, ensures a matching table exists in the target
// database, and streams every data row into it.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"csvingest/internal/config"
	"csvingest/internal/datasource/file"
	"csvingest/internal/metrics"
	csvparser "csvingest/internal/parser/csv"
	"csvingest/internal/schema"
	"csvingest/internal/storage"
	"csvingest/internal/transform"
)

// ErrEmptySource is returned when the input file holds no header row; no
// table is created in that case because there is nothing to infer a schema
// from.
var ErrEmptySource = errors.New("ingest: source file has no header row")

// Result summarizes a completed run.
type Result struct {
	// Table is the destination table name.
	Table string
	// Columns is the inferred schema, in header order.
	Columns []schema.Column
	// Inserted is the number of rows written to the table.
	Inserted int64
	// Parsed is the number of well-formed data rows read.
	Parsed int64
	// Skipped counts malformed or misaligned rows dropped by the parser.
	Skipped int64
	// Nulled counts cells nulled by lenient-mode coercion.
	Nulled int64
	// Deduped counts rows dropped by opt-in de-duplication.
	Deduped int64
	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Ingestor performs one load per call. The zero value is not usable; build
// it with New, which applies the config defaults.
type Ingestor struct {
	cfg config.Config
}

// New returns an Ingestor for cfg with defaults applied.
func New(cfg config.Config) *Ingestor {
	return &Ingestor{cfg: cfg.Normalized()}
}

// Load runs the full ingest: sample → infer → ensure table → stream rows.
//
// Error contract:
//   - a missing input file satisfies errors.Is(err, os.ErrNotExist) and the
//     database is never touched;
//   - an empty input file returns ErrEmptySource before any table exists;
//   - an unreachable database or bad credentials fail at connect, before DDL;
//   - in strict mode (the default) a value that does not conform to its
//     column's inferred type aborts the run with a *transform.CoerceError.
//
// The run is fail-fast with no retries; batches committed before a failure
// remain in the table. The repository and source file are released on every
// exit path.
func (ing *Ingestor) Load(ctx context.Context) (Result, error) {
	cfg := ing.cfg
	start := time.Now()
	res := Result{Table: cfg.Storage.Table}

	src := file.NewLocal(cfg.Source.Path)
	parser := csvparser.NewParser(csvparser.Options{
		Comma:     csvparser.DecodeDelimiter(cfg.Source.Delimiter),
		TrimSpace: cfg.Source.TrimSpace,
	})

	// Sample the file and infer the schema.
	table, err := ing.sample(ctx, src, parser)
	metrics.RecordStep("sample", err, time.Since(start))
	if err != nil {
		return res, err
	}
	res.Columns = table.Columns
	log.Printf("inferred schema for %s: %d columns from header", table.Name, len(table.Columns))

	// Connect; an unreachable database fails here, before any DDL runs.
	repo, closeRepo, err := storage.New(ctx, storage.Config{
		Kind:  cfg.Storage.Kind,
		DSN:   cfg.DSN(),
		Table: cfg.Storage.Table,
	})
	if err != nil {
		return res, err
	}
	defer closeRepo()

	ddlStart := time.Now()
	err = repo.EnsureTable(ctx, table)
	metrics.RecordStep("ddl", err, time.Since(ddlStart))
	if err != nil {
		return res, fmt.Errorf("ensure table %s: %w", table.Name, err)
	}

	loadStart := time.Now()
	err = ing.stream(ctx, src, parser, table, repo, &res)
	metrics.RecordStep("load", err, time.Since(loadStart))

	res.Elapsed = time.Since(start)
	metrics.RecordRows("parsed", res.Parsed)
	metrics.RecordRows("skipped", res.Skipped)
	metrics.RecordRows("nulled", res.Nulled)
	metrics.RecordRows("deduped", res.Deduped)
	metrics.RecordRows("inserted", res.Inserted)
	if err != nil {
		return res, err
	}

	log.Printf("done: table=%s inserted=%d parsed=%d skipped=%d elapsed=%s",
		res.Table, res.Inserted, res.Parsed, res.Skipped, res.Elapsed.Truncate(time.Millisecond))
	return res, nil
}

// sample reads a bounded prefix of the source and infers the destination
// schema from it.
func (ing *Ingestor) sample(ctx context.Context, src *file.Local, parser *csvparser.Parser) (schema.Table, error) {
	rc, err := src.Open(ctx)
	if err != nil {
		return schema.Table{}, err
	}
	defer rc.Close()

	headers, rows, err := parser.Sample(rc, ing.cfg.Runtime.SampleRows)
	if err != nil {
		if errors.Is(err, csvparser.ErrNoHeader) {
			return schema.Table{}, fmt.Errorf("%w: %s", ErrEmptySource, src.Path())
		}
		return schema.Table{}, fmt.Errorf("sample %s: %w", src.Path(), err)
	}
	return schema.Infer(ing.cfg.Storage.Table, headers, rows), nil
}

// stream re-reads the source and pushes coerced rows through the batched
// loader. The parser/coercer stage and the database writer overlap over a
// bounded channel; the first failure on either side cancels the other.
func (ing *Ingestor) stream(
	ctx context.Context,
	src *file.Local,
	parser *csvparser.Parser,
	table schema.Table,
	repo storage.Repository,
	res *Result,
) error {
	coercer := transform.NewCoercer(table.Columns, !ing.cfg.Lenient)
	var dedup *transform.DeDup
	if ing.cfg.Dedupe {
		dedup = transform.NewDeDup()
	}

	rowCh := make(chan []any, ing.cfg.Runtime.ChannelBuffer)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(rowCh)

		rc, err := src.Open(ctx)
		if err != nil {
			return err
		}
		defer rc.Close()

		stats, err := parser.Stream(ctx, rc, func(line int, row []string) error {
			typed, err := coercer.Row(line, row)
			if err != nil {
				return err
			}
			if dedup != nil && dedup.Seen(typed) {
				return nil
			}
			select {
			case rowCh <- typed:
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		})
		res.Parsed = stats.Rows
		res.Skipped = stats.Skipped
		res.Nulled = coercer.Nulled
		if dedup != nil {
			res.Deduped = dedup.Dropped
		}
		return err
	})

	g.Go(func() error {
		n, err := storage.LoadBatches(ctx, table.ColumnNames(), rowCh, ing.cfg.Runtime.BatchSize, repo.CopyFrom)
		res.Inserted = n
		return err
	})

	return g.Wait()
}
