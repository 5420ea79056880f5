package ingest

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"csvingest/internal/config"
	"csvingest/internal/schema"
	"csvingest/internal/transform"

	_ "csvingest/internal/storage/sqlite"
)

func writeCSV(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "people.csv")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sqliteConfig(t *testing.T, csvPath string) config.Config {
	t.Helper()
	return config.Config{
		Source: config.Source{Path: csvPath},
		Storage: config.Storage{
			Kind: "sqlite",
			DB:   config.DB{DSN: filepath.Join(t.TempDir(), "out.db")},
		},
	}
}

func countRows(t *testing.T, dsn, table string) int {
	t.Helper()
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "` + table + `"`).Scan(&n); err != nil {
		t.Fatalf("count %s: %v", table, err)
	}
	return n
}

func TestLoad_EndToEnd(t *testing.T) {
	t.Parallel()

	csvPath := writeCSV(t, "id,name,age\n1,alice,30\n2,bob,25\n3,carol,41\n4,dave,19\n")
	cfg := sqliteConfig(t, csvPath)

	res, err := New(cfg).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if res.Table != "people" {
		t.Fatalf("Table = %q; want people (derived from file name)", res.Table)
	}
	if res.Inserted != 4 || res.Parsed != 4 || res.Skipped != 0 {
		t.Fatalf("result = %+v; want 4 inserted, 4 parsed, 0 skipped", res)
	}

	wantKinds := []schema.Kind{schema.KindInteger, schema.KindText, schema.KindInteger}
	for i, col := range res.Columns {
		if col.Kind != wantKinds[i] {
			t.Errorf("column %s kind = %s; want %s", col.Name, col.Kind, wantKinds[i])
		}
	}

	if n := countRows(t, cfg.Storage.DB.DSN, "people"); n != 4 {
		t.Fatalf("table holds %d rows; want 4", n)
	}
}

func TestLoad_TemporalAndBooleanColumns(t *testing.T) {
	t.Parallel()

	csvPath := writeCSV(t, "id,active,born,seen\n"+
		"1,true,1990-01-02,2023-01-12T09:14:02Z\n"+
		"2,false,1985-07-30,2023-02-03 17:40:11\n")
	cfg := sqliteConfig(t, csvPath)

	res, err := New(cfg).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if res.Inserted != 2 {
		t.Fatalf("inserted = %d; want 2", res.Inserted)
	}
	wantKinds := []schema.Kind{
		schema.KindInteger, schema.KindBoolean, schema.KindDate, schema.KindTimestamp,
	}
	for i, col := range res.Columns {
		if col.Kind != wantKinds[i] {
			t.Errorf("column %s kind = %s; want %s", col.Name, col.Kind, wantKinds[i])
		}
	}

	db, err := sql.Open("sqlite", cfg.Storage.DB.DSN)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var active int
	if err := db.QueryRow(`SELECT "active" FROM "people" WHERE "id" = 1`).Scan(&active); err != nil {
		t.Fatal(err)
	}
	if active != 1 {
		t.Fatalf("active = %d; want 1 (true stored as integer)", active)
	}
}

func TestLoad_RerunAppends(t *testing.T) {
	t.Parallel()

	csvPath := writeCSV(t, "id,name\n1,alice\n2,bob\n")
	cfg := sqliteConfig(t, csvPath)

	for i := 0; i < 2; i++ {
		if _, err := New(cfg).Load(context.Background()); err != nil {
			t.Fatalf("run %d: %v", i+1, err)
		}
	}
	// No primary key and no dedupe: the second run appends duplicates.
	if n := countRows(t, cfg.Storage.DB.DSN, "people"); n != 4 {
		t.Fatalf("table holds %d rows after two runs; want 4", n)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	cfg := sqliteConfig(t, filepath.Join(t.TempDir(), "nope.csv"))
	_, err := New(cfg).Load(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Load error = %v; want os.ErrNotExist", err)
	}
	if _, statErr := os.Stat(cfg.Storage.DB.DSN); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("database file created for a missing source")
	}
}

func TestLoad_EmptyFile(t *testing.T) {
	t.Parallel()

	csvPath := writeCSV(t, "")
	cfg := sqliteConfig(t, csvPath)

	_, err := New(cfg).Load(context.Background())
	if !errors.Is(err, ErrEmptySource) {
		t.Fatalf("Load error = %v; want ErrEmptySource", err)
	}
}

func TestLoad_StrictCoercionFails(t *testing.T) {
	t.Parallel()

	// The sample sees only integer ages; the value past the sample window
	// then violates the inferred type and aborts the run.
	csvPath := writeCSV(t, "id,age\n1,30\n2,25\n3,unknown\n")
	cfg := sqliteConfig(t, csvPath)
	cfg.Runtime.SampleRows = 2

	_, err := New(cfg).Load(context.Background())
	var ce *transform.CoerceError
	if !errors.As(err, &ce) {
		t.Fatalf("Load error = %v; want *transform.CoerceError", err)
	}
	if ce.Line != 4 || ce.Column != "age" || ce.Value != "unknown" {
		t.Fatalf("CoerceError = %+v; want line 4 column age value unknown", ce)
	}
}

func TestLoad_LenientNulls(t *testing.T) {
	t.Parallel()

	csvPath := writeCSV(t, "id,age\n1,30\n2,25\n3,unknown\n")
	cfg := sqliteConfig(t, csvPath)
	cfg.Runtime.SampleRows = 2
	cfg.Lenient = true

	res, err := New(cfg).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if res.Inserted != 3 || res.Nulled != 1 {
		t.Fatalf("result = %+v; want 3 inserted, 1 nulled", res)
	}

	db, err := sql.Open("sqlite", cfg.Storage.DB.DSN)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var nulls int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "people" WHERE "age" IS NULL`).Scan(&nulls); err != nil {
		t.Fatal(err)
	}
	if nulls != 1 {
		t.Fatalf("NULL ages = %d; want 1", nulls)
	}
}

func TestLoad_Dedupe(t *testing.T) {
	t.Parallel()

	csvPath := writeCSV(t, "id,name\n1,alice\n2,bob\n1,alice\n2,bob\n3,carol\n")
	cfg := sqliteConfig(t, csvPath)
	cfg.Dedupe = true

	res, err := New(cfg).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if res.Parsed != 5 || res.Deduped != 2 || res.Inserted != 3 {
		t.Fatalf("result = %+v; want 5 parsed, 2 deduped, 3 inserted", res)
	}
	if n := countRows(t, cfg.Storage.DB.DSN, "people"); n != 3 {
		t.Fatalf("table holds %d rows; want 3", n)
	}
}

func TestLoad_SkipsMisalignedRows(t *testing.T) {
	t.Parallel()

	csvPath := writeCSV(t, "id,name\n1,alice\n2,bob,extra\n3,carol\n")
	cfg := sqliteConfig(t, csvPath)

	res, err := New(cfg).Load(context.Background())
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if res.Inserted != 2 || res.Skipped != 1 {
		t.Fatalf("result = %+v; want 2 inserted, 1 skipped", res)
	}
}
