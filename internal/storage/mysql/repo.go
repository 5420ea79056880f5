// Package mysql implements the storage.Repository contract using
// database/sql with go-sql-driver/mysql. Bulk inserts use multi-row INSERT
// statements, the closest MySQL gets to Postgres COPY without LOAD DATA
// server privileges.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"csvingest/internal/schema"
	"csvingest/internal/storage"
	myddl "csvingest/internal/storage/mysql/ddl"
)

func init() {
	storage.Register("mysql", func(ctx context.Context, cfg storage.Config) (storage.Repository, func(), error) {
		return NewRepository(ctx, cfg)
	})
}

// Repository is a MySQL-backed implementation of storage.Repository.
type Repository struct {
	db  *sql.DB
	cfg storage.Config
}

// NewRepository opens a connection for cfg.DSN (go-sql-driver format, e.g.
// "user:pass@tcp(host:3306)/dbname?parseTime=true") and pings it so an
// unreachable server or bad credentials fail the run before any table is
// created.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	db, err := sql.Open("mysql", cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("mysql: connect: %w", err)
	}

	return &Repository{db: db, cfg: cfg}, func() { db.Close() }, nil
}

// EnsureTable issues CREATE TABLE IF NOT EXISTS for the configured table.
func (r *Repository) EnsureTable(ctx context.Context, t schema.Table) error {
	t.Name = r.cfg.Table
	ddl, err := myddl.CreateSQL(t)
	if err != nil {
		return err
	}
	return r.Exec(ctx, ddl)
}

// CopyFrom inserts rows with a single multi-row INSERT per call. The driver
// interpolates nothing client-side; all values travel as statement args.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	if len(columns) == 0 {
		return 0, fmt.Errorf("mysql: no columns")
	}
	if len(rows) == 0 {
		return 0, nil
	}

	quoted := make([]string, len(columns))
	for i, c := range columns {
		quoted[i] = myddl.QuoteIdent(c)
	}
	oneRow := "(" + strings.TrimSuffix(strings.Repeat("?,", len(columns)), ",") + ")"

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ",
		myddl.QuoteIdent(r.cfg.Table), strings.Join(quoted, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if len(row) != len(columns) {
			return 0, fmt.Errorf("mysql: row width %d != %d columns", len(row), len(columns))
		}
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(oneRow)
		args = append(args, row...)
	}

	res, err := r.db.ExecContext(ctx, sb.String(), args...)
	if err != nil {
		return 0, fmt.Errorf("mysql: insert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return int64(len(rows)), nil
	}
	return n, nil
}

// Exec executes an arbitrary statement, typically DDL.
func (r *Repository) Exec(ctx context.Context, sqlText string) error {
	if _, err := r.db.ExecContext(ctx, sqlText); err != nil {
		return fmt.Errorf("mysql: exec: %w", err)
	}
	return nil
}
