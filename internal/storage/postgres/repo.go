// Package postgres implements the storage.Repository contract using pgx v5.
// Bulk inserts go through the native COPY protocol.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"csvingest/internal/schema"
	"csvingest/internal/storage"
	pgddl "csvingest/internal/storage/postgres/ddl"
)

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, func(), error) {
		return NewRepository(ctx, cfg)
	})
}

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
	cfg  storage.Config
}

// NewRepository opens a pgx pool for cfg.DSN and pings it so an unreachable
// server or bad credentials fail the run before any table is created. The
// returned close function releases the pool.
func NewRepository(ctx context.Context, cfg storage.Config) (*Repository, func(), error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres: parse dsn: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres: connect: %w", err)
	}

	return &Repository{pool: pool, cfg: cfg}, pool.Close, nil
}

// EnsureTable issues CREATE TABLE IF NOT EXISTS for the configured table.
func (r *Repository) EnsureTable(ctx context.Context, t schema.Table) error {
	t.Name = r.cfg.Table
	sql, err := pgddl.CreateSQL(t)
	if err != nil {
		return err
	}
	return r.Exec(ctx, sql)
}

// CopyFrom bulk-inserts rows via the COPY protocol. Postgres error detail
// (when present) is surfaced because pgx's bare message rarely names the
// offending value.
func (r *Repository) CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error) {
	n, err := r.pool.CopyFrom(ctx, splitFQN(r.cfg.Table), columns, pgx.CopyFromRows(rows))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("postgres: copy: %s (%s)", pgErr.Detail, pgErr.SQLState())
		}
		return n, fmt.Errorf("postgres: copy: %w", err)
	}
	return n, nil
}

// Exec implements storage.Repository.Exec.
func (r *Repository) Exec(ctx context.Context, sql string) error {
	if _, err := r.pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("postgres: exec: %w", err)
	}
	return nil
}

// splitFQN converts "schema.table" into a pgx.Identifier {"schema","table"};
// an unqualified name yields {"table"}.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
