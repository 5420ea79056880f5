// Package storage contains storage-agnostic contracts and utilities: the
// Repository interface implemented by each database backend, a kind-keyed
// factory, and a batched loader.
package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"csvingest/internal/schema"
)

// Repository is the write-side contract a backend must satisfy. One
// repository is created per run and released via the factory's close
// function on every exit path.
type Repository interface {
	// EnsureTable creates the destination table if it does not exist, using
	// the backend's dialect. It never drops or alters an existing table.
	EnsureTable(ctx context.Context, t schema.Table) error

	// CopyFrom bulk-inserts rows aligned to columns into the configured
	// table using the backend's most efficient primitive, returning the
	// number of rows written.
	CopyFrom(ctx context.Context, columns []string, rows [][]any) (int64, error)

	// Exec runs an arbitrary statement, typically DDL.
	Exec(ctx context.Context, sql string) error
}

// Config selects and configures a backend.
type Config struct {
	// Kind names a registered backend: "postgres", "sqlite", or "mysql".
	Kind string
	// DSN is the backend-native connection string.
	DSN string
	// Table is the destination table name (optionally schema-qualified for
	// backends that support it).
	Table string
}

// Factory constructs a Repository and returns a close function for cleanup.
type Factory func(ctx context.Context, cfg Config) (Repository, func(), error)

var (
	mu        sync.RWMutex
	factories = map[string]Factory{}
)

// Register installs a backend factory under kind. Backends call it from
// init(); importing csvingest/internal/storage/all registers every built-in.
func Register(kind string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	factories[kind] = f
}

// New builds a Repository for cfg.Kind. Unknown kinds report the registered
// set to make the fix obvious.
func New(ctx context.Context, cfg Config) (Repository, func(), error) {
	mu.RLock()
	f, ok := factories[cfg.Kind]
	mu.RUnlock()
	if !ok {
		return nil, nil, fmt.Errorf("storage: unknown kind %q (registered: %v)", cfg.Kind, Kinds())
	}
	return f(ctx, cfg)
}

// Kinds returns the registered backend names, sorted.
func Kinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]string, 0, len(factories))
	for k := range factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
