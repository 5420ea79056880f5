// Package file implements a local filesystem-backed data source.
package file

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Local is a data source that opens a file from the local disk. The ingestor
// opens it twice per run: once for the bounded inference sample and once for
// the full load pass.
type Local struct{ path string }

// NewLocal returns a Local source bound to path.
func NewLocal(path string) *Local { return &Local{path: path} }

// Path returns the configured filesystem path.
func (l *Local) Path() string { return l.path }

// Open opens the path for reading. A canceled context returns immediately
// without touching the filesystem. Filesystem errors are wrapped with the
// path while keeping errors.Is checks working, e.g.
// errors.Is(err, os.ErrNotExist) for a missing file.
func (l *Local) Open(ctx context.Context) (io.ReadCloser, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.path, err)
	}
	return f, nil
}
