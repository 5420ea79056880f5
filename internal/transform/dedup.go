package transform

import (
	"fmt"
	"strings"
	"time"

	"github.com/zeebo/xxh3"
)

// DeDup drops rows identical to one already seen in the current run. It is
// opt-in: appending duplicates across runs is normal ingestor behavior, and
// even within a run duplicates are kept unless the caller asks otherwise.
//
// Rows are keyed by an xxh3 hash of a stable encoding of their typed values,
// so memory stays at 8 bytes per distinct row rather than the row itself.
type DeDup struct {
	seen map[uint64]struct{}

	// Dropped counts rows suppressed as duplicates.
	Dropped int64
}

// NewDeDup returns an empty de-duplicator.
func NewDeDup() *DeDup {
	return &DeDup{seen: make(map[uint64]struct{})}
}

// Seen records row and reports whether an identical row was already seen.
func (d *DeDup) Seen(row []any) bool {
	h := hashRow(row)
	if _, ok := d.seen[h]; ok {
		d.Dropped++
		return true
	}
	d.seen[h] = struct{}{}
	return false
}

// hashRow produces a stable 64-bit key for a typed row. Values are separated
// by \x1f and nil is encoded as \x00 so ("a", nil) and ("a", "") differ.
func hashRow(row []any) uint64 {
	var b strings.Builder
	for i, v := range row {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		switch t := v.(type) {
		case nil:
			b.WriteByte('\x00')
		case string:
			b.WriteString(t)
		case time.Time:
			b.WriteString(t.Format(time.RFC3339Nano))
		default:
			fmt.Fprint(&b, t)
		}
	}
	return xxh3.HashString(b.String())
}
