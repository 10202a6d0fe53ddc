//go:build !linux

// sync_other.go implements the durability engine on platforms without a
// range-sync syscall: a sync after every append. No preallocation is
// attempted; allocatedLength stays zero.
//
// os.File.Sync is a full fsync, stronger than the data-only sync this
// path needs; the standard library has no portable fdatasync.
package tswal

import (
	"fmt"
)

// syncRange makes the extent [offset, offset+size) durable by syncing the
// whole file. The offset and size are ignored.
func (w *SegmentWriter) syncRange(_, _ uint64) error {
	if err := w.f.Sync(); err != nil {
		w.poison(err)
		return fmt.Errorf("%w: sync: %w", ErrSegmentWriteData, err)
	}
	return nil
}
