//go:build linux

// sync_linux.go implements the durability engine on Linux: block
// preallocation plus byte-range sync.
//
// Extending a file on every append forces the filesystem to update extent
// metadata each time. Instead the writer preallocates zero-filled blocks
// in fixed quanta and overwrites them in place; the frequent-path flush is
// then a sync_file_range over just the newly written extent, and the full
// fsync only happens when the preallocated region must grow.
package tswal

import (
	"fmt"
	"io"
	"syscall"

	"github.com/embermill/tswal/internal/logging"
)

// preallocateSize is the zero-fill quantum. allocatedLength is always a
// multiple of this.
const preallocateSize = 16 * 1024

// sync_file_range flags (linux/fs.h). Not exposed by the stdlib syscall
// package, so declared here with their fixed kernel ABI values.
const (
	syncFileRangeWaitBefore = 1
	syncFileRangeWrite      = 2
	syncFileRangeWaitAfter  = 4
)

// segmentZeros is the shared zero block written during preallocation.
var segmentZeros = make([]byte, preallocateSize)

// syncRange makes the extent [offset, offset+size) durable.
//
// When the last write ran past the preallocated region, the region is
// extended first: enough zero blocks are appended to cover bytesWritten,
// the size change is persisted with a full fsync, and the cursor is
// re-seeked to bytesWritten so the next chunk overwrites the zero region
// in place. Otherwise the extent is flushed with a three-phase
// sync_file_range (wait-before, write, wait-after).
//
// The extension path may leave extra zero bytes on disk if it fails
// partway; bytesWritten is untouched, and the caller must drop the writer.
func (w *SegmentWriter) syncRange(offset, size uint64) error {
	if w.bytesWritten <= w.allocatedLength {
		err := syscall.SyncFileRange(
			int(w.f.Fd()),
			int64(offset),
			int64(size),
			syncFileRangeWaitBefore|
				syncFileRangeWrite|
				syncFileRangeWaitAfter,
		)
		if err != nil {
			w.poison(err)
			return fmt.Errorf("%w: sync file range: %w", ErrSegmentWriteData, err)
		}
		return nil
	}

	blocks := (w.bytesWritten - w.allocatedLength) / preallocateSize
	for i := uint64(0); i <= blocks; i++ {
		w.allocatedLength += preallocateSize
		if _, err := w.f.Write(segmentZeros); err != nil {
			w.poison(err)
			return fmt.Errorf("%w: preallocate: %w", ErrSegmentWriteData, err)
		}
	}
	if err := w.f.Sync(); err != nil {
		w.poison(err)
		return fmt.Errorf("%w: sync after preallocate: %w", ErrSegmentWriteData, err)
	}
	if _, err := w.f.Seek(int64(w.bytesWritten), io.SeekStart); err != nil {
		w.poison(err)
		return fmt.Errorf("%w: seek after preallocate: %w", ErrSegmentWriteData, err)
	}
	w.logger.Debugf(logging.NSSegment+"segment %s preallocated to %d bytes", w.id, w.allocatedLength)
	return nil
}
