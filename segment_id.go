// segment_id.go implements segment identity: the monotonic 64-bit id, its
// fixed-width preamble encoding, and the id-to-filename mapping used by
// the directory manager.
package tswal

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/embermill/tswal/internal/encoding"
)

// SegmentID identifies a segment within a WAL directory. IDs are allocated
// monotonically by a SegmentIDSource and never repeat within a directory's
// lifetime.
type SegmentID uint64

// ErrInvalidSegmentFileName indicates a filename that does not follow the
// <id>.segment scheme.
var ErrInvalidSegmentFileName = errors.New("tswal: invalid segment file name")

// AsBytes returns the fixed-width big-endian preamble encoding of the id.
// The id occupies the low 8 bytes; the high 8 bytes are reserved and zero.
func (id SegmentID) AsBytes() [SegmentIDSize]byte {
	var b [SegmentIDSize]byte
	encoding.EncodeFixed64(b[8:], uint64(id))
	return b
}

// SegmentIDFromBytes decodes a preamble id field written by AsBytes.
// REQUIRES: b has at least SegmentIDSize bytes.
func SegmentIDFromBytes(b []byte) SegmentID {
	return SegmentID(encoding.DecodeFixed64(b[8:SegmentIDSize]))
}

// String returns the decimal representation of the id.
func (id SegmentID) String() string {
	return strconv.FormatUint(uint64(id), 10)
}

// SegmentIDSource allocates monotonically increasing segment ids. It is
// the one shared collaborator between writers: a single source must be
// shared by every writer targeting the same directory.
//
// Safe for concurrent use.
type SegmentIDSource struct {
	next atomic.Uint64
}

// NewSegmentIDSource creates a source whose first allocated id is start.
func NewSegmentIDSource(start uint64) *SegmentIDSource {
	s := &SegmentIDSource{}
	s.next.Store(start)
	return s
}

// Next returns the next segment id. Each call yields a distinct id.
func (s *SegmentIDSource) Next() SegmentID {
	return SegmentID(s.next.Add(1) - 1)
}

// SegmentFileName returns the filename for a segment id, zero-padded so
// lexicographic directory order equals id order.
func SegmentFileName(id SegmentID) string {
	return fmt.Sprintf("%016d%s", uint64(id), SegmentFileSuffix)
}

// ParseSegmentFileName extracts the segment id from a filename produced by
// SegmentFileName.
func ParseSegmentFileName(name string) (SegmentID, error) {
	base, ok := strings.CutSuffix(filepath.Base(name), SegmentFileSuffix)
	if !ok || base == "" {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSegmentFileName, name)
	}
	n, err := strconv.ParseUint(base, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSegmentFileName, name)
	}
	return SegmentID(n), nil
}

// buildSegmentPath joins the WAL directory with the segment's filename.
func buildSegmentPath(dir string, id SegmentID) string {
	return filepath.Join(dir, SegmentFileName(id))
}
