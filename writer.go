// writer.go implements the single-segment WAL writer.
//
// A SegmentWriter appends framed chunks to one segment file:
//
//  1. the payload is streamed through a snappy frame encoder whose sink is
//     a CRC-accumulating writer over the reused scratch buffer, so the
//     checksum of the compressed bytes is computed in the same pass;
//  2. the 8-byte chunk header reserved up front is back-patched with the
//     final CRC and compressed length;
//  3. the whole buffer is written to the file in a single call and flushed
//     by the platform durability engine (see sync_linux.go, sync_other.go).
package tswal

import (
	"fmt"
	"math"
	"os"

	"github.com/embermill/tswal/internal/checksum"
	"github.com/embermill/tswal/internal/compression"
	"github.com/embermill/tswal/internal/encoding"
	"github.com/embermill/tswal/internal/logging"
)

// SoftMaxBufferLen is the desired maximum size of the reused write buffer.
//
// The buffer is free to exceed this soft limit as necessary, but is shrunk
// back down to at most this size before the next append. Setting this too
// low causes needless reallocations for each write that exceeds it;
// setting it too high wastes memory for the lifetime of the writer.
const SoftMaxBufferLen = 128 * 1024

// initialBufferLen is the scratch buffer capacity at open time.
const initialBufferLen = 8 * 1024

// WriteSummary describes one completed append.
type WriteSummary struct {
	// TotalBytes is the total number of bytes written to the segment so
	// far, preamble included.
	TotalBytes uint64

	// BytesWritten is the number of bytes this append added: chunk header
	// plus compressed payload.
	BytesWritten uint64

	// SegmentID is the id of the segment written to.
	SegmentID SegmentID
}

// ClosedSegment describes a sealed segment. It is the sole artifact handed
// to the directory manager when a writer is closed.
type ClosedSegment struct {
	ID   SegmentID
	Path string
	Size uint64
}

// SegmentWriter writes chunks to a single segment file. See the package
// documentation for the durability contract.
//
// A SegmentWriter is single-owner: no method may be invoked concurrently
// with another on the same instance.
type SegmentWriter struct {
	id   SegmentID
	path string
	f    *os.File

	// bytesWritten is the logical length of the segment: preamble plus all
	// framed chunks. It never decreases and, at the end of every public
	// operation, equals the file cursor position.
	bytesWritten uint64

	// allocatedLength is the high-water mark of the zero-preallocated
	// region. Unused on platforms without range sync.
	allocatedLength uint64

	// buf is the reused framing scratch buffer, managed by the soft-cap
	// shrink policy in Append.
	buf []byte

	logger logging.Logger

	// err records the first I/O-class failure. Once set, the in-memory
	// cursor may not match on-disk reality and further appends are
	// rejected.
	err error
}

// Option configures a SegmentWriter at open time.
type Option func(*SegmentWriter)

// WithLogger sets the writer's logger. The default discards everything.
func WithLogger(l logging.Logger) Option {
	return func(w *SegmentWriter) {
		w.logger = logging.OrDiscard(l)
	}
}

// OpenInDirectory creates a new segment file in dir, named after the next
// id allocated from ids, and writes the segment preamble. The preamble is
// synced before returning so that even a segment that is closed without
// appends is recoverable.
func OpenInDirectory(dir string, ids *SegmentIDSource, opts ...Option) (*SegmentWriter, error) {
	id := ids.Next()
	path := buildSegmentPath(dir, id)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSegmentCreate, err)
	}

	w := &SegmentWriter{
		id:     id,
		path:   path,
		f:      f,
		buf:    make([]byte, 0, initialBufferLen),
		logger: logging.Discard,
	}
	for _, opt := range opts {
		opt(w)
	}

	if _, err := f.Write(FileTypeIdentifier()); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrSegmentWriteFileType, err)
	}

	idBytes := id.AsBytes()
	if _, err := f.Write(idBytes[:]); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrSegmentWriteID, err)
	}

	w.bytesWritten = uint64(PreambleSize)
	if err := w.syncRange(0, w.bytesWritten); err != nil {
		_ = f.Close()
		return nil, err
	}

	w.logger.Debugf(logging.NSSegment+"opened segment %s at %s", id, path)
	return w, nil
}

// ID returns the writer's segment id.
func (w *SegmentWriter) ID() SegmentID {
	return w.id
}

// Path returns the segment file's location.
func (w *SegmentWriter) Path() string {
	return w.path
}

// BytesWritten returns the logical length of the segment so far.
func (w *SegmentWriter) BytesWritten() uint64 {
	return w.bytesWritten
}

// scratchBuffer adapts the writer's scratch buffer to io.Writer so the
// frame encoder and checksum writer can stream into it.
type scratchBuffer struct {
	w *SegmentWriter
}

func (s scratchBuffer) Write(p []byte) (int, error) {
	s.w.buf = append(s.w.buf, p...)
	return len(p), nil
}

// Append frames data into a chunk, writes it to the segment file, and
// makes it durable. On success the returned summary reflects the new
// segment length.
//
// A ChunkSizeError or ErrUnableToCompressData return happens before any
// file I/O and leaves the writer usable. An ErrSegmentWriteData error
// poisons the writer: the file cursor may have diverged from bytesWritten,
// so subsequent appends are rejected with ErrWriterPoisoned and the caller
// must drop the writer and open a new segment.
func (w *SegmentWriter) Append(data []byte) (WriteSummary, error) {
	if w.f == nil {
		return WriteSummary{}, ErrSegmentClosed
	}
	if w.err != nil {
		return WriteSummary{}, fmt.Errorf("%w: %w", ErrWriterPoisoned, w.err)
	}

	// Ensure the scratch buffer is empty, and shrink it back below the
	// soft cap should the odd large batch have grown it. This is a no-op
	// when the capacity is within the cap already.
	w.buf = w.buf[:0]
	if cap(w.buf) > SoftMaxBufferLen {
		w.buf = make([]byte, 0, SoftMaxBufferLen)
	}

	// Chunks only support payloads up to math.MaxUint32 bytes. Reject
	// before touching the file.
	if uint64(len(data)) > math.MaxUint32 {
		return WriteSummary{}, &ChunkSizeError{Actual: uint64(len(data))}
	}

	// The chunk header is two 32-bit fields; reserve a zero u64 and come
	// back to fill them in once the compressed length and CRC are known.
	w.buf = encoding.AppendFixed64(w.buf, 0)

	// Compress the payload into the reused buffer, accumulating the CRC of
	// the compressed bytes as they are written.
	crcw := checksum.NewWriter(scratchBuffer{w})
	enc := compression.NewFrameEncoder(crcw)
	if _, err := enc.Write(data); err != nil {
		return WriteSummary{}, fmt.Errorf("%w: %w", ErrUnableToCompressData, err)
	}
	if err := enc.Close(); err != nil {
		return WriteSummary{}, fmt.Errorf("%w: %w", ErrUnableToCompressData, err)
	}

	compressedLen := uint64(len(w.buf) - ChunkHeaderSize)
	if compressedLen > math.MaxUint32 {
		return WriteSummary{}, &ChunkSizeError{Actual: compressedLen}
	}

	// Back-patch the reserved header in place.
	encoding.EncodeFixed32(w.buf[0:4], crcw.Sum32())
	encoding.EncodeFixed32(w.buf[4:8], uint32(compressedLen))

	// Write the entire chunk in a single call.
	if _, err := w.f.Write(w.buf); err != nil {
		w.poison(err)
		return WriteSummary{}, fmt.Errorf("%w: %w", ErrSegmentWriteData, err)
	}

	thisWrite := uint64(len(w.buf))
	w.bytesWritten += thisWrite
	if err := w.syncRange(w.bytesWritten-thisWrite, thisWrite); err != nil {
		return WriteSummary{}, err
	}

	// Leave the buffer empty; capacity is retained for the next append.
	w.buf = w.buf[:0]

	return WriteSummary{
		TotalBytes:   w.bytesWritten,
		BytesWritten: thisWrite,
		SegmentID:    w.id,
	}, nil
}

// Close seals the segment and releases the file handle and scratch buffer.
// No extra sync is issued: every successful append is individually
// durable. The writer must not be used afterwards.
func (w *SegmentWriter) Close() (ClosedSegment, error) {
	if w.f == nil {
		return ClosedSegment{}, ErrSegmentClosed
	}

	err := w.f.Close()
	w.f = nil
	w.buf = nil

	closed := ClosedSegment{
		ID:   w.id,
		Path: w.path,
		Size: w.bytesWritten,
	}
	w.logger.Debugf(logging.NSSegment+"closed segment %s: %d bytes", w.id, closed.Size)
	if err != nil {
		return closed, fmt.Errorf("%w: %w", ErrSegmentWriteData, err)
	}
	return closed, nil
}

// poison records the first I/O-class failure.
func (w *SegmentWriter) poison(err error) {
	if w.err == nil {
		w.err = err
		w.logger.Errorf(logging.NSSegment+"segment %s poisoned: %v", w.id, err)
	}
}
