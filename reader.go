// reader.go implements segment replay: sequential chunk iteration with
// checksum verification and snappy frame decoding.
//
// Segments are preallocated in zero-filled quanta, so a valid file may
// carry a zero tail past the last chunk. A chunk header that reads as all
// zeros is therefore the end-of-data sentinel, not a malformed chunk; the
// frame encoder guarantees no real chunk can produce an all-zero header.
package tswal

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/embermill/tswal/internal/checksum"
	"github.com/embermill/tswal/internal/compression"
	"github.com/embermill/tswal/internal/encoding"
	"github.com/embermill/tswal/internal/mempool"
)

// ChunkInfo describes one chunk's framing as stored on disk.
type ChunkInfo struct {
	// Offset is the file offset of the chunk header.
	Offset uint64

	// Checksum is the stored CRC-32 of the compressed payload.
	Checksum uint32

	// CompressedLen is the stored compressed payload length.
	CompressedLen uint32
}

// SegmentReader reads chunks back from a sealed segment file.
//
// A SegmentReader is single-owner; no method may be invoked concurrently
// with another on the same instance.
type SegmentReader struct {
	id   SegmentID
	path string
	f    *os.File
	r    *bufio.Reader

	// offset is the file position of the next chunk header.
	offset uint64

	// fileSize bounds chunk length headers; a corrupt header cannot make
	// the reader allocate past the end of the file.
	fileSize uint64

	header  [ChunkHeaderSize]byte
	scratch []byte // pooled compressed-payload buffer
}

// OpenSegment opens a segment file for replay and validates its preamble.
func OpenSegment(path string) (*SegmentReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSegmentOpen, err)
	}

	stat, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrSegmentOpen, err)
	}

	br := bufio.NewReader(f)
	preamble := make([]byte, PreambleSize)
	if _, err := io.ReadFull(br, preamble); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %w", ErrShortPreamble, err)
	}
	if !bytes.Equal(preamble[:len(fileTypeIdentifier)], FileTypeIdentifier()) {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %q", ErrBadFileType, preamble[:len(fileTypeIdentifier)])
	}

	return &SegmentReader{
		id:       SegmentIDFromBytes(preamble[len(fileTypeIdentifier):]),
		path:     path,
		f:        f,
		r:        br,
		offset:   uint64(PreambleSize),
		fileSize: uint64(stat.Size()),
	}, nil
}

// ID returns the segment id recorded in the preamble.
func (r *SegmentReader) ID() SegmentID {
	return r.id
}

// Path returns the segment file's location.
func (r *SegmentReader) Path() string {
	return r.path
}

// Offset returns the file position of the next chunk header. After the
// iteration returns io.EOF this is the segment's logical length.
func (r *SegmentReader) Offset() uint64 {
	return r.offset
}

// NextChunk returns the next chunk's framing info and its compressed,
// checksum-verified payload. It returns io.EOF at the end of data, which
// is either the end of the file or the first all-zero chunk header of the
// preallocated tail.
//
// The returned payload is backed by a reused buffer, valid only until the
// next call on this reader.
func (r *SegmentReader) NextChunk() (ChunkInfo, []byte, error) {
	if r.f == nil {
		return ChunkInfo{}, nil, ErrSegmentClosed
	}

	n, err := io.ReadFull(r.r, r.header[:])
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ChunkInfo{}, nil, io.EOF
		}
		if errors.Is(err, io.ErrUnexpectedEOF) && allZero(r.header[:n]) {
			// Partial zero tail: the preallocated region need not be a
			// multiple of the header size.
			return ChunkInfo{}, nil, io.EOF
		}
		return ChunkInfo{}, nil, fmt.Errorf("%w: header at offset %d: %w", ErrTruncatedChunk, r.offset, err)
	}

	info := ChunkInfo{
		Offset:        r.offset,
		Checksum:      encoding.DecodeFixed32(r.header[0:4]),
		CompressedLen: encoding.DecodeFixed32(r.header[4:8]),
	}
	if info.Checksum == 0 && info.CompressedLen == 0 {
		// End-of-data sentinel: the zero-preallocated tail.
		return ChunkInfo{}, nil, io.EOF
	}
	if uint64(info.CompressedLen) > r.fileSize-r.offset-uint64(ChunkHeaderSize) {
		return ChunkInfo{}, nil, fmt.Errorf("%w: %d payload bytes at offset %d past end of file",
			ErrTruncatedChunk, info.CompressedLen, info.Offset)
	}

	r.releaseScratch()
	r.scratch = mempool.GlobalPool.Get(int(info.CompressedLen))[:info.CompressedLen]
	if _, err := io.ReadFull(r.r, r.scratch); err != nil {
		return ChunkInfo{}, nil, fmt.Errorf("%w: %d payload bytes at offset %d: %w",
			ErrTruncatedChunk, info.CompressedLen, info.Offset, err)
	}

	if got := checksum.Value(r.scratch); got != info.Checksum {
		return ChunkInfo{}, nil, fmt.Errorf("%w: offset %d: got %08x, stored %08x",
			ErrInvalidChecksum, info.Offset, got, info.Checksum)
	}

	r.offset += uint64(ChunkHeaderSize) + uint64(info.CompressedLen)
	return info, r.scratch, nil
}

// Next returns the next decompressed payload, or io.EOF at end of data.
// The returned slice is owned by the caller.
func (r *SegmentReader) Next() ([]byte, error) {
	_, compressed, err := r.NextChunk()
	if err != nil {
		return nil, err
	}
	payload, err := io.ReadAll(NewChunkDecoder(compressed))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDecompressChunk, err)
	}
	return payload, nil
}

// NewChunkDecoder returns a reader that decodes one chunk's compressed
// payload, as returned by NextChunk, back into the appended bytes.
func NewChunkDecoder(compressed []byte) io.Reader {
	return compression.NewFrameDecoder(bytes.NewReader(compressed))
}

// ReadAll replays every remaining chunk and returns the decompressed
// payloads in append order.
func (r *SegmentReader) ReadAll() ([][]byte, error) {
	var payloads [][]byte
	for {
		payload, err := r.Next()
		if errors.Is(err, io.EOF) {
			return payloads, nil
		}
		if err != nil {
			return payloads, err
		}
		payloads = append(payloads, payload)
	}
}

// Close releases the file handle and scratch buffer.
func (r *SegmentReader) Close() error {
	if r.f == nil {
		return ErrSegmentClosed
	}
	r.releaseScratch()
	err := r.f.Close()
	r.f = nil
	r.r = nil
	if err != nil {
		return fmt.Errorf("%w: %w", ErrSegmentOpen, err)
	}
	return nil
}

func (r *SegmentReader) releaseScratch() {
	if r.scratch != nil {
		mempool.GlobalPool.Put(r.scratch)
		r.scratch = nil
	}
}

// allZero reports whether every byte of b is zero.
func allZero(b []byte) bool {
	for _, c := range b {
		if c != 0 {
			return false
		}
	}
	return true
}

// SegmentInfo summarizes a verified segment.
type SegmentInfo struct {
	ID   SegmentID
	Path string

	// Size is the logical length: preamble plus all chunks, excluding any
	// preallocated zero tail.
	Size uint64

	// Chunks is the number of chunks in the segment.
	Chunks int

	// PayloadBytes is the total decompressed payload size.
	PayloadBytes uint64

	// Digest is the XXH3-64 digest of the logical content [0, Size).
	Digest uint64
}

// VerifySegment walks a whole segment file, verifying every chunk
// checksum and decoding every payload, and returns its summary.
func VerifySegment(path string) (SegmentInfo, error) {
	r, err := OpenSegment(path)
	if err != nil {
		return SegmentInfo{}, err
	}
	defer func() { _ = r.Close() }()

	info := SegmentInfo{ID: r.ID(), Path: path}
	for {
		payload, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return SegmentInfo{}, err
		}
		info.Chunks++
		info.PayloadBytes += uint64(len(payload))
	}
	info.Size = r.Offset()

	f, err := os.Open(path)
	if err != nil {
		return SegmentInfo{}, fmt.Errorf("%w: %w", ErrSegmentOpen, err)
	}
	defer func() { _ = f.Close() }()
	digest, err := checksum.FileDigest(io.LimitReader(f, int64(info.Size)))
	if err != nil {
		return SegmentInfo{}, fmt.Errorf("%w: %w", ErrSegmentOpen, err)
	}
	info.Digest = digest

	return info, nil
}
