// format.go defines the on-disk segment layout.
//
// File Format:
//
//	preamble := file type identifier || segment id (16 bytes, big-endian)
//	chunk    := crc32 (4B, BE) || compressed length (4B, BE) || payload
//
// The payload is the snappy frame encoding of the appended data, and the
// CRC-32 covers the compressed payload bytes only. A chunk header that
// reads as all zeros marks the end of data: segments are preallocated with
// zero bytes, so a reader stopping at the first zero header skips the
// unwritten tail.
package tswal

// fileTypeIdentifier is the magic at offset 0 of every segment file.
// These bytes are embedded in the on-disk format and MUST NOT change.
const fileTypeIdentifier = "TSWALSEG"

// FileTypeIdentifier returns the segment file magic bytes.
func FileTypeIdentifier() []byte {
	return []byte(fileTypeIdentifier)
}

// SegmentIDSize is the width of the segment id field in the preamble.
const SegmentIDSize = 16

// PreambleSize is the total size of the segment file preamble.
const PreambleSize = len(fileTypeIdentifier) + SegmentIDSize

// ChunkHeaderSize is the size of the per-chunk header: checksum (4) +
// compressed length (4).
const ChunkHeaderSize = 8

// SegmentFileSuffix is the filename extension of segment files.
const SegmentFileSuffix = ".segment"
