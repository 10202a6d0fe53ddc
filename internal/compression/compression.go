// Package compression provides the codecs used by the WAL.
//
// Live segment chunks always use the snappy framing format (see frame.go);
// that choice is part of the on-disk contract and is not configurable.
// Sealed segments headed for cold storage may be re-encoded with any of the
// block codecs below, which trade write speed for ratio.
package compression

import (
	"fmt"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies a block compression codec.
type Type uint8

const (
	// None stores the payload as-is.
	None Type = 0x0

	// Snappy uses the snappy block format.
	Snappy Type = 0x1

	// Zstd uses Zstandard at its default level.
	Zstd Type = 0x2

	// LZ4 uses the LZ4 raw block format.
	LZ4 Type = 0x3
)

// String returns the codec name as used by tool flags.
func (t Type) String() string {
	switch t {
	case None:
		return "none"
	case Snappy:
		return "snappy"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(t))
	}
}

// ParseType maps a codec name to its Type.
func ParseType(name string) (Type, error) {
	switch name {
	case "none":
		return None, nil
	case "snappy":
		return Snappy, nil
	case "zstd":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	default:
		return None, fmt.Errorf("compression: unknown codec %q", name)
	}
}

// Compress encodes data with the given codec and returns the compressed
// bytes. For LZ4 the raw block format is used, and a nil result with a nil
// error means the block would not be smaller than the input; the caller's
// container format then stores the payload raw.
func Compress(t Type, data []byte) ([]byte, error) {
	switch t {
	case None:
		return data, nil

	case Snappy:
		return snappy.Encode(nil, data), nil

	case Zstd:
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("compression: zstd encoder: %w", err)
		}
		defer func() { _ = enc.Close() }()
		return enc.EncodeAll(data, nil), nil

	case LZ4:
		return compressLZ4(data)

	default:
		return nil, fmt.Errorf("compression: unsupported codec %s", t)
	}
}

// compressLZ4 encodes data in the LZ4 raw block format. LZ4 blocks carry no
// length information, so containers storing them must record the
// uncompressed size for DecompressWithSize.
func compressLZ4(data []byte) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var ht [1 << 16]int
	n, err := lz4.CompressBlock(data, dst, ht[:])
	if err != nil {
		return nil, fmt.Errorf("compression: lz4 compress block: %w", err)
	}
	if n == 0 || n >= len(data) {
		// Incompressible; fall back to a stored block.
		return nil, nil
	}
	return dst[:n], nil
}

// DecompressWithSize decodes data with the given codec. uncompressedLen is
// required for LZ4 and ignored by the other codecs.
func DecompressWithSize(t Type, data []byte, uncompressedLen int) ([]byte, error) {
	switch t {
	case None:
		return data, nil

	case Snappy:
		return snappy.Decode(nil, data)

	case Zstd:
		dec, err := zstd.NewReader(nil)
		if err != nil {
			return nil, fmt.Errorf("compression: zstd decoder: %w", err)
		}
		defer dec.Close()
		return dec.DecodeAll(data, nil)

	case LZ4:
		dst := make([]byte, uncompressedLen)
		n, err := lz4.UncompressBlock(data, dst)
		if err != nil {
			return nil, fmt.Errorf("compression: lz4 uncompress block: %w", err)
		}
		return dst[:n], nil

	default:
		return nil, fmt.Errorf("compression: unsupported codec %s", t)
	}
}
