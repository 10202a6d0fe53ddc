// Package encoding provides fixed-width binary encoding primitives for the
// segment wire format.
//
// All multi-byte integers in the segment format are encoded big-endian, so
// headers compare and sort bytewise in numeric order.
package encoding

import (
	"encoding/binary"
)

// EncodeFixed32 encodes a uint32 into a 4-byte big-endian buffer.
// REQUIRES: dst has at least 4 bytes.
func EncodeFixed32(dst []byte, value uint32) {
	binary.BigEndian.PutUint32(dst, value)
}

// DecodeFixed32 decodes a uint32 from a 4-byte big-endian buffer.
// REQUIRES: src has at least 4 bytes.
func DecodeFixed32(src []byte) uint32 {
	return binary.BigEndian.Uint32(src)
}

// EncodeFixed64 encodes a uint64 into an 8-byte big-endian buffer.
// REQUIRES: dst has at least 8 bytes.
func EncodeFixed64(dst []byte, value uint64) {
	binary.BigEndian.PutUint64(dst, value)
}

// DecodeFixed64 decodes a uint64 from an 8-byte big-endian buffer.
// REQUIRES: src has at least 8 bytes.
func DecodeFixed64(src []byte) uint64 {
	return binary.BigEndian.Uint64(src)
}

// AppendFixed32 appends the 4-byte big-endian encoding of value to dst.
func AppendFixed32(dst []byte, value uint32) []byte {
	return binary.BigEndian.AppendUint32(dst, value)
}

// AppendFixed64 appends the 8-byte big-endian encoding of value to dst.
func AppendFixed64(dst []byte, value uint64) []byte {
	return binary.BigEndian.AppendUint64(dst, value)
}
