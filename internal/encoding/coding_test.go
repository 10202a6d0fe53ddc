package encoding

import (
	"bytes"
	"math"
	"testing"
)

func TestFixed32RoundTrip(t *testing.T) {
	values := []uint32{0, 1, 0xff, 0x1234, 0xdeadbeef, math.MaxUint32}
	for _, v := range values {
		var buf [4]byte
		EncodeFixed32(buf[:], v)
		if got := DecodeFixed32(buf[:]); got != v {
			t.Errorf("DecodeFixed32(EncodeFixed32(%#x)) = %#x", v, got)
		}
	}
}

func TestFixed64RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 0xff, 0xdeadbeefcafebabe, math.MaxUint64}
	for _, v := range values {
		var buf [8]byte
		EncodeFixed64(buf[:], v)
		if got := DecodeFixed64(buf[:]); got != v {
			t.Errorf("DecodeFixed64(EncodeFixed64(%#x)) = %#x", v, got)
		}
	}
}

func TestBigEndianByteOrder(t *testing.T) {
	var buf [4]byte
	EncodeFixed32(buf[:], 0x01020304)
	if want := []byte{0x01, 0x02, 0x03, 0x04}; !bytes.Equal(buf[:], want) {
		t.Errorf("EncodeFixed32(0x01020304) = %x, want %x", buf, want)
	}

	var buf8 [8]byte
	EncodeFixed64(buf8[:], 0x0102030405060708)
	if want := []byte{1, 2, 3, 4, 5, 6, 7, 8}; !bytes.Equal(buf8[:], want) {
		t.Errorf("EncodeFixed64 = %x, want %x", buf8, want)
	}
}

func TestAppendFixed(t *testing.T) {
	buf := AppendFixed32([]byte{0xaa}, 0x01020304)
	if want := []byte{0xaa, 1, 2, 3, 4}; !bytes.Equal(buf, want) {
		t.Errorf("AppendFixed32 = %x, want %x", buf, want)
	}

	buf = AppendFixed64(nil, 0x0102030405060708)
	if len(buf) != 8 || DecodeFixed64(buf) != 0x0102030405060708 {
		t.Errorf("AppendFixed64 round trip failed: %x", buf)
	}
}
