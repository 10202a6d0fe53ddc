package checksum

import (
	"bytes"
	"hash/crc32"
	"testing"
)

func TestValueMatchesStdlib(t *testing.T) {
	inputs := [][]byte{
		nil,
		{},
		[]byte("a"),
		[]byte("hello, segment"),
		bytes.Repeat([]byte{0xab}, 4096),
	}
	for _, in := range inputs {
		if got, want := Value(in), crc32.ChecksumIEEE(in); got != want {
			t.Errorf("Value(%d bytes) = %08x, want %08x", len(in), got, want)
		}
	}
}

func TestExtendEqualsConcat(t *testing.T) {
	a := []byte("first half ")
	b := []byte("second half")

	concat := Value(append(append([]byte{}, a...), b...))
	extended := Extend(Value(a), b)
	if concat != extended {
		t.Errorf("Extend = %08x, want %08x", extended, concat)
	}
}

func TestWriterAccumulates(t *testing.T) {
	var dst bytes.Buffer
	w := NewWriter(&dst)

	parts := [][]byte{[]byte("one"), {}, []byte("two"), []byte("three")}
	var all []byte
	for _, p := range parts {
		n, err := w.Write(p)
		if err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if n != len(p) {
			t.Fatalf("Write = %d, want %d", n, len(p))
		}
		all = append(all, p...)
	}

	if got, want := w.Sum32(), Value(all); got != want {
		t.Errorf("Sum32 = %08x, want %08x", got, want)
	}
	if !bytes.Equal(dst.Bytes(), all) {
		t.Error("wrapped writer did not receive all bytes")
	}

	w.Reset()
	if w.Sum32() != 0 {
		t.Errorf("Sum32 after Reset = %08x, want 0", w.Sum32())
	}
}

func TestWriterEmpty(t *testing.T) {
	w := NewWriter(&bytes.Buffer{})
	if w.Sum32() != 0 {
		t.Errorf("Sum32 of empty writer = %08x, want 0", w.Sum32())
	}
}

func TestFileDigestMatchesOneShot(t *testing.T) {
	data := bytes.Repeat([]byte("0123456789abcdef"), 10000) // spans several read chunks

	got, err := FileDigest(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("FileDigest failed: %v", err)
	}
	if want := Digest(data); got != want {
		t.Errorf("FileDigest = %016x, want %016x", got, want)
	}
}

func TestFileDigestEmpty(t *testing.T) {
	got, err := FileDigest(bytes.NewReader(nil))
	if err != nil {
		t.Fatalf("FileDigest failed: %v", err)
	}
	if want := Digest(nil); got != want {
		t.Errorf("FileDigest(empty) = %016x, want %016x", got, want)
	}
}
