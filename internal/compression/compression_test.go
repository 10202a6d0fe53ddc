package compression

import (
	"bytes"
	"math/rand"
	"testing"
)

func testPayloads() map[string][]byte {
	random := make([]byte, 32*1024)
	rand.New(rand.NewSource(42)).Read(random)
	return map[string][]byte{
		"empty":        {},
		"short":        []byte("hello"),
		"repetitive":   bytes.Repeat([]byte("timeseries"), 5000),
		"random":       random,
		"single zero":  {0},
		"all zeros 4k": make([]byte, 4096),
	}
}

func TestBlockCodecRoundTrip(t *testing.T) {
	for name, payload := range testPayloads() {
		for _, codec := range []Type{None, Snappy, Zstd, LZ4} {
			compressed, err := Compress(codec, payload)
			if err != nil {
				t.Errorf("%s/%s: Compress failed: %v", codec, name, err)
				continue
			}
			if codec == LZ4 && compressed == nil {
				// Incompressible input; the container stores it raw.
				continue
			}
			got, err := DecompressWithSize(codec, compressed, len(payload))
			if err != nil {
				t.Errorf("%s/%s: Decompress failed: %v", codec, name, err)
				continue
			}
			if !bytes.Equal(got, payload) {
				t.Errorf("%s/%s: round trip mismatch: %d bytes in, %d bytes out",
					codec, name, len(payload), len(got))
			}
		}
	}
}

func TestLZ4IncompressibleReturnsNil(t *testing.T) {
	random := make([]byte, 8*1024)
	rand.New(rand.NewSource(7)).Read(random)

	compressed, err := Compress(LZ4, random)
	if err != nil {
		t.Fatalf("Compress failed: %v", err)
	}
	if compressed != nil {
		t.Errorf("expected nil for incompressible input, got %d bytes", len(compressed))
	}
}

func TestTypeString(t *testing.T) {
	tests := []struct {
		t    Type
		want string
	}{
		{None, "none"},
		{Snappy, "snappy"},
		{Zstd, "zstd"},
		{LZ4, "lz4"},
		{Type(99), "unknown(99)"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("Type(%d).String() = %q, want %q", tt.t, got, tt.want)
		}
	}
}

func TestParseType(t *testing.T) {
	for _, codec := range []Type{None, Snappy, Zstd, LZ4} {
		got, err := ParseType(codec.String())
		if err != nil {
			t.Errorf("ParseType(%q) failed: %v", codec.String(), err)
		}
		if got != codec {
			t.Errorf("ParseType(%q) = %v, want %v", codec.String(), got, codec)
		}
	}
	if _, err := ParseType("gzip"); err == nil {
		t.Error("ParseType(gzip) succeeded, want error")
	}
}

func TestUnsupportedCodec(t *testing.T) {
	if _, err := Compress(Type(200), []byte("x")); err == nil {
		t.Error("Compress with unknown codec succeeded, want error")
	}
	if _, err := DecompressWithSize(Type(200), []byte("x"), 1); err == nil {
		t.Error("Decompress with unknown codec succeeded, want error")
	}
}
