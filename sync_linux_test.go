//go:build linux

package tswal

import (
	"os"
	"testing"
)

func TestOpenPreallocatesFirstBlock(t *testing.T) {
	w, _ := openTestWriter(t, 0)
	defer w.Close()

	if w.allocatedLength != preallocateSize {
		t.Errorf("allocatedLength = %d after open, want %d", w.allocatedLength, preallocateSize)
	}

	info, err := os.Stat(w.Path())
	if err != nil {
		t.Fatal(err)
	}
	if info.Size() < int64(PreambleSize) {
		t.Errorf("file size = %d, want >= %d", info.Size(), PreambleSize)
	}
}

func TestPreallocationProgression(t *testing.T) {
	w, _ := openTestWriter(t, 0)
	defer w.Close()

	// Three incompressible ~13 KiB appends: the first fits inside the
	// quantum preallocated at open, the second and third cross one
	// preallocation boundary each.
	want := []uint64{1 * preallocateSize, 2 * preallocateSize, 3 * preallocateSize}
	for i, wantAlloc := range want {
		if _, err := w.Append(incompressible(13312, int64(i))); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
		if w.allocatedLength != wantAlloc {
			t.Errorf("after append %d: allocatedLength = %d, want %d",
				i, w.allocatedLength, wantAlloc)
		}
	}
}

func TestAllocatedLengthInvariants(t *testing.T) {
	w, _ := openTestWriter(t, 0)
	defer w.Close()

	sizes := []int{1, 512, 40 * 1024, 3, 150 * 1024, 0, 17}
	for i, n := range sizes {
		if _, err := w.Append(incompressible(n, int64(i))); err != nil {
			t.Fatalf("Append %d failed: %v", i, err)
		}
		if w.allocatedLength < w.bytesWritten {
			t.Errorf("after append %d: allocatedLength %d < bytesWritten %d",
				i, w.allocatedLength, w.bytesWritten)
		}
		if w.allocatedLength%preallocateSize != 0 {
			t.Errorf("after append %d: allocatedLength %d not a multiple of %d",
				i, w.allocatedLength, preallocateSize)
		}
	}
}

func TestCursorBackAtLogicalEndAfterPreallocation(t *testing.T) {
	w, _ := openTestWriter(t, 0)

	// Force a preallocation extension, then append again: the second chunk
	// must land at the logical end, not after the zero blocks.
	if _, err := w.Append(incompressible(20*1024, 1)); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	if _, err := w.Append([]byte("after extension")); err != nil {
		t.Fatalf("Append failed: %v", err)
	}
	closed, err := w.Close()
	if err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	r, err := OpenSegment(closed.Path)
	if err != nil {
		t.Fatalf("OpenSegment failed: %v", err)
	}
	defer r.Close()
	payloads, err := r.ReadAll()
	if err != nil {
		t.Fatalf("ReadAll failed: %v", err)
	}
	if len(payloads) != 2 || string(payloads[1]) != "after extension" {
		t.Fatalf("ReadAll returned %d payloads, want 2 ending with %q", len(payloads), "after extension")
	}
}
