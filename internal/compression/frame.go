// frame.go implements the snappy frame (stream) codec used for live segment
// chunks.
//
// Chunk payloads are stored in the snappy framing format so a reader can
// stream-decode them without knowing the uncompressed size up front.
package compression

import (
	"io"

	"github.com/golang/snappy"
)

// frameMagic is the snappy stream identifier chunk. Every snappy frame
// stream begins with these ten bytes.
var frameMagic = []byte("\xff\x06\x00\x00sNaPpY")

// FrameEncoder compresses a byte stream into the snappy framing format.
//
// Close guarantees at least the stream identifier reaches the destination,
// so the encoding of an empty stream is never zero bytes. The segment
// format reserves an all-zero chunk header as its end-of-data sentinel;
// a zero-length encoding would be unreadable.
type FrameEncoder struct {
	counter *countingWriter
	snap    *snappy.Writer
}

// NewFrameEncoder returns a FrameEncoder writing compressed frames to dst.
func NewFrameEncoder(dst io.Writer) *FrameEncoder {
	c := &countingWriter{inner: dst}
	return &FrameEncoder{
		counter: c,
		snap:    snappy.NewBufferedWriter(c),
	}
}

// Write compresses p into the destination stream.
func (e *FrameEncoder) Write(p []byte) (int, error) {
	return e.snap.Write(p)
}

// Close flushes all buffered frames. If nothing was ever written, the bare
// stream identifier is emitted so the empty stream has a canonical
// non-empty encoding.
func (e *FrameEncoder) Close() error {
	if err := e.snap.Close(); err != nil {
		return err
	}
	if e.counter.n == 0 {
		if _, err := e.counter.Write(frameMagic); err != nil {
			return err
		}
	}
	return nil
}

// NewFrameDecoder returns a reader that decompresses a snappy frame stream
// from src. A zero-byte source decodes to the empty stream.
func NewFrameDecoder(src io.Reader) io.Reader {
	return snappy.NewReader(src)
}

// countingWriter tracks how many bytes have reached the inner writer.
type countingWriter struct {
	inner io.Writer
	n     int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.inner.Write(p)
	c.n += int64(n)
	return n, err
}
