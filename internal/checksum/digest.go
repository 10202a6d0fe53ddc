package checksum

import (
	"io"

	"github.com/zeebo/xxh3"
)

// digestChunkSize is the read granularity for streaming digests.
const digestChunkSize = 64 * 1024

// FileDigest computes the XXH3-64 digest of everything remaining in r.
//
// Segment files are digested after sealing; the digest identifies a
// segment's exact byte content without rehashing per chunk.
func FileDigest(r io.Reader) (uint64, error) {
	h := xxh3.New()
	buf := make([]byte, digestChunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			_, _ = h.Write(buf[:n])
		}
		if err == io.EOF {
			return h.Sum64(), nil
		}
		if err != nil {
			return 0, err
		}
	}
}

// Digest computes the XXH3-64 digest of data in one shot.
func Digest(data []byte) uint64 {
	return xxh3.Hash(data)
}
