/*
Package tswal implements the append-only write-ahead-log segment files a
time-series database uses to durably persist payload chunks before they
are committed to higher-level structures.

The central type is SegmentWriter: it owns one segment file, appends
length-prefixed, checksummed, snappy-compressed chunks to it, and manages
the durability protocol against the underlying filesystem. Closing a
writer seals the segment and yields a ClosedSegment descriptor for the
caller's directory manager.

SegmentReader is the replay companion. It validates the preamble, iterates
chunks with checksum verification, and treats the zero-filled preallocated
tail of a segment as a clean end of stream.

# Durability

Every successful Append is individually durable before it returns. On
Linux the writer preallocates the file in 16 KiB quanta and flushes each
append with a byte-range sync over just the newly written extent, so the
frequent-path sync does not rewrite unchanged file metadata. On other
platforms nothing is preallocated and each append is followed by a full
file sync (os.File.Sync).

# Concurrency

A SegmentWriter is single-owner: it may be handed between goroutines but
must not be used from two goroutines at once. The only shared collaborator
is the SegmentIDSource handed to OpenInDirectory, which is safe for
concurrent use.
*/
package tswal
