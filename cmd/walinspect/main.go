// Package main provides the walinspect CLI tool for examining WAL segment
// files.
//
// Usage:
//
//	walinspect [flags] <segment-file> [<segment-file>...]
//
// Flags:
//
//	-chunks   Print a per-chunk table (offset, CRC, sizes)
//	-q        Only print errors; exit status carries the verdict
//
// For each file, walinspect validates the preamble, walks every chunk
// verifying checksums and decoding payloads, and prints a summary with
// the segment's content digest. Exit status is nonzero if any file fails
// validation.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/embermill/tswal"
)

var (
	printChunks = flag.Bool("chunks", false, "Print a per-chunk table")
	quiet       = flag.Bool("q", false, "Only print errors")
)

func main() {
	flag.Parse()

	if len(flag.Args()) == 0 {
		fmt.Fprintln(os.Stderr, "usage: walinspect [flags] <segment-file> [<segment-file>...]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		if err := inspect(path); err != nil {
			fmt.Fprintf(os.Stderr, "walinspect: %s: %v\n", path, err)
			failed = true
		}
	}
	if failed {
		os.Exit(1)
	}
}

func inspect(path string) error {
	if *printChunks {
		if err := dumpChunks(path); err != nil {
			return err
		}
	}

	info, err := tswal.VerifySegment(path)
	if err != nil {
		return err
	}
	if !*quiet {
		fmt.Printf("%s: id=%s chunks=%d size=%d payload=%d digest=%016x\n",
			path, info.ID, info.Chunks, info.Size, info.PayloadBytes, info.Digest)
	}
	return nil
}

func dumpChunks(path string) error {
	r, err := tswal.OpenSegment(path)
	if err != nil {
		return err
	}
	defer r.Close()

	fmt.Printf("%s: id=%s\n", path, r.ID())
	fmt.Printf("  %10s  %8s  %10s  %12s\n", "OFFSET", "CRC", "COMPRESSED", "UNCOMPRESSED")
	for {
		info, compressed, err := r.NextChunk()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		// Decode only to report the uncompressed size; VerifySegment does
		// the strict validation pass.
		payloadLen := -1
		if payload, err := decodeLen(compressed); err == nil {
			payloadLen = payload
		}
		fmt.Printf("  %10d  %08x  %10d  %12d\n",
			info.Offset, info.Checksum, info.CompressedLen, payloadLen)
	}
}

func decodeLen(compressed []byte) (int, error) {
	n, err := io.Copy(io.Discard, tswal.NewChunkDecoder(compressed))
	return int(n), err
}
