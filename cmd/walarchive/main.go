// Package main provides the walarchive CLI tool for re-encoding sealed
// WAL segments into cold-storage archives.
//
// Live segments use snappy framing because append latency matters; once a
// segment is sealed and handed to long-term storage, a denser codec pays
// for itself. walarchive decodes every chunk of a segment and writes the
// payloads to an archive file compressed with the selected block codec.
//
// Usage:
//
//	walarchive -codec zstd -o <out.walarc> <segment-file>
//	walarchive -check <out.walarc> <segment-file>
//
// Archive format:
//
//	header := "TSWALARC" || version (1B) || codec (1B) || segment id (16B, BE)
//	record := flags (1B) || crc32 (4B, BE) || stored length (4B, BE) ||
//	          uncompressed length (4B, BE) || stored bytes
//
// flags bit 0 set means the record is stored raw because it did not
// shrink under the archive codec. The CRC covers the stored bytes.
package main

import (
	"bufio"
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/embermill/tswal"
	"github.com/embermill/tswal/internal/checksum"
	"github.com/embermill/tswal/internal/compression"
	"github.com/embermill/tswal/internal/encoding"
)

const (
	archiveMagic   = "TSWALARC"
	archiveVersion = 1

	recordHeaderSize = 1 + 4 + 4 + 4

	flagStoredRaw = 0x1
)

var (
	codecName = flag.String("codec", "zstd", "Archive codec: none, snappy, zstd, lz4")
	outPath   = flag.String("o", "", "Archive output path (default: <segment>.walarc)")
	check     = flag.Bool("check", false, "Verify an archive against its source segment")
)

func main() {
	flag.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "walarchive: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	args := flag.Args()

	if *check {
		if len(args) != 2 {
			return errors.New("usage: walarchive -check <archive> <segment-file>")
		}
		return verifyArchive(args[0], args[1])
	}

	if len(args) != 1 {
		return errors.New("usage: walarchive [-codec <name>] [-o <path>] <segment-file>")
	}
	segPath := args[0]

	codec, err := compression.ParseType(*codecName)
	if err != nil {
		return err
	}

	out := *outPath
	if out == "" {
		out = segPath + ".walarc"
	}

	n, err := writeArchive(segPath, out, codec)
	if err != nil {
		return err
	}
	fmt.Printf("%s: archived %d chunks to %s (%s)\n", segPath, n, out, codec)
	return nil
}

func writeArchive(segPath, outPath string, codec compression.Type) (int, error) {
	r, err := tswal.OpenSegment(segPath)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	f, err := os.Create(outPath)
	if err != nil {
		return 0, err
	}
	w := bufio.NewWriter(f)

	if err := writeArchiveHeader(w, codec, r.ID()); err != nil {
		_ = f.Close()
		return 0, err
	}

	chunks := 0
	for {
		payload, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			_ = f.Close()
			return chunks, err
		}
		if err := writeRecord(w, codec, payload); err != nil {
			_ = f.Close()
			return chunks, err
		}
		chunks++
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()
		return chunks, err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return chunks, err
	}
	return chunks, f.Close()
}

func writeArchiveHeader(w io.Writer, codec compression.Type, id tswal.SegmentID) error {
	if _, err := w.Write([]byte(archiveMagic)); err != nil {
		return err
	}
	if _, err := w.Write([]byte{archiveVersion, byte(codec)}); err != nil {
		return err
	}
	idBytes := id.AsBytes()
	_, err := w.Write(idBytes[:])
	return err
}

func writeRecord(w io.Writer, codec compression.Type, payload []byte) error {
	stored, err := compression.Compress(codec, payload)
	if err != nil {
		return err
	}

	var flags byte
	if stored == nil || len(stored) >= len(payload) && codec != compression.None {
		// No gain under the archive codec; store raw.
		flags = flagStoredRaw
		stored = payload
	}
	if codec == compression.None {
		flags = flagStoredRaw
	}

	header := make([]byte, 0, recordHeaderSize)
	header = append(header, flags)
	header = encoding.AppendFixed32(header, checksum.Value(stored))
	header = encoding.AppendFixed32(header, uint32(len(stored)))
	header = encoding.AppendFixed32(header, uint32(len(payload)))

	if _, err := w.Write(header); err != nil {
		return err
	}
	_, err = w.Write(stored)
	return err
}

// verifyArchive decodes every archive record and compares the payload
// stream against a fresh replay of the source segment.
func verifyArchive(arcPath, segPath string) error {
	payloads, id, err := readArchive(arcPath)
	if err != nil {
		return err
	}

	r, err := tswal.OpenSegment(segPath)
	if err != nil {
		return err
	}
	defer r.Close()

	if r.ID() != id {
		return fmt.Errorf("segment id mismatch: archive has %s, segment has %s", id, r.ID())
	}

	for i, want := range payloads {
		got, err := r.Next()
		if err != nil {
			return fmt.Errorf("segment chunk %d: %w", i, err)
		}
		if !bytes.Equal(got, want) {
			return fmt.Errorf("chunk %d differs between archive and segment", i)
		}
	}
	if _, err := r.Next(); !errors.Is(err, io.EOF) {
		return errors.New("segment has more chunks than archive")
	}

	fmt.Printf("%s: %d chunks match %s\n", arcPath, len(payloads), segPath)
	return nil
}

func readArchive(path string) ([][]byte, tswal.SegmentID, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	r := bufio.NewReader(f)

	header := make([]byte, len(archiveMagic)+2+tswal.SegmentIDSize)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, 0, fmt.Errorf("short archive header: %w", err)
	}
	if string(header[:len(archiveMagic)]) != archiveMagic {
		return nil, 0, fmt.Errorf("bad archive magic %q", header[:len(archiveMagic)])
	}
	if header[len(archiveMagic)] != archiveVersion {
		return nil, 0, fmt.Errorf("unsupported archive version %d", header[len(archiveMagic)])
	}
	codec := compression.Type(header[len(archiveMagic)+1])
	id := tswal.SegmentIDFromBytes(header[len(archiveMagic)+2:])

	var payloads [][]byte
	recHeader := make([]byte, recordHeaderSize)
	for {
		if _, err := io.ReadFull(r, recHeader); err != nil {
			if errors.Is(err, io.EOF) {
				return payloads, id, nil
			}
			return nil, 0, fmt.Errorf("short record header: %w", err)
		}
		flags := recHeader[0]
		crc := encoding.DecodeFixed32(recHeader[1:5])
		storedLen := encoding.DecodeFixed32(recHeader[5:9])
		uncompressedLen := encoding.DecodeFixed32(recHeader[9:13])

		stored := make([]byte, storedLen)
		if _, err := io.ReadFull(r, stored); err != nil {
			return nil, 0, fmt.Errorf("short record body: %w", err)
		}
		if got := checksum.Value(stored); got != crc {
			return nil, 0, fmt.Errorf("record checksum mismatch: got %08x, stored %08x", got, crc)
		}

		payload := stored
		if flags&flagStoredRaw == 0 {
			payload, err = compression.DecompressWithSize(codec, stored, int(uncompressedLen))
			if err != nil {
				return nil, 0, err
			}
		}
		if len(payload) != int(uncompressedLen) {
			return nil, 0, fmt.Errorf("record length mismatch: got %d, stored %d",
				len(payload), uncompressedLen)
		}
		payloads = append(payloads, payload)
	}
}
