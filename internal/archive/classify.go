package archive

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/klauspost/compress/gzip"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// sniffLen is how many leading bytes classification reads. Tar's magic
// lives at offset 257, so anything past the first block is unnecessary,
// but mimetype is cheapest with its default window.
const sniffLen = 3072

// Classify inspects the leading bytes of the file at path and reports
// whether they are a zip container, a tar container (plain or
// gzip-compressed) or plain content. The classification is
// authoritative and overrides any extension-based guess.
func Classify(path string) (domain.ArchiveKind, error) {
	f, err := os.Open(path)
	if err != nil {
		return domain.ArchiveUnknown, fmt.Errorf("open %s for classification: %w", path, err)
	}
	defer f.Close()

	head, err := readHead(f)
	if err != nil {
		return domain.ArchiveUnknown, fmt.Errorf("read %s for classification: %w", path, err)
	}

	mt := mimetype.Detect(head)
	switch {
	case mt.Is("application/zip"):
		return domain.ArchiveZip, nil
	case mt.Is("application/x-tar"):
		return domain.ArchiveTar, nil
	case mt.Is("application/gzip"):
		return classifyGzip(f)
	default:
		return domain.ArchiveNone, nil
	}
}

// classifyGzip peeks inside a gzip stream: a tar payload classifies the
// whole file as tar, matching how tape archives are conventionally
// shipped compressed. Any other payload is plain content.
func classifyGzip(f *os.File) (domain.ArchiveKind, error) {
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return domain.ArchiveUnknown, fmt.Errorf("rewind %s: %w", f.Name(), err)
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		// Sniffed as gzip but unreadable as one. Treat as plain
		// content and leave the bytes for downstream handling.
		return domain.ArchiveNone, nil
	}
	defer zr.Close()

	inner, err := readHead(zr)
	if err != nil {
		return domain.ArchiveNone, nil
	}
	if mimetype.Detect(inner).Is("application/x-tar") {
		return domain.ArchiveTar, nil
	}
	return domain.ArchiveNone, nil
}

// readHead reads up to sniffLen bytes, tolerating short files.
func readHead(r io.Reader) ([]byte, error) {
	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, err
	}
	return head[:n], nil
}
