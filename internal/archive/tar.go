package archive

import (
	"archive/tar"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// ExtractTar extracts the tar at src into destDir. Gzip-compressed
// tars are decompressed transparently. A stream that cannot be read as
// tar returns a *domain.TarError so callers can recover locally;
// filesystem errors while writing entries propagate as-is.
func ExtractTar(src, destDir string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open tar %s: %w", src, err)
	}
	defer f.Close()

	stream, err := tarStream(src, f)
	if err != nil {
		return err
	}

	tr := tar.NewReader(stream)
	for {
		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			// Malformed stream, recoverable by contract.
			return domain.NewTarError(src, err)
		}
		if err := extractTarEntry(tr, hdr, src, destDir); err != nil {
			return err
		}
	}
}

// tarStream returns the raw or decompressed byte stream for src.
func tarStream(src string, f *os.File) (io.Reader, error) {
	var magic [2]byte
	if _, err := io.ReadFull(f, magic[:]); err != nil {
		// Too short to carry a gzip magic; let the tar reader complain.
		if _, serr := f.Seek(0, io.SeekStart); serr != nil {
			return nil, fmt.Errorf("rewind tar %s: %w", src, serr)
		}
		return f, nil
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind tar %s: %w", src, err)
	}

	if magic[0] != 0x1f || magic[1] != 0x8b {
		return f, nil
	}

	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, domain.NewTarError(src, err)
	}
	return zr, nil
}

func extractTarEntry(tr *tar.Reader, hdr *tar.Header, src, destDir string) error {
	target, err := entryPath(destDir, hdr.Name)
	if err != nil {
		return err
	}

	switch hdr.Typeflag {
	case tar.TypeDir:
		return os.MkdirAll(target, 0o755)
	case tar.TypeReg:
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", hdr.Name, err)
		}
		if err := writeEntry(target, tr); err != nil {
			// A truncated body is a malformed stream, not a disk
			// failure; keep it recoverable.
			if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, tar.ErrHeader) {
				return domain.NewTarError(src, err)
			}
			return err
		}
		return nil
	default:
		// Links, devices and other special entries are not documents.
		return nil
	}
}
