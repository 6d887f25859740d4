package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/flate"
)

// ExtractZip extracts every entry of the zip at src into destDir,
// preserving entry order and relative layout. Any failure propagates;
// zip corruption is not recovered, unlike tar.
func ExtractZip(src, destDir string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return fmt.Errorf("open zip %s: %w", src, err)
	}
	defer r.Close()

	// Swap in the faster flate implementation for deflate entries.
	r.RegisterDecompressor(zip.Deflate, flate.NewReader)

	for _, entry := range r.File {
		if err := extractZipEntry(entry, destDir); err != nil {
			return err
		}
	}
	return nil
}

func extractZipEntry(entry *zip.File, destDir string) error {
	target, err := entryPath(destDir, entry.Name)
	if err != nil {
		return err
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(target, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", entry.Name, err)
	}

	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("open zip entry %s: %w", entry.Name, err)
	}
	defer rc.Close()

	return writeEntry(target, rc)
}

// writeEntry streams an archive entry to target.
func writeEntry(target string, r io.Reader) error {
	out, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", target, err)
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", target, err)
	}
	return out.Close()
}

// entryPath joins an archive entry name onto destDir, rejecting names
// that would escape the extraction directory.
func entryPath(destDir, name string) (string, error) {
	cleaned := filepath.FromSlash(name)
	if !filepath.IsLocal(cleaned) {
		return "", fmt.Errorf("archive entry %q escapes extraction directory", name)
	}
	return filepath.Join(destDir, cleaned), nil
}
