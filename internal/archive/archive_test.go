package archive

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// buildZip returns zip bytes holding the given entries.
func buildZip(t *testing.T, entries map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range sortedKeys(entries) {
		f, err := w.Create(name)
		require.NoError(t, err)
		_, err = f.Write([]byte(entries[name]))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// buildTar returns tar bytes holding the given entries, optionally
// gzip-compressed.
func buildTar(t *testing.T, entries map[string]string, compress bool) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := tar.NewWriter(&buf)
	for _, name := range sortedKeys(entries) {
		content := []byte(entries[name])
		require.NoError(t, w.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0o644,
			Size:     int64(len(content)),
		}))
		_, err := w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	if !compress {
		return buf.Bytes()
	}

	var zipped bytes.Buffer
	zw := gzip.NewWriter(&zipped)
	_, err := zw.Write(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return zipped.Bytes()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

// TestClassify_Zip tests zip detection from content bytes
func TestClassify_Zip(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bundle.zip", buildZip(t, map[string]string{"a.txt": "hello"}))

	kind, err := Classify(path)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveZip, kind)
}

// TestClassify_IgnoresExtension tests that content overrides the filename
func TestClassify_IgnoresExtension(t *testing.T) {
	dir := t.TempDir()

	// Zip bytes behind an innocuous extension still classify as zip.
	path := writeFile(t, dir, "report.txt", buildZip(t, map[string]string{"a.txt": "hello"}))
	kind, err := Classify(path)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveZip, kind)

	// Plain bytes behind an archive extension classify as plain.
	path = writeFile(t, dir, "notes.zip", []byte("just some text\n"))
	kind, err = Classify(path)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveNone, kind)
}

// TestClassify_Tar tests tar detection from content bytes
func TestClassify_Tar(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bundle.tar", buildTar(t, map[string]string{"a.txt": "hello"}, false))

	kind, err := Classify(path)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveTar, kind)
}

// TestClassify_GzippedTar tests that compressed tars classify as tar
func TestClassify_GzippedTar(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "bundle.tgz", buildTar(t, map[string]string{"a.txt": "hello"}, true))

	kind, err := Classify(path)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveTar, kind)
}

// TestClassify_GzippedPlain tests that gzip of non-tar content is plain
func TestClassify_GzippedPlain(t *testing.T) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("plain gzip payload, not a tape archive"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	dir := t.TempDir()
	path := writeFile(t, dir, "payload.gz", buf.Bytes())

	kind, err := Classify(path)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveNone, kind)
}

// TestClassify_PlainText tests ordinary content
func TestClassify_PlainText(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doc.txt", []byte("nothing archival about this"))

	kind, err := Classify(path)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveNone, kind)
}

// TestClassify_EmptyFile tests a zero-byte file
func TestClassify_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "empty", nil)

	kind, err := Classify(path)
	require.NoError(t, err)
	assert.Equal(t, domain.ArchiveNone, kind)
}

// TestClassify_MissingFile tests the open failure path
func TestClassify_MissingFile(t *testing.T) {
	_, err := Classify(filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

// TestExtractZip tests extraction of a nested zip layout
func TestExtractZip(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "bundle.zip", buildZip(t, map[string]string{
		"a.txt":           "alpha",
		"nested/b.txt":    "beta",
		"nested/deep/c.b": "gamma",
	}))
	dest := filepath.Join(dir, "out")

	require.NoError(t, ExtractZip(src, dest))

	for name, want := range map[string]string{
		"a.txt":           "alpha",
		"nested/b.txt":    "beta",
		"nested/deep/c.b": "gamma",
	} {
		data, err := os.ReadFile(filepath.Join(dest, filepath.FromSlash(name)))
		require.NoError(t, err)
		assert.Equal(t, want, string(data))
	}
}

// TestExtractZip_Corrupt tests that zip corruption propagates
func TestExtractZip_Corrupt(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "bad.zip", []byte("this is not a zip archive at all"))

	err := ExtractZip(src, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.False(t, domain.IsTarCorrupt(err))
}

// TestExtractZip_EscapingEntry tests directory traversal rejection
func TestExtractZip_EscapingEntry(t *testing.T) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	f, err := w.CreateHeader(&zip.FileHeader{Name: "../evil.txt"})
	require.NoError(t, err)
	_, err = f.Write([]byte("escape attempt"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	dir := t.TempDir()
	src := writeFile(t, dir, "evil.zip", buf.Bytes())
	dest := filepath.Join(dir, "out")

	assert.Error(t, ExtractZip(src, dest))
	_, statErr := os.Stat(filepath.Join(dir, "evil.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

// TestExtractTar tests extraction of a nested tar layout
func TestExtractTar(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "bundle.tar", buildTar(t, map[string]string{
		"a.txt":        "alpha",
		"nested/b.txt": "beta",
	}, false))
	dest := filepath.Join(dir, "out")

	require.NoError(t, ExtractTar(src, dest))

	data, err := os.ReadFile(filepath.Join(dest, "nested", "b.txt"))
	require.NoError(t, err)
	assert.Equal(t, "beta", string(data))
}

// TestExtractTar_Gzipped tests transparent gzip handling
func TestExtractTar_Gzipped(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "bundle.tgz", buildTar(t, map[string]string{"a.txt": "alpha"}, true))
	dest := filepath.Join(dir, "out")

	require.NoError(t, ExtractTar(src, dest))

	data, err := os.ReadFile(filepath.Join(dest, "a.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))
}

// TestExtractTar_Corrupt tests that a malformed stream is recoverable
func TestExtractTar_Corrupt(t *testing.T) {
	dir := t.TempDir()
	src := writeFile(t, dir, "bad.tar", []byte("garbage bytes that are definitely not a tape archive header"))

	err := ExtractTar(src, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.True(t, domain.IsTarCorrupt(err))
}

// TestExtractTar_TruncatedBody tests recovery when an entry body is cut short
func TestExtractTar_TruncatedBody(t *testing.T) {
	full := buildTar(t, map[string]string{"a.txt": string(bytes.Repeat([]byte("x"), 300))}, false)

	dir := t.TempDir()
	src := writeFile(t, dir, "cut.tar", full[:600])

	err := ExtractTar(src, filepath.Join(dir, "out"))
	require.Error(t, err)
	assert.True(t, domain.IsTarCorrupt(err))
}

// TestExtractTar_EscapingEntry tests directory traversal rejection
func TestExtractTar_EscapingEntry(t *testing.T) {
	var buf bytes.Buffer
	w := tar.NewWriter(&buf)
	content := []byte("escape attempt")
	require.NoError(t, w.WriteHeader(&tar.Header{
		Name:     "../evil.txt",
		Typeflag: tar.TypeReg,
		Mode:     0o644,
		Size:     int64(len(content)),
	}))
	_, err := w.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	dir := t.TempDir()
	src := writeFile(t, dir, "evil.tar", buf.Bytes())
	dest := filepath.Join(dir, "out")

	assert.Error(t, ExtractTar(src, dest))
	_, statErr := os.Stat(filepath.Join(dir, "evil.txt"))
	assert.True(t, os.IsNotExist(statErr))
}
