package localfs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTestTree(t *testing.T) string {
	t.Helper()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub", "deep"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b.txt"), []byte("bb"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("a"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "c.txt"), []byte("ccc"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "deep", "d.txt"), []byte("dddd"), 0o644))
	return root
}

// TestEnumerator_Recursive tests the full-tree walk
func TestEnumerator_Recursive(t *testing.T) {
	root := writeTestTree(t)

	entries, err := NewEnumerator().Enumerate(root, true)

	require.NoError(t, err)
	require.Len(t, entries, 4)

	rels := make([]string, 0, len(entries))
	for _, e := range entries {
		rels = append(rels, e.RelPath)
	}
	assert.Equal(t, []string{"a.txt", "b.txt", "sub/c.txt", "sub/deep/d.txt"}, rels)

	// Absolute paths and sizes travel with each entry.
	assert.Equal(t, filepath.Join(root, "a.txt"), entries[0].Path)
	assert.Equal(t, int64(1), entries[0].Size)
	assert.Equal(t, int64(4), entries[3].Size)
}

// TestEnumerator_Shallow tests that only immediate children come back
func TestEnumerator_Shallow(t *testing.T) {
	root := writeTestTree(t)

	entries, err := NewEnumerator().Enumerate(root, false)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "a.txt", entries[0].RelPath)
	assert.Equal(t, "b.txt", entries[1].RelPath)
}

// TestEnumerator_EmptyDir tests an existing but empty root
func TestEnumerator_EmptyDir(t *testing.T) {
	root := t.TempDir()

	entries, err := NewEnumerator().Enumerate(root, true)

	require.NoError(t, err)
	assert.Empty(t, entries)
}

// TestEnumerator_MissingRoot tests the error path
func TestEnumerator_MissingRoot(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")

	_, err := NewEnumerator().Enumerate(missing, true)
	assert.Error(t, err)

	_, err = NewEnumerator().Enumerate(missing, false)
	assert.Error(t, err)
}

// TestEnumerator_SkipsNonRegular tests that symlinks are not documents
func TestEnumerator_SkipsNonRegular(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "real.txt"), []byte("x"), 0o644))
	if err := os.Symlink(filepath.Join(root, "real.txt"), filepath.Join(root, "link.txt")); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	entries, err := NewEnumerator().Enumerate(root, true)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "real.txt", entries[0].RelPath)
}
