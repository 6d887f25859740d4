// Package localfs walks local directory trees into document
// candidates. The archive expander uses it to treat an extraction
// directory as a corpus of its own.
package localfs

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Enumerator implements the interface.
var _ driven.LocalEnumerator = (*Enumerator)(nil)

// Enumerator lists regular files under a local root.
type Enumerator struct{}

// NewEnumerator creates a new local enumerator.
func NewEnumerator() *Enumerator {
	return &Enumerator{}
}

// Enumerate lists regular files under root, shallow or recursive.
// Entries come back sorted by relative path so downstream processing
// is deterministic. Symlinks and other non-regular entries are
// skipped; they are not documents.
func (e *Enumerator) Enumerate(root string, recursive bool) ([]driven.LocalEntry, error) {
	var entries []driven.LocalEntry
	var err error
	if recursive {
		entries, err = walkTree(root)
	} else {
		entries, err = listDir(root)
	}
	if err != nil {
		return nil, err
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].RelPath < entries[j].RelPath
	})
	return entries, nil
}

func walkTree(root string) ([]driven.LocalEntry, error) {
	var entries []driven.LocalEntry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, driven.LocalEntry{
			Path:    path,
			RelPath: filepath.ToSlash(rel),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return entries, nil
}

func listDir(root string) ([]driven.LocalEntry, error) {
	dirEntries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", root, err)
	}

	entries := make([]driven.LocalEntry, 0, len(dirEntries))
	for _, d := range dirEntries {
		if !d.Type().IsRegular() {
			continue
		}
		info, err := d.Info()
		if err != nil {
			return nil, fmt.Errorf("read directory %s: %w", root, err)
		}
		entries = append(entries, driven.LocalEntry{
			Path:    filepath.Join(root, d.Name()),
			RelPath: d.Name(),
			Size:    info.Size(),
		})
	}
	return entries, nil
}
