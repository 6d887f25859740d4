package services

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpus-cli/internal/archive"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// ArchiveExpander turns a fetched archive into a nested corpus: it
// extracts the container next to its cache entry and enumerates the
// extraction directory into child references. Children carry their
// extracted path as cache path, so the ordinary fetch step adopts them
// without a backend call and nested archives re-enter the pipeline
// like any other document.
type ArchiveExpander struct {
	enumerator driven.LocalEnumerator
}

// NewArchiveExpander creates an expander over a local enumerator.
func NewArchiveExpander(enumerator driven.LocalEnumerator) *ArchiveExpander {
	return &ArchiveExpander{enumerator: enumerator}
}

// Expand extracts the archive and returns its children in enumeration
// order, ready for the work queue.
//
// Error policy differs by container. A malformed tar stream is
// recovered here: the reference keeps its place with zero children and
// only a warning on record. A malformed zip fails the reference, which
// the caller marks failed while sibling documents continue. The split
// mirrors long-standing behaviour downstream consumers rely on.
func (e *ArchiveExpander) Expand(doc *domain.DocumentReference) ([]*domain.DocumentReference, error) {
	dir := doc.ExtractionDir()
	if dir == "" {
		return nil, fmt.Errorf("%w: %s is not an archive", domain.ErrInvalidInput, doc.RemoteKey)
	}

	switch doc.Archive {
	case domain.ArchiveZip:
		if err := archive.ExtractZip(doc.LocalCachePath, dir); err != nil {
			return nil, err
		}
	case domain.ArchiveTar:
		if err := archive.ExtractTar(doc.LocalCachePath, dir); err != nil {
			if !domain.IsTarCorrupt(err) {
				return nil, err
			}
			logger.Warn("Recovered malformed tar %s: %v", doc.RemoteKey, err)
			doc.Err = err
			return nil, nil
		}
	default:
		return nil, fmt.Errorf("%w: %s is not an archive", domain.ErrInvalidInput, doc.RemoteKey)
	}

	entries, err := e.enumerator.Enumerate(dir, true)
	if err != nil {
		return nil, fmt.Errorf("enumerate extraction of %s: %w", doc.RemoteKey, err)
	}

	children := make([]*domain.DocumentReference, 0, len(entries))
	for _, entry := range entries {
		if entry.Size == 0 {
			continue
		}
		children = append(children, &domain.DocumentReference{
			ID:             uuid.NewString(),
			RunID:          doc.RunID,
			RemoteKey:      entry.RelPath,
			LocalCachePath: entry.Path,
			Size:           entry.Size,
			State:          domain.StatePending,
			Depth:          doc.Depth + 1,
			ParentID:       &doc.ID,
		})
	}
	return children, nil
}
