package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/custodia-labs/corpus-cli/internal/archive"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// DocumentLifecycle moves one reference through fetch, classification
// and handoff. It is constructed per run, bound to the run's resolved
// backend and directories.
type DocumentLifecycle struct {
	fs         driven.RemoteFS
	workingDir string
	outputDir  string
}

// NewDocumentLifecycle creates a lifecycle bound to a resolved backend
// and the run's cache and output directories.
func NewDocumentLifecycle(fs driven.RemoteFS, workingDir, outputDir string) *DocumentLifecycle {
	return &DocumentLifecycle{
		fs:         fs,
		workingDir: workingDir,
		outputDir:  outputDir,
	}
}

// Fetch materialises the reference's bytes in the local cache and
// advances it to StateFetched. A cache path that already holds a file
// is adopted without touching the backend, which makes fetching
// at-most-once per path: re-runs and extracted children skip the
// download. Failures come back as a per-document FetchError; any
// partial file is left on disk for diagnosis.
func (l *DocumentLifecycle) Fetch(ctx context.Context, doc *domain.DocumentReference) error {
	if err := os.MkdirAll(filepath.Dir(doc.LocalCachePath), 0o755); err != nil {
		return domain.NewFetchError(doc.RemoteKey, err)
	}

	if fi, err := os.Stat(doc.LocalCachePath); err == nil && fi.Mode().IsRegular() {
		logger.Debug("Cache hit for %s, skipping fetch", doc.RemoteKey)
		doc.State = domain.StateFetched
		doc.FetchedAt = time.Now()
		return nil
	}

	if err := l.fs.Fetch(ctx, doc.RemoteKey, doc.LocalCachePath); err != nil {
		return domain.NewFetchError(doc.RemoteKey, err)
	}

	doc.State = domain.StateFetched
	doc.FetchedAt = time.Now()
	return nil
}

// Classify inspects the cached bytes and records the archive kind on
// the reference. The content classification is authoritative; the
// remote key's extension plays no part.
func (l *DocumentLifecycle) Classify(doc *domain.DocumentReference) error {
	kind, err := archive.Classify(doc.LocalCachePath)
	if err != nil {
		return fmt.Errorf("classify %s: %w", doc.RemoteKey, err)
	}
	doc.Archive = kind
	return nil
}

// handoffRecord is the JSON shape written for each plain document.
// Downstream consumers read these records instead of the manifest.
type handoffRecord struct {
	RemoteKey      string    `json:"remote_key"`
	LocalCachePath string    `json:"local_cache_path"`
	Size           int64     `json:"size"`
	State          string    `json:"state"`
	Depth          int       `json:"depth"`
	ParentID       *string   `json:"parent_id,omitempty"`
	FetchedAt      time.Time `json:"fetched_at"`
}

// EmitRecord writes the handoff record for a plain document into the
// output directory, mirroring the cache layout.
func (l *DocumentLifecycle) EmitRecord(doc *domain.DocumentReference) error {
	recordPath, err := doc.OutputRecordPath(l.outputDir, l.workingDir)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(recordPath), 0o755); err != nil {
		return fmt.Errorf("create output directory for %s: %w", doc.RemoteKey, err)
	}

	record := handoffRecord{
		RemoteKey:      doc.RemoteKey,
		LocalCachePath: doc.LocalCachePath,
		Size:           doc.Size,
		State:          doc.State.String(),
		Depth:          doc.Depth,
		ParentID:       doc.ParentID,
		FetchedAt:      doc.FetchedAt,
	}
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record for %s: %w", doc.RemoteKey, err)
	}

	if err := os.WriteFile(recordPath, data, 0o644); err != nil {
		return fmt.Errorf("write record for %s: %w", doc.RemoteKey, err)
	}
	return nil
}

// DiscardCache removes the cached bytes for a successfully processed
// document. Failures are logged and never propagated; a leftover cache
// entry must not mask a completed run.
func (l *DocumentLifecycle) DiscardCache(doc *domain.DocumentReference) {
	if err := os.Remove(doc.LocalCachePath); err != nil && !os.IsNotExist(err) {
		logger.Warn("Failed to remove cache entry %s: %v", doc.LocalCachePath, err)
	}
}
