package domain

import (
	"fmt"
	"path"
	"path/filepath"
	"time"
)

// DocumentState tracks a reference through the staging lifecycle.
type DocumentState string

// Lifecycle states. Pending and Fetched are transient; the rest are
// terminal. Every processing path, including error exits, must land a
// reference on a terminal state.
const (
	// StatePending marks a discovered document not yet fetched.
	StatePending DocumentState = "pending"

	// StateFetched marks a document whose bytes are in the local cache
	// but not yet classified.
	StateFetched DocumentState = "fetched"

	// StatePlain marks a terminal non-archive document, eligible for
	// downstream handoff.
	StatePlain DocumentState = "plain"

	// StateArchiveExpanded marks a terminal archive processed through
	// expansion. Children hold the enumerated contents; a recovered
	// corrupt tar leaves the slice empty.
	StateArchiveExpanded DocumentState = "archive_expanded"

	// StateArchiveSkipped marks a terminal archive left unexpanded
	// because expansion is disabled by configuration.
	StateArchiveSkipped DocumentState = "archive_skipped"

	// StateFailed marks a terminal document whose fetch or expansion
	// failed. The run continues without it.
	StateFailed DocumentState = "failed"
)

// IsValid returns true if the state is recognised.
func (s DocumentState) IsValid() bool {
	switch s {
	case StatePending, StateFetched, StatePlain,
		StateArchiveExpanded, StateArchiveSkipped, StateFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true once a reference needs no further processing.
func (s DocumentState) Terminal() bool {
	switch s {
	case StatePlain, StateArchiveExpanded, StateArchiveSkipped, StateFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s DocumentState) String() string {
	return string(s)
}

// ArchiveKind is the content classification of a fetched document.
// It is unknown until the downloaded bytes are inspected; the
// classification is authoritative and overrides any extension-based
// guess.
type ArchiveKind string

// Classification outcomes.
const (
	// ArchiveUnknown means the bytes have not been inspected yet.
	ArchiveUnknown ArchiveKind = ""

	// ArchiveNone means the document is plain content.
	ArchiveNone ArchiveKind = "none"

	// ArchiveZip means the bytes are a zip container.
	ArchiveZip ArchiveKind = "zip"

	// ArchiveTar means the bytes are a tar container, possibly
	// gzip-compressed.
	ArchiveTar ArchiveKind = "tar"
)

// IsArchive returns true for the concrete archive kinds.
func (k ArchiveKind) IsArchive() bool {
	return k == ArchiveZip || k == ArchiveTar
}

// ExtractionSuffix returns the fixed directory suffix appended to an
// archive's cache path to form its extraction directory. Empty for
// non-archive kinds.
func (k ArchiveKind) ExtractionSuffix() string {
	switch k {
	case ArchiveZip:
		return "-zip-uncompressed"
	case ArchiveTar:
		return "-tar-uncompressed"
	default:
		return ""
	}
}

// String returns the string representation.
func (k ArchiveKind) String() string {
	return string(k)
}

// DocumentReference is one discovered object, pending or already
// materialised in the local cache. References form a tree: expanding an
// archive appends a child reference for every file found inside it, and
// those children may themselves be archives.
type DocumentReference struct {
	// ID is the unique identifier for this reference within a run.
	ID string

	// RunID links to the StagingRun that discovered this reference.
	RunID string

	// RemoteKey is the fully qualified object path within the backend.
	// For nested documents it is the path relative to the parent
	// archive's extraction directory.
	RemoteKey string

	// LocalCachePath is where the object's bytes live locally.
	// Derived from RemoteKey and the working directory, never
	// user-supplied. For nested documents it is the extracted file
	// path, which the fetch step then treats as already cached.
	LocalCachePath string

	// Size is the object size in bytes reported at discovery.
	Size int64

	// State is the current lifecycle state.
	State DocumentState

	// Archive is the content classification, resolved after fetch.
	Archive ArchiveKind

	// Depth is the archive nesting depth; zero for top-level documents.
	Depth int

	// ParentID links to the enclosing archive reference, if any.
	ParentID *string

	// Children holds the references produced by expanding this archive,
	// in enumeration order. A parent exclusively owns its children and
	// outlives them.
	Children []*DocumentReference

	// Err records the failure that drove this reference to StateFailed,
	// or the warning attached to a recovered expansion. Nil otherwise.
	Err error

	// FetchedAt is when the bytes landed in the cache, or when an
	// existing cache entry was adopted.
	FetchedAt time.Time
}

// Name returns the base name of the document within its corpus.
func (d *DocumentReference) Name() string {
	return path.Base(d.RemoteKey)
}

// ExtractionDir returns the deterministic directory this archive
// expands into. It is only meaningful once Archive is a concrete
// archive kind.
func (d *DocumentReference) ExtractionDir() string {
	suffix := d.Archive.ExtractionSuffix()
	if suffix == "" {
		return ""
	}
	return d.LocalCachePath + suffix
}

// OutputRecordPath derives the handoff record location for a plain
// document: outputDir joined with the cache path relative to
// workingDir, with a ".json" suffix. The same rule covers top-level and
// nested documents because extraction directories live inside the
// working directory.
func (d *DocumentReference) OutputRecordPath(outputDir, workingDir string) (string, error) {
	rel, err := filepath.Rel(workingDir, d.LocalCachePath)
	if err != nil {
		return "", fmt.Errorf("derive output path for %s: %w", d.RemoteKey, err)
	}
	return filepath.Join(outputDir, rel+".json"), nil
}

// Walk visits this reference and every descendant in depth-first,
// enumeration order.
func (d *DocumentReference) Walk(visit func(*DocumentReference)) {
	visit(d)
	for _, child := range d.Children {
		child.Walk(visit)
	}
}

// joinLocal converts a slash-separated remote path fragment to the
// local filesystem form under dir.
func joinLocal(dir, rel string) string {
	return filepath.Join(dir, filepath.FromSlash(rel))
}
