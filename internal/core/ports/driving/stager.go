package driving

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// StageOptions configure one staging run. The CLI resolves them from
// persisted settings plus command-line flags before invoking the
// stager.
type StageOptions struct {
	// WorkingDir is where fetched objects are cached.
	WorkingDir string

	// OutputDir is where plain-document handoff records are written.
	OutputDir string

	// Recursive lists the full transitive object set.
	Recursive bool

	// ExpandArchives expands zip/tar documents into child corpora.
	ExpandArchives bool

	// Workers bounds the staging worker pool.
	Workers int

	// KeepCache leaves fetched bytes on disk after the run.
	KeepCache bool

	// Progress, when non-nil, receives staging events as they happen.
	// It is called from worker goroutines and must be cheap.
	Progress ProgressFunc
}

// ProgressFunc receives staging events during a run.
type ProgressFunc func(StageEvent)

// StageEventKind discriminates progress events.
type StageEventKind string

// Progress event kinds.
const (
	// EventCorpusListed fires once after listing; Count carries the
	// corpus size.
	EventCorpusListed StageEventKind = "corpus_listed"

	// EventDocumentQueued fires when expansion adds a nested reference
	// to the work queue.
	EventDocumentQueued StageEventKind = "document_queued"

	// EventDocumentFetched fires when a document's bytes are cached
	// (or found already present).
	EventDocumentFetched StageEventKind = "document_fetched"

	// EventDocumentDone fires when a document reaches a terminal state.
	EventDocumentDone StageEventKind = "document_done"
)

// StageEvent is one progress notification from a running stage.
type StageEvent struct {
	// Kind discriminates the event.
	Kind StageEventKind

	// Key is the document's remote key, when the event concerns one.
	Key string

	// State is the terminal state for EventDocumentDone.
	State domain.DocumentState

	// Depth is the archive nesting depth of the document.
	Depth int

	// Count is the corpus size for EventCorpusListed.
	Count int

	// Err carries the per-document failure for failed documents.
	Err error
}

// Stager executes staging runs: it discovers the corpus behind an
// address, fetches every document into the local working area, expands
// archives into nested corpora and records the whole tree in the
// manifest.
type Stager interface {
	// Stage runs the full pipeline for a location string. Fatal
	// configuration errors (bad address, unsupported backend, empty
	// corpus) return before any document work; per-document failures
	// are recorded on their references and do not stop the run.
	// The returned run carries final counters and status.
	Stage(ctx context.Context, location string, opts StageOptions) (*domain.StagingRun, error)
}
