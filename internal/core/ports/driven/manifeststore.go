package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// ManifestStore persists staging runs and their document references so
// finished and in-flight runs can be inspected and resumed.
type ManifestStore interface {
	// CreateRun records a new staging run.
	CreateRun(ctx context.Context, run *domain.StagingRun) error

	// UpdateRun persists the current status and counters of a run.
	UpdateRun(ctx context.Context, run *domain.StagingRun) error

	// GetRun retrieves a run by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetRun(ctx context.Context, id string) (*domain.StagingRun, error)

	// ListRuns returns the most recent runs, newest first.
	// A limit of 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]*domain.StagingRun, error)

	// SaveDocument inserts or updates one document reference. It is
	// called at discovery and again at each terminal transition.
	SaveDocument(ctx context.Context, doc *domain.DocumentReference) error

	// ListDocuments returns every reference recorded for a run, in
	// insertion order.
	ListDocuments(ctx context.Context, runID string) ([]*domain.DocumentReference, error)

	// Close releases the underlying storage.
	Close() error
}
