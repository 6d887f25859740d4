package driving

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// ManifestService exposes recorded staging runs for inspection.
type ManifestService interface {
	// ListRuns returns the most recent runs, newest first.
	// A limit of 0 means no limit.
	ListRuns(ctx context.Context, limit int) ([]*domain.StagingRun, error)

	// GetRun retrieves one run by ID.
	// Returns domain.ErrNotFound if it does not exist.
	GetRun(ctx context.Context, id string) (*domain.StagingRun, error)

	// Documents returns the references recorded for a run, in
	// insertion order.
	Documents(ctx context.Context, runID string) ([]*domain.DocumentReference, error)
}
