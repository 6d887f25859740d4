package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

// Ensure ManifestService implements the interface.
var _ driving.ManifestService = (*ManifestService)(nil)

// ManifestService exposes recorded staging runs for inspection.
type ManifestService struct {
	store driven.ManifestStore
}

// NewManifestService creates a new manifest service.
func NewManifestService(store driven.ManifestStore) *ManifestService {
	return &ManifestService{store: store}
}

// ListRuns returns the most recent runs, newest first.
func (s *ManifestService) ListRuns(ctx context.Context, limit int) ([]*domain.StagingRun, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative", domain.ErrInvalidInput)
	}
	runs, err := s.store.ListRuns(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// GetRun retrieves one run by ID.
func (s *ManifestService) GetRun(ctx context.Context, id string) (*domain.StagingRun, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: run ID is required", domain.ErrInvalidInput)
	}
	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// Documents returns the references recorded for a run, in insertion
// order.
func (s *ManifestService) Documents(ctx context.Context, runID string) ([]*domain.DocumentReference, error) {
	if runID == "" {
		return nil, fmt.Errorf("%w: run ID is required", domain.ErrInvalidInput)
	}
	docs, err := s.store.ListDocuments(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("list documents for run %s: %w", runID, err)
	}
	return docs, nil
}
