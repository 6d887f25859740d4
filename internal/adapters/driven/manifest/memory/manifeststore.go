// Package memory provides an in-memory manifest store, used in tests
// and as a fallback when no database path is configured.
package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure ManifestStore implements the interface.
var _ driven.ManifestStore = (*ManifestStore)(nil)

// ManifestStore is an in-memory implementation of driven.ManifestStore.
type ManifestStore struct {
	mu       sync.RWMutex
	runs     map[string]domain.StagingRun
	runOrder []string
	docs     map[string][]*domain.DocumentReference
}

// NewManifestStore creates a new in-memory manifest store.
func NewManifestStore() *ManifestStore {
	return &ManifestStore{
		runs: make(map[string]domain.StagingRun),
		docs: make(map[string][]*domain.DocumentReference),
	}
}

// CreateRun records a new staging run.
func (s *ManifestStore) CreateRun(_ context.Context, run *domain.StagingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; !exists {
		s.runOrder = append(s.runOrder, run.ID)
	}
	s.runs[run.ID] = *run
	return nil
}

// UpdateRun persists the current status and counters of a run.
func (s *ManifestStore) UpdateRun(_ context.Context, run *domain.StagingRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.runs[run.ID]; !exists {
		return domain.ErrNotFound
	}
	s.runs[run.ID] = *run
	return nil
}

// GetRun retrieves a run by ID.
func (s *ManifestStore) GetRun(_ context.Context, id string) (*domain.StagingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *ManifestStore) ListRuns(_ context.Context, limit int) ([]*domain.StagingRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.StagingRun, 0, len(s.runOrder))
	for i := len(s.runOrder) - 1; i >= 0; i-- {
		run := s.runs[s.runOrder[i]]
		result = append(result, &run)
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result, nil
}

// SaveDocument inserts or updates one document reference.
func (s *ManifestStore) SaveDocument(_ context.Context, doc *domain.DocumentReference) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *doc
	refs := s.docs[doc.RunID]
	for i := range refs {
		if refs[i].ID == doc.ID {
			refs[i] = &cp
			return nil
		}
	}
	s.docs[doc.RunID] = append(refs, &cp)
	return nil
}

// ListDocuments returns every reference recorded for a run, in
// insertion order.
func (s *ManifestStore) ListDocuments(_ context.Context, runID string) ([]*domain.DocumentReference, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	refs := s.docs[runID]
	result := make([]*domain.DocumentReference, 0, len(refs))
	for _, ref := range refs {
		cp := *ref
		result = append(result, &cp)
	}
	return result, nil
}

// Close releases nothing for the in-memory store.
func (s *ManifestStore) Close() error {
	return nil
}
