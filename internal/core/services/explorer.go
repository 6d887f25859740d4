package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

// Ensure CorpusExplorer implements the interface.
var _ driving.CorpusExplorer = (*CorpusExplorer)(nil)

// CorpusExplorer enumerates remote corpora without fetching anything.
type CorpusExplorer struct {
	registry *BackendRegistry
	settings driving.SettingsService
}

// NewCorpusExplorer creates a new corpus explorer.
func NewCorpusExplorer(registry *BackendRegistry, settings driving.SettingsService) *CorpusExplorer {
	return &CorpusExplorer{
		registry: registry,
		settings: settings,
	}
}

// List parses the location, resolves its backend and returns the
// filtered corpus as pending references. Nothing is downloaded and
// nothing is recorded in the manifest.
func (e *CorpusExplorer) List(
	ctx context.Context,
	location string,
	recursive bool,
) ([]*domain.DocumentReference, error) {
	addr, err := domain.ParseAddress(location)
	if err != nil {
		return nil, err
	}

	settings, err := e.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	fs, err := e.registry.Resolve(ctx, addr, settings.BackendOptions(addr.Backend))
	if err != nil {
		return nil, err
	}
	defer fs.Close()

	objects, err := NewCorpusLister(fs, addr).List(ctx, recursive)
	if err != nil {
		return nil, err
	}

	refs := make([]*domain.DocumentReference, 0, len(objects))
	for _, obj := range objects {
		refs = append(refs, &domain.DocumentReference{
			RemoteKey: obj.Key,
			Size:      obj.Size,
			State:     domain.StatePending,
		})
	}
	return refs, nil
}
