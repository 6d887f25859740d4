package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

// Ensure BackendRegistry implements the interface.
var _ driving.BackendCatalogue = (*BackendRegistry)(nil)

// BackendRegistry maps backend identifiers to their factories. The
// composition root registers the factories this build carries; parsing
// accepts the full identifier set, so an address can be valid yet
// unstageable when its factory is missing.
type BackendRegistry struct {
	factories map[domain.Backend]driven.BackendFactory
}

// NewBackendRegistry creates an empty backend registry.
func NewBackendRegistry() *BackendRegistry {
	return &BackendRegistry{
		factories: make(map[domain.Backend]driven.BackendFactory),
	}
}

// Register installs a factory for a backend identifier. Registering
// the same identifier twice replaces the earlier factory.
func (r *BackendRegistry) Register(b domain.Backend, factory driven.BackendFactory) {
	r.factories[b] = factory
}

// Resolve creates the RemoteFS for a parsed address. Resolution
// happens exactly once per run, at configuration time; afterwards the
// pipeline holds only the RemoteFS instance. An identifier with no
// registered factory fails with domain.ErrUnsupportedBackend before
// any network access.
func (r *BackendRegistry) Resolve(
	ctx context.Context,
	addr domain.BackendAddress,
	options map[string]string,
) (driven.RemoteFS, error) {
	factory, ok := r.factories[addr.Backend]
	if !ok {
		return nil, fmt.Errorf("%w: no factory registered for %q", domain.ErrUnsupportedBackend, addr.Backend)
	}

	fs, err := factory(ctx, addr, options)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", addr.Backend, err)
	}
	return fs, nil
}

// Supports returns true if a factory is registered for the backend.
func (r *BackendRegistry) Supports(b domain.Backend) bool {
	_, ok := r.factories[b]
	return ok
}

// Backends returns the full supported identifier set in stable order,
// with availability reflecting the registered factories.
func (r *BackendRegistry) Backends() []driving.BackendStatus {
	all := domain.AllBackends()
	result := make([]driving.BackendStatus, 0, len(all))
	for _, b := range all {
		result = append(result, driving.BackendStatus{
			Backend:     b,
			Description: b.Description(),
			Rootless:    b.Rootless(),
			Available:   r.Supports(b),
		})
	}
	return result
}
