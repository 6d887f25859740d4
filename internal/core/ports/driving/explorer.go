package driving

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// CorpusExplorer enumerates a remote corpus without fetching anything.
// It backs `corpus ls` and the MCP listing tool.
type CorpusExplorer interface {
	// List parses the location, resolves its backend and returns the
	// filtered corpus as pending references (remote key and size only).
	List(ctx context.Context, location string, recursive bool) ([]*domain.DocumentReference, error)
}

// BackendStatus describes one supported backend identifier.
type BackendStatus struct {
	// Backend is the identifier.
	Backend domain.Backend

	// Description is the human-readable backend name.
	Description string

	// Rootless is true for whitespace-placeholder backends.
	Rootless bool

	// Available is true when a factory is registered for the backend
	// in this build.
	Available bool
}

// BackendCatalogue reports which backends this build can stage from.
type BackendCatalogue interface {
	// Backends returns the supported set in stable order.
	Backends() []BackendStatus
}
