package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// BackendFactory creates a RemoteFS for a parsed address. The options
// map carries backend-specific credentials and settings (endpoint,
// region, token) opaque to the core; each factory interprets its own
// keys and ignores the rest.
//
// Factories are registered with the backend registry at startup and
// resolved exactly once per run, at configuration time. After
// resolution the core only ever holds the RemoteFS instance, never the
// backend identifier.
type BackendFactory func(ctx context.Context, addr domain.BackendAddress, options map[string]string) (RemoteFS, error)
