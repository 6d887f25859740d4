package domain

import "fmt"

// Default worker pool bound. Fetches are network-bound, so a small
// multiple of typical connection counts is plenty.
const DefaultMaxWorkers = 4

// StagingSettings holds all staging configuration.
type StagingSettings struct {
	// WorkingDir is where fetched objects are cached. Empty means the
	// application default under the user's corpus directory.
	WorkingDir string

	// OutputDir is where plain-document handoff records are written.
	OutputDir string

	// Recursive lists the full transitive object set when true;
	// otherwise only the immediate children of the address path.
	Recursive bool

	// ExpandArchives expands zip and tar documents into child corpora.
	// When false archives are marked and skipped, not treated as
	// errors.
	ExpandArchives bool

	// MaxWorkers bounds the staging worker pool.
	MaxWorkers int

	// KeepCache leaves fetched bytes on disk after a run. Disabling it
	// removes cache entries for successfully processed documents only;
	// failed documents always keep their bytes for diagnosis.
	KeepCache bool

	// Backends holds per-backend access options (credentials,
	// endpoints, rate limits), passed through to the backend factory
	// unmodified.
	Backends map[string]map[string]string
}

// DefaultStagingSettings returns settings with sensible defaults.
// Backend credentials are left unconfigured; users supply them via
// `corpus config set-credential`.
func DefaultStagingSettings() StagingSettings {
	return StagingSettings{
		Recursive:      false,
		ExpandArchives: true,
		MaxWorkers:     DefaultMaxWorkers,
		KeepCache:      true,
		Backends:       map[string]map[string]string{},
	}
}

// Validate checks the settings are internally consistent.
func (s StagingSettings) Validate() error {
	if s.MaxWorkers < 1 {
		return fmt.Errorf("%w: max_workers must be at least 1, got %d", ErrInvalidInput, s.MaxWorkers)
	}
	for id := range s.Backends {
		if !Backend(id).IsValid() {
			return fmt.Errorf("%w: unknown backend %q in settings", ErrInvalidInput, id)
		}
	}
	return nil
}

// BackendOptions returns the access-option map for a backend, never
// nil. The map is opaque to the core; factories interpret it.
func (s StagingSettings) BackendOptions(b Backend) map[string]string {
	opts := s.Backends[b.String()]
	if opts == nil {
		return map[string]string{}
	}
	return opts
}
