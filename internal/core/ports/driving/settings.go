package driving

import "github.com/custodia-labs/corpus-cli/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current staging settings, with defaults applied.
	Get() (domain.StagingSettings, error)

	// Save persists staging settings.
	Save(settings domain.StagingSettings) error

	// SetOption updates a single top-level setting by its config key.
	SetOption(key string, value any) error

	// SetBackendOption stores one backend access option (credential,
	// endpoint, rate limit) in the per-backend map.
	SetBackendOption(backend domain.Backend, key, value string) error

	// GetOption returns the persisted value for a configuration key,
	// rendered as a string, and whether the key is set.
	GetOption(key string) (string, bool)

	// Keys returns every persisted configuration key in sorted order.
	Keys() []string

	// Path returns the configuration file location.
	Path() string
}
