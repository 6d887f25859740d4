package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyWorkingDir     = "staging.working_dir"
	keyOutputDir      = "staging.output_dir"
	keyRecursive      = "staging.recursive"
	keyExpandArchives = "staging.expand_archives"
	keyMaxWorkers     = "staging.max_workers"
	keyKeepCache      = "staging.keep_cache"

	backendKeyPrefix = "backends."
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current staging settings, with defaults applied for
// anything the config file leaves unset.
func (s *SettingsService) Get() (domain.StagingSettings, error) {
	settings := domain.DefaultStagingSettings()

	settings.WorkingDir = s.getString(keyWorkingDir, settings.WorkingDir)
	settings.OutputDir = s.getString(keyOutputDir, settings.OutputDir)
	settings.Recursive = s.getBool(keyRecursive, settings.Recursive)
	settings.ExpandArchives = s.getBool(keyExpandArchives, settings.ExpandArchives)
	settings.MaxWorkers = s.getInt(keyMaxWorkers, settings.MaxWorkers)
	settings.KeepCache = s.getBool(keyKeepCache, settings.KeepCache)

	for _, key := range s.configStore.Keys() {
		if !strings.HasPrefix(key, backendKeyPrefix) {
			continue
		}
		backend, option, found := strings.Cut(strings.TrimPrefix(key, backendKeyPrefix), ".")
		if !found {
			continue
		}
		if settings.Backends[backend] == nil {
			settings.Backends[backend] = make(map[string]string)
		}
		settings.Backends[backend][option] = s.configStore.GetString(key)
	}

	if err := settings.Validate(); err != nil {
		return domain.StagingSettings{}, err
	}
	return settings, nil
}

// Save persists staging settings.
func (s *SettingsService) Save(settings domain.StagingSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	pairs := []struct {
		key   string
		value any
	}{
		{keyWorkingDir, settings.WorkingDir},
		{keyOutputDir, settings.OutputDir},
		{keyRecursive, settings.Recursive},
		{keyExpandArchives, settings.ExpandArchives},
		{keyMaxWorkers, settings.MaxWorkers},
		{keyKeepCache, settings.KeepCache},
	}
	for _, p := range pairs {
		if err := s.configStore.Set(p.key, p.value); err != nil {
			return fmt.Errorf("save %s: %w", p.key, err)
		}
	}

	for backend, options := range settings.Backends {
		for option, value := range options {
			key := backendKeyPrefix + backend + "." + option
			if err := s.configStore.Set(key, value); err != nil {
				return fmt.Errorf("save %s: %w", key, err)
			}
		}
	}

	return s.configStore.Save()
}

// SetOption updates a single top-level staging setting by its config
// key. The value must already carry the key's type; the CLI parses
// flag text before calling.
func (s *SettingsService) SetOption(key string, value any) error {
	switch key {
	case keyWorkingDir, keyOutputDir:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: %s expects a string", domain.ErrInvalidInput, key)
		}
	case keyRecursive, keyExpandArchives, keyKeepCache:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: %s expects a boolean", domain.ErrInvalidInput, key)
		}
	case keyMaxWorkers:
		workers, ok := value.(int)
		if !ok {
			return fmt.Errorf("%w: %s expects an integer", domain.ErrInvalidInput, key)
		}
		if workers < 1 {
			return fmt.Errorf("%w: %s must be at least 1", domain.ErrInvalidInput, key)
		}
	default:
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return s.configStore.Save()
}

// SetBackendOption stores one backend access option in the per-backend
// map. Option values are opaque here; backend factories interpret
// them.
func (s *SettingsService) SetBackendOption(backend domain.Backend, key, value string) error {
	if !backend.IsValid() {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedBackend, backend)
	}
	if key == "" {
		return fmt.Errorf("%w: option key is required", domain.ErrInvalidInput)
	}

	fullKey := backendKeyPrefix + backend.String() + "." + key
	if err := s.configStore.Set(fullKey, value); err != nil {
		return fmt.Errorf("save %s: %w", fullKey, err)
	}
	return s.configStore.Save()
}

// GetOption returns the persisted value for a configuration key,
// rendered as a string, and whether the key is set.
func (s *SettingsService) GetOption(key string) (string, bool) {
	value, ok := s.configStore.Get(key)
	if !ok {
		return "", false
	}
	return fmt.Sprint(value), true
}

// Keys returns every persisted configuration key in sorted order.
func (s *SettingsService) Keys() []string {
	return s.configStore.Keys()
}

// Path returns the configuration file location.
func (s *SettingsService) Path() string {
	return s.configStore.Path()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val == 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}
