package mcp

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

// mockExplorer is a mock implementation of driving.CorpusExplorer.
type mockExplorer struct {
	docs      []*domain.DocumentReference
	err       error
	location  string
	recursive bool
}

func (m *mockExplorer) List(
	_ context.Context,
	location string,
	recursive bool,
) ([]*domain.DocumentReference, error) {
	m.location = location
	m.recursive = recursive
	return m.docs, m.err
}

// mockStager is a mock implementation of driving.Stager.
type mockStager struct {
	run  *domain.StagingRun
	err  error
	opts driving.StageOptions
}

func (m *mockStager) Stage(
	_ context.Context,
	_ string,
	opts driving.StageOptions,
) (*domain.StagingRun, error) {
	m.opts = opts
	return m.run, m.err
}

// mockManifest is a mock implementation of driving.ManifestService.
type mockManifest struct {
	runs []*domain.StagingRun
	run  *domain.StagingRun
	docs []*domain.DocumentReference
	err  error
}

func (m *mockManifest) ListRuns(_ context.Context, _ int) ([]*domain.StagingRun, error) {
	return m.runs, m.err
}

func (m *mockManifest) GetRun(_ context.Context, _ string) (*domain.StagingRun, error) {
	return m.run, m.err
}

func (m *mockManifest) Documents(_ context.Context, _ string) ([]*domain.DocumentReference, error) {
	return m.docs, m.err
}

// mockSettings is a mock implementation of driving.SettingsService.
type mockSettings struct {
	settings domain.StagingSettings
	err      error
}

func (m *mockSettings) Get() (domain.StagingSettings, error) {
	return m.settings, m.err
}

func (m *mockSettings) Save(domain.StagingSettings) error                     { return nil }
func (m *mockSettings) SetOption(string, any) error                           { return nil }
func (m *mockSettings) SetBackendOption(domain.Backend, string, string) error { return nil }
func (m *mockSettings) GetOption(string) (string, bool)                       { return "", false }
func (m *mockSettings) Keys() []string                                        { return nil }
func (m *mockSettings) Path() string                                          { return "" }
