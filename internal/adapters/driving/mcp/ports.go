package mcp

import (
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Explorer enumerates remote corpora.
	Explorer driving.CorpusExplorer

	// Stager executes staging runs.
	Stager driving.Stager

	// Manifest exposes recorded runs.
	Manifest driving.ManifestService

	// Settings supplies staging defaults.
	Settings driving.SettingsService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Explorer == nil {
		return ErrMissingExplorer
	}
	if p.Stager == nil {
		return ErrMissingStager
	}
	// Manifest and Settings are optional; the runs resource and the
	// stage tool degrade to built-in defaults without them.
	return nil
}
