// Command corpus stages remote document corpora onto the local
// filesystem. This is the composition root: it wires the storage
// backends, the manifest store and the core services together, then
// hands control to the CLI.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/localfs"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driven/manifest/sqlite"
	"github.com/custodia-labs/corpus-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/corpus-cli/internal/backends"
	"github.com/custodia-labs/corpus-cli/internal/backends/azure"
	"github.com/custodia-labs/corpus-cli/internal/backends/dropbox"
	"github.com/custodia-labs/corpus-cli/internal/backends/gcs"
	"github.com/custodia-labs/corpus-cli/internal/backends/s3"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/services"
)

// version is set at release time via ldflags.
var version = "dev"

func main() {
	// An interrupt cancels the command context so a running stage
	// finalises its manifest record instead of dying mid-write.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fail("initialise configuration: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)

	// Backends available in this build. Parsing accepts the full
	// identifier set; unregistered backends surface as unavailable.
	registry := services.NewBackendRegistry()
	registry.Register(domain.BackendS3, s3.Factory)
	registry.Register(domain.BackendS3A, s3.Factory)
	registry.Register(domain.BackendGS, gcs.Factory)
	registry.Register(domain.BackendGCS, gcs.Factory)
	registry.Register(domain.BackendAzure, azure.Factory)
	registry.Register(domain.BackendABFS, azure.Factory)
	registry.Register(domain.BackendDropbox,
		backends.RateLimited(dropbox.Factory, dropbox.DefaultRequestsPerSecond))

	store, err := sqlite.NewStore("")
	if err != nil {
		return fail("open manifest store: %w", err)
	}
	defer store.Close()

	stager := services.NewStagingOrchestrator(registry, store, localfs.NewEnumerator(), settingsService)
	explorer := services.NewCorpusExplorer(registry, settingsService)
	manifest := services.NewManifestService(store)

	cli.SetVersion(version)
	cli.SetStager(stager)
	cli.SetExplorer(explorer)
	cli.SetManifestService(manifest)
	cli.SetSettingsService(settingsService)
	cli.SetBackendCatalogue(registry)

	return cli.ExecuteContext(ctx)
}

// fail reports a wiring error the same way cobra reports command
// errors, so both read alike on stderr.
func fail(format string, args ...any) error {
	err := fmt.Errorf(format, args...)
	fmt.Fprintln(os.Stderr, "Error:", err)
	return err
}
