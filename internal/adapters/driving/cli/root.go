package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// version is the build version, overridden at release time via ldflags.
var version = "dev"

// Services are injected by the composition root before Execute runs.
// Commands guard against the nil defaults so a partially wired binary
// fails with a clear message instead of a panic.
var (
	stagerService    driving.Stager
	explorerService  driving.CorpusExplorer
	manifestService  driving.ManifestService
	settingsService  driving.SettingsService
	backendCatalogue driving.BackendCatalogue
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Stage remote document corpora onto the local filesystem",
	Long: `corpus stages remote document collections for local processing.

Point it at an address of the form <backend>://<root>[/<path>] and it
enumerates the objects there, fetches them into a local cache, expands
zip and tar archives into nested corpora, and records the result in a
run manifest.

Examples:
  corpus backends
  corpus ls s3://my-bucket/reports --recursive
  corpus stage s3://my-bucket/reports --progress
  corpus stage "dropbox:// /" --expand-archives=false`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		if verbose {
			logger.SetVerbose(true)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command with the injected services.
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command under ctx, which commands reach
// through cmd.Context(). Cancelling it interrupts a running stage.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// SetVersion sets the version string reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetStager injects the staging service.
func SetStager(s driving.Stager) {
	stagerService = s
}

// SetExplorer injects the corpus listing service.
func SetExplorer(s driving.CorpusExplorer) {
	explorerService = s
}

// SetManifestService injects the run inspection service.
func SetManifestService(s driving.ManifestService) {
	manifestService = s
}

// SetSettingsService injects the settings service.
func SetSettingsService(s driving.SettingsService) {
	settingsService = s
}

// SetBackendCatalogue injects the backend catalogue.
func SetBackendCatalogue(c driving.BackendCatalogue) {
	backendCatalogue = c
}
