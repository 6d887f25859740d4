package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

var backendsCmd = &cobra.Command{
	Use:   "backends",
	Short: "List supported storage backends",
	Long: `Lists every backend identifier the address grammar recognises,
whether its top-level container is a named bucket or the account root,
and whether this build can actually stage from it.`,
	RunE: runBackends,
}

func init() {
	rootCmd.AddCommand(backendsCmd)
}

func runBackends(cmd *cobra.Command, _ []string) error {
	if backendCatalogue == nil {
		return errors.New("backend catalogue not configured")
	}

	cmd.Println("Supported backends:")
	cmd.Println()
	for _, status := range backendCatalogue.Backends() {
		root := "bucket root"
		if status.Rootless {
			root = "rootless"
		}
		availability := "available"
		if !status.Available {
			availability = "not available in this build"
		}
		cmd.Printf("  %-9s %-28s %-12s %s\n", status.Backend, status.Description, root, availability)
	}
	cmd.Println()
	cmd.Println("Addresses take the form <backend>://<root>[/<path>].")
	cmd.Println(`Rootless backends use a whitespace placeholder: "dropbox:// /".`)

	return nil
}
