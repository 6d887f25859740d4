package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var lsCmd = &cobra.Command{
	Use:   "ls <address>",
	Short: "List the objects behind an address without fetching them",
	Long: `Enumerates the remote corpus an address points at and prints one
object key per line. Nothing is fetched and nothing is recorded in the
manifest.

Examples:
  corpus ls s3://my-bucket/reports
  corpus ls gs://my-bucket --recursive --long`,
	Args: cobra.ExactArgs(1),
	RunE: runLs,
}

func init() {
	lsCmd.Flags().BoolP("recursive", "r", false, "list the full transitive object set")
	lsCmd.Flags().BoolP("long", "l", false, "show object sizes and a trailing total")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	if explorerService == nil {
		return errors.New("explorer service not configured")
	}

	recursive, _ := cmd.Flags().GetBool("recursive")
	long, _ := cmd.Flags().GetBool("long")

	docs, err := explorerService.List(cmd.Context(), args[0], recursive)
	if err != nil {
		return fmt.Errorf("listing failed: %w", err)
	}

	var total int64
	for _, doc := range docs {
		if long {
			cmd.Printf("%12d  %s\n", doc.Size, doc.RemoteKey)
			total += doc.Size
		} else {
			cmd.Println(doc.RemoteKey)
		}
	}
	if long {
		cmd.Printf("Total: %d objects, %d bytes\n", len(docs), total)
	}

	return nil
}
