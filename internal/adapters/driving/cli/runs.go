package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded staging runs",
	Long: `View the staging runs recorded in the manifest.

Use "runs list" for recent runs and "runs show <id>" for one run's
full document tree.`,
	RunE: runRunsList,
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent staging runs",
	RunE:  runRunsList,
}

var runsShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show one run and its document tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runRunsShow,
}

func init() {
	runsCmd.PersistentFlags().IntP("limit", "n", 10, "maximum number of runs to list (0 for all)")
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
	rootCmd.AddCommand(runsCmd)
}

func runRunsList(cmd *cobra.Command, _ []string) error {
	if manifestService == nil {
		return errors.New("manifest service not configured")
	}

	limit, _ := cmd.Flags().GetInt("limit")

	runs, err := manifestService.ListRuns(cmd.Context(), limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(runs) == 0 {
		cmd.Println("No staging runs recorded.")
		return nil
	}

	for _, run := range runs {
		cmd.Printf("%s  %-9s  %s\n", run.ID, run.Status, run.Address)
		cmd.Printf("    started %s, %d documents (%d plain, %d archives, %d failed)\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.Counts.Total, run.Counts.Plain, run.Counts.Archives, run.Counts.Failed)
	}
	cmd.Printf("\nTotal: %d runs\n", len(runs))

	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	if manifestService == nil {
		return errors.New("manifest service not configured")
	}

	ctx := cmd.Context()

	run, err := manifestService.GetRun(ctx, args[0])
	if err != nil {
		return fmt.Errorf("failed to get run: %w", err)
	}

	cmd.Printf("Run: %s\n", run.ID)
	cmd.Printf("  Address:   %s\n", run.Address)
	cmd.Printf("  Status:    %s\n", run.Status)
	cmd.Printf("  Started:   %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	if run.CompletedAt != nil {
		cmd.Printf("  Completed: %s\n", run.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	cmd.Printf("  Workers:   %d\n", run.Workers)
	cmd.Printf("  Recursive: %t, expand archives: %t\n", run.Recursive, run.ExpandArchives)
	if run.Error != "" {
		cmd.Printf("  Error:     %s\n", run.Error)
	}
	printRunCounts(cmd, run.Counts)

	docs, err := manifestService.Documents(ctx, run.ID)
	if err != nil {
		return fmt.Errorf("failed to list documents: %w", err)
	}
	if len(docs) == 0 {
		return nil
	}

	cmd.Println()
	cmd.Println("Documents:")
	for _, doc := range docs {
		cmd.Printf("  %s%s\n", strings.Repeat("  ", doc.Depth), documentLine(doc))
	}

	return nil
}

func printRunCounts(cmd *cobra.Command, counts domain.RunCounts) {
	cmd.Printf("  Documents: %d total, %d plain, %d archives\n",
		counts.Total, counts.Plain, counts.Archives)
	if counts.Skipped > 0 {
		cmd.Printf("  Skipped:   %d archives left unexpanded\n", counts.Skipped)
	}
	if counts.Failed > 0 {
		cmd.Printf("  Failed:    %d\n", counts.Failed)
	}
}

// documentLine renders one manifest reference for the tree listing.
func documentLine(doc *domain.DocumentReference) string {
	line := fmt.Sprintf("%s [%s]", doc.RemoteKey, doc.State)
	if doc.Archive.IsArchive() {
		line = fmt.Sprintf("%s [%s, %s]", doc.RemoteKey, doc.State, doc.Archive)
	}
	if doc.Err != nil {
		line += ": " + doc.Err.Error()
	}
	return line
}
