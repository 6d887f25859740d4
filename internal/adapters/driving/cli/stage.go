package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/corpus-cli/internal/adapters/driving/tui"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
)

var stageCmd = &cobra.Command{
	Use:   "stage <address>",
	Short: "Stage a remote corpus into the local working area",
	Long: `Enumerates the corpus behind an address, fetches every document into
the local cache, expands zip and tar archives into nested corpora and
records the whole tree in the run manifest.

Flags override persisted settings for this run only; use
"corpus config set" to change the defaults.

Examples:
  corpus stage s3://my-bucket/reports
  corpus stage gs://my-bucket --recursive --workers 8
  corpus stage az://container/data --progress`,
	Args: cobra.ExactArgs(1),
	RunE: runStage,
}

func init() {
	stageCmd.Flags().BoolP("recursive", "r", false, "list the full transitive object set")
	stageCmd.Flags().Bool("expand-archives", true, "expand zip and tar documents into child corpora")
	stageCmd.Flags().IntP("workers", "w", 0, "worker pool size (default from settings)")
	stageCmd.Flags().String("working-dir", "", "cache directory for fetched objects")
	stageCmd.Flags().String("output-dir", "", "directory for handoff records")
	stageCmd.Flags().Bool("keep-cache", true, "keep fetched bytes on disk after the run")
	stageCmd.Flags().Bool("progress", false, "show interactive progress")
	rootCmd.AddCommand(stageCmd)
}

func runStage(cmd *cobra.Command, args []string) error {
	if stagerService == nil {
		return errors.New("stager service not configured")
	}
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	opts, err := resolveStageOptions(cmd)
	if err != nil {
		return err
	}

	if progress, _ := cmd.Flags().GetBool("progress"); progress {
		return runStageWithProgress(cmd, args[0], opts)
	}
	return runStagePlain(cmd, args[0], opts)
}

// runStagePlain runs the stage while printing line-based progress,
// suitable for pipes and dumb terminals.
func runStagePlain(cmd *cobra.Command, location string, opts driving.StageOptions) error {
	var total, done atomic.Int64
	opts.Progress = func(event driving.StageEvent) {
		switch event.Kind {
		case driving.EventCorpusListed:
			total.Store(int64(event.Count))
		case driving.EventDocumentQueued:
			total.Add(1)
		case driving.EventDocumentDone:
			done.Add(1)
		}
	}

	type outcome struct {
		run *domain.StagingRun
		err error
	}
	resultCh := make(chan outcome, 1)
	go func() {
		run, err := stagerService.Stage(cmd.Context(), location, opts)
		resultCh <- outcome{run: run, err: err}
	}()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	printed := false
	last := int64(-1)
	for {
		select {
		case result := <-resultCh:
			if printed {
				cmd.Printf("\rStaged %d/%d documents.           \n", done.Load(), total.Load())
			}
			if result.run != nil {
				printRunSummary(cmd, result.run)
			}
			if result.err != nil {
				return fmt.Errorf("staging failed: %w", result.err)
			}
			return nil
		case <-ticker.C:
			if d := done.Load(); d > last {
				cmd.Printf("\rStaging... %d/%d documents", d, total.Load())
				last = d
				printed = true
			}
		}
	}
}

// runStageWithProgress runs the stage behind the bubbletea progress
// display. The display owns the run context so Ctrl+C cancels the run
// rather than killing the process mid-write.
func runStageWithProgress(cmd *cobra.Command, location string, opts driving.StageOptions) error {
	// Panic recovery keeps the terminal usable and surfaces the trace
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in progress display: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	program := tea.NewProgram(tui.New(location, cancel), tea.WithOutput(cmd.OutOrStdout()))

	opts.Progress = func(event driving.StageEvent) {
		program.Send(tui.ProgressMsg(event))
	}

	go func() {
		run, err := stagerService.Stage(ctx, location, opts)
		program.Send(tui.DoneMsg{Run: run, Err: err})
	}()

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("progress display failed: %w", err)
	}

	model, ok := final.(*tui.Model)
	if !ok {
		return nil
	}
	if model.Run() != nil {
		printRunSummary(cmd, model.Run())
	}
	if model.Err() != nil {
		return fmt.Errorf("staging failed: %w", model.Err())
	}
	return nil
}

// resolveStageOptions layers command-line flags over persisted
// settings, falling back to the default corpus directories.
func resolveStageOptions(cmd *cobra.Command) (driving.StageOptions, error) {
	settings, err := settingsService.Get()
	if err != nil {
		return driving.StageOptions{}, fmt.Errorf("load settings: %w", err)
	}

	opts := driving.StageOptions{
		WorkingDir:     settings.WorkingDir,
		OutputDir:      settings.OutputDir,
		Recursive:      settings.Recursive,
		ExpandArchives: settings.ExpandArchives,
		Workers:        settings.MaxWorkers,
		KeepCache:      settings.KeepCache,
	}

	flags := cmd.Flags()
	if flags.Changed("recursive") {
		opts.Recursive, _ = flags.GetBool("recursive")
	}
	if flags.Changed("expand-archives") {
		opts.ExpandArchives, _ = flags.GetBool("expand-archives")
	}
	if flags.Changed("workers") {
		opts.Workers, _ = flags.GetInt("workers")
	}
	if dir, _ := flags.GetString("working-dir"); dir != "" {
		opts.WorkingDir = dir
	}
	if dir, _ := flags.GetString("output-dir"); dir != "" {
		opts.OutputDir = dir
	}
	if flags.Changed("keep-cache") {
		opts.KeepCache, _ = flags.GetBool("keep-cache")
	}

	if opts.WorkingDir == "" {
		if opts.WorkingDir, err = defaultCorpusDir("cache"); err != nil {
			return driving.StageOptions{}, err
		}
	}
	if opts.OutputDir == "" {
		if opts.OutputDir, err = defaultCorpusDir("output"); err != nil {
			return driving.StageOptions{}, err
		}
	}

	return opts, nil
}

func defaultCorpusDir(sub string) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".corpus", sub), nil
}

func printRunSummary(cmd *cobra.Command, run *domain.StagingRun) {
	cmd.Printf("Run %s %s\n", run.ID, run.Status)
	cmd.Printf("  Address:   %s\n", run.Address)
	cmd.Printf("  Output:    %s\n", run.OutputDir)
	printRunCounts(cmd, run.Counts)
	if run.Error != "" {
		cmd.Printf("  Error:     %s\n", run.Error)
	}
}
