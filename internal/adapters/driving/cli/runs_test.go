package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// mockManifest implements driving.ManifestService for testing.
type mockManifest struct {
	runs  []*domain.StagingRun
	run   *domain.StagingRun
	docs  []*domain.DocumentReference
	err   error
	limit int
	runID string
}

func (m *mockManifest) ListRuns(_ context.Context, limit int) ([]*domain.StagingRun, error) {
	m.limit = limit
	return m.runs, m.err
}

func (m *mockManifest) GetRun(_ context.Context, id string) (*domain.StagingRun, error) {
	m.runID = id
	if m.err != nil {
		return nil, m.err
	}
	return m.run, nil
}

func (m *mockManifest) Documents(_ context.Context, runID string) ([]*domain.DocumentReference, error) {
	m.runID = runID
	return m.docs, nil
}

func setupRunsTest(manifest *mockManifest) func() {
	oldManifest := manifestService
	manifestService = manifest
	return func() {
		manifestService = oldManifest
	}
}

func TestRunsCmd_Use(t *testing.T) {
	assert.Equal(t, "runs", runsCmd.Use)
}

func TestRunsCmd_Short(t *testing.T) {
	assert.Contains(t, runsCmd.Short, "staging runs")
}

func TestRunsCmd_NoRuns(t *testing.T) {
	cleanup := setupRunsTest(&mockManifest{})
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"runs"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No staging runs recorded.")
}

func TestRunsCmd_ListsRuns(t *testing.T) {
	started := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	manifest := &mockManifest{
		runs: []*domain.StagingRun{
			{
				ID:        "run-1",
				Address:   "s3://bucket/reports",
				Status:    domain.RunCompleted,
				StartedAt: started,
				Counts:    domain.RunCounts{Total: 4, Plain: 3, Archives: 1},
			},
		},
	}
	cleanup := setupRunsTest(manifest)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"runs", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "run-1")
	assert.Contains(t, output, "s3://bucket/reports")
	assert.Contains(t, output, "started 2024-03-01 09:30:00, 4 documents (3 plain, 1 archives, 0 failed)")
	assert.Contains(t, output, "Total: 1 runs")
	assert.Equal(t, 10, manifest.limit)
}

func TestRunsCmd_LimitFlag(t *testing.T) {
	manifest := &mockManifest{}
	cleanup := setupRunsTest(manifest)
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"runs", "list", "--limit", "3"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, 3, manifest.limit)
}

func TestRunsShowCmd_PrintsDocumentTree(t *testing.T) {
	started := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	completed := started.Add(42 * time.Second)
	manifest := &mockManifest{
		run: &domain.StagingRun{
			ID:             "run-1",
			Address:        "s3://bucket/reports",
			Status:         domain.RunCompleted,
			StartedAt:      started,
			CompletedAt:    &completed,
			Workers:        4,
			Recursive:      true,
			ExpandArchives: true,
			Counts:         domain.RunCounts{Total: 3, Plain: 2, Archives: 1, Failed: 1},
		},
		docs: []*domain.DocumentReference{
			{RemoteKey: "bucket/bundle.zip", State: domain.StateArchiveExpanded, Archive: domain.ArchiveZip},
			{RemoteKey: "bundle.zip/a.txt", State: domain.StatePlain, Depth: 1},
			{RemoteKey: "bucket/b.txt", State: domain.StateFailed, Err: errors.New("connection reset")},
		},
	}
	cleanup := setupRunsTest(manifest)
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"runs", "show", "run-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	output := buf.String()
	assert.Contains(t, output, "Run: run-1")
	assert.Contains(t, output, "Completed: 2024-03-01 09:30:42")
	assert.Contains(t, output, "Documents: 3 total, 2 plain, 1 archives")
	assert.Contains(t, output, "Failed:    1")
	assert.Contains(t, output, "  bucket/bundle.zip [archive_expanded, zip]")
	assert.Contains(t, output, "    bundle.zip/a.txt [plain]")
	assert.Contains(t, output, "  bucket/b.txt [failed]: connection reset")
	assert.Equal(t, "run-1", manifest.runID)
}

func TestRunsShowCmd_RunNotFound(t *testing.T) {
	cleanup := setupRunsTest(&mockManifest{err: domain.ErrNotFound})
	defer cleanup()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"runs", "show", "missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.ErrorContains(t, err, "failed to get run")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRunsCmd_NotConfigured(t *testing.T) {
	oldManifest := manifestService
	manifestService = nil
	defer func() { manifestService = oldManifest }()

	rootCmd.SetOut(new(bytes.Buffer))
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs([]string{"runs"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.EqualError(t, err, "manifest service not configured")
}
