package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func newTestServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleParseAddress(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &Ports{Explorer: &mockExplorer{}, Stager: &mockStager{}})

	t.Run("decomposes a bucket address", func(t *testing.T) {
		_, output, err := server.handleParseAddress(ctx, nil, ParseAddressInput{Address: "s3://bucket/reports/2024"})

		require.NoError(t, err)
		assert.Equal(t, "s3", output.Backend)
		assert.Equal(t, "bucket", output.Root)
		assert.Equal(t, "reports/2024", output.Object)
		assert.False(t, output.Rootless)
	})

	t.Run("recognises the rootless placeholder", func(t *testing.T) {
		_, output, err := server.handleParseAddress(ctx, nil, ParseAddressInput{Address: "dropbox:// /"})

		require.NoError(t, err)
		assert.Equal(t, "dropbox", output.Backend)
		assert.Equal(t, " ", output.Root)
		assert.True(t, output.Rootless)
	})

	t.Run("rejects an invalid address", func(t *testing.T) {
		_, _, err := server.handleParseAddress(ctx, nil, ParseAddressInput{Address: "not-an-address"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidAddress)
	})

	t.Run("rejects an unsupported backend", func(t *testing.T) {
		_, _, err := server.handleParseAddress(ctx, nil, ParseAddressInput{Address: "ftp://host/path"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUnsupportedBackend)
	})
}

func TestServer_handleList(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the enumerated objects", func(t *testing.T) {
		explorer := &mockExplorer{
			docs: []*domain.DocumentReference{
				{RemoteKey: "bucket/a.txt", Size: 10},
				{RemoteKey: "bucket/b.pdf", Size: 2048},
			},
		}
		server := newTestServer(t, &Ports{Explorer: explorer, Stager: &mockStager{}})

		_, output, err := server.handleList(ctx, nil, ListInput{Address: "s3://bucket", Recursive: true})

		require.NoError(t, err)
		assert.Equal(t, 2, output.Count)
		assert.False(t, output.Truncated)
		require.Len(t, output.Objects, 2)
		assert.Equal(t, "bucket/a.txt", output.Objects[0].Key)
		assert.Equal(t, int64(2048), output.Objects[1].Size)
		assert.Equal(t, "s3://bucket", explorer.location)
		assert.True(t, explorer.recursive)
	})

	t.Run("truncates to the requested limit", func(t *testing.T) {
		explorer := &mockExplorer{}
		for i := 0; i < 5; i++ {
			explorer.docs = append(explorer.docs, &domain.DocumentReference{
				RemoteKey: fmt.Sprintf("bucket/doc-%d.txt", i),
			})
		}
		server := newTestServer(t, &Ports{Explorer: explorer, Stager: &mockStager{}})

		_, output, err := server.handleList(ctx, nil, ListInput{Address: "s3://bucket", Limit: 3})

		require.NoError(t, err)
		assert.Equal(t, 5, output.Count)
		assert.True(t, output.Truncated)
		assert.Len(t, output.Objects, 3)
	})

	t.Run("returns error on listing failure", func(t *testing.T) {
		explorer := &mockExplorer{err: errors.New("bucket does not exist")}
		server := newTestServer(t, &Ports{Explorer: explorer, Stager: &mockStager{}})

		_, _, err := server.handleList(ctx, nil, ListInput{Address: "s3://bucket"})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "bucket does not exist")
	})
}

func TestServer_handleStage(t *testing.T) {
	ctx := context.Background()

	completedRun := &domain.StagingRun{
		ID:        "run-1",
		Status:    domain.RunCompleted,
		OutputDir: "/tmp/output",
		Counts:    domain.RunCounts{Total: 4, Plain: 3, Archives: 1},
	}

	t.Run("returns the run summary", func(t *testing.T) {
		stager := &mockStager{run: completedRun}
		server := newTestServer(t, &Ports{Explorer: &mockExplorer{}, Stager: stager})

		_, output, err := server.handleStage(ctx, nil, StageInput{Address: "s3://bucket"})

		require.NoError(t, err)
		assert.Equal(t, "run-1", output.RunID)
		assert.Equal(t, "completed", output.Status)
		assert.Equal(t, "/tmp/output", output.OutputDir)
		assert.Equal(t, 4, output.Total)
		assert.Equal(t, 3, output.Plain)
		assert.Equal(t, 1, output.Archives)
	})

	t.Run("applies settings defaults", func(t *testing.T) {
		stager := &mockStager{run: completedRun}
		settings := &mockSettings{settings: domain.StagingSettings{
			WorkingDir:     "/var/corpus/cache",
			OutputDir:      "/var/corpus/output",
			ExpandArchives: true,
			MaxWorkers:     6,
			KeepCache:      true,
		}}
		server := newTestServer(t, &Ports{Explorer: &mockExplorer{}, Stager: stager, Settings: settings})

		_, _, err := server.handleStage(ctx, nil, StageInput{Address: "s3://bucket"})

		require.NoError(t, err)
		assert.Equal(t, "/var/corpus/cache", stager.opts.WorkingDir)
		assert.Equal(t, "/var/corpus/output", stager.opts.OutputDir)
		assert.Equal(t, 6, stager.opts.Workers)
		assert.True(t, stager.opts.ExpandArchives)
		assert.True(t, stager.opts.KeepCache)
	})

	t.Run("input overrides settings", func(t *testing.T) {
		stager := &mockStager{run: completedRun}
		settings := &mockSettings{settings: domain.DefaultStagingSettings()}
		server := newTestServer(t, &Ports{Explorer: &mockExplorer{}, Stager: stager, Settings: settings})

		noExpand := false
		_, _, err := server.handleStage(ctx, nil, StageInput{
			Address:        "s3://bucket",
			Recursive:      true,
			ExpandArchives: &noExpand,
			Workers:        9,
		})

		require.NoError(t, err)
		assert.True(t, stager.opts.Recursive)
		assert.False(t, stager.opts.ExpandArchives)
		assert.Equal(t, 9, stager.opts.Workers)
	})

	t.Run("falls back to the corpus directories", func(t *testing.T) {
		stager := &mockStager{run: completedRun}
		server := newTestServer(t, &Ports{Explorer: &mockExplorer{}, Stager: stager})

		_, _, err := server.handleStage(ctx, nil, StageInput{Address: "s3://bucket"})

		require.NoError(t, err)
		assert.Contains(t, stager.opts.WorkingDir, ".corpus")
		assert.Contains(t, stager.opts.OutputDir, ".corpus")
		assert.NotEqual(t, stager.opts.WorkingDir, stager.opts.OutputDir)
	})

	t.Run("fatal error surfaces", func(t *testing.T) {
		stager := &mockStager{err: domain.ErrEmptyCorpus}
		server := newTestServer(t, &Ports{Explorer: &mockExplorer{}, Stager: stager})

		_, _, err := server.handleStage(ctx, nil, StageInput{Address: "s3://bucket"})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrEmptyCorpus)
	})

	t.Run("cancelled run still reports its summary", func(t *testing.T) {
		failedRun := &domain.StagingRun{
			ID:     "run-2",
			Status: domain.RunFailed,
			Error:  "run cancelled: context canceled",
			Counts: domain.RunCounts{Total: 4, Plain: 1},
		}
		stager := &mockStager{run: failedRun, err: errors.New("run cancelled: context canceled")}
		server := newTestServer(t, &Ports{Explorer: &mockExplorer{}, Stager: stager})

		_, output, err := server.handleStage(ctx, nil, StageInput{Address: "s3://bucket"})

		require.NoError(t, err)
		assert.Equal(t, "failed", output.Status)
		assert.Contains(t, output.Error, "cancelled")
	})
}
