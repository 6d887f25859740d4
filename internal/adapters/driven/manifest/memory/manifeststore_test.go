package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// TestManifestStore_RunRoundTrip tests create, update and get
func TestManifestStore_RunRoundTrip(t *testing.T) {
	store := NewManifestStore()
	ctx := context.Background()

	run := &domain.StagingRun{
		ID:        "run-1",
		Address:   "s3://bucket/data",
		Status:    domain.RunRunning,
		StartedAt: time.Now(),
	}
	require.NoError(t, store.CreateRun(ctx, run))

	run.Status = domain.RunCompleted
	run.Counts = domain.RunCounts{Total: 3, Plain: 3}
	require.NoError(t, store.UpdateRun(ctx, run))

	got, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	assert.Equal(t, domain.RunCompleted, got.Status)
	assert.Equal(t, 3, got.Counts.Plain)
}

// TestManifestStore_GetRun_NotFound tests the missing-run path
func TestManifestStore_GetRun_NotFound(t *testing.T) {
	store := NewManifestStore()

	_, err := store.GetRun(context.Background(), "nope")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// TestManifestStore_UpdateRun_NotFound tests updating an unknown run
func TestManifestStore_UpdateRun_NotFound(t *testing.T) {
	store := NewManifestStore()

	err := store.UpdateRun(context.Background(), &domain.StagingRun{ID: "nope"})
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// TestManifestStore_ListRuns tests newest-first ordering and limits
func TestManifestStore_ListRuns(t *testing.T) {
	store := NewManifestStore()
	ctx := context.Background()

	for _, id := range []string{"run-1", "run-2", "run-3"} {
		require.NoError(t, store.CreateRun(ctx, &domain.StagingRun{ID: id}))
	}

	runs, err := store.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "run-3", runs[0].ID)
	assert.Equal(t, "run-1", runs[2].ID)

	limited, err := store.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "run-3", limited[0].ID)
	assert.Equal(t, "run-2", limited[1].ID)
}

// TestManifestStore_Documents tests upsert and insertion order
func TestManifestStore_Documents(t *testing.T) {
	store := NewManifestStore()
	ctx := context.Background()

	docA := &domain.DocumentReference{ID: "doc-a", RunID: "run-1", RemoteKey: "bucket/a.txt", State: domain.StatePending}
	docB := &domain.DocumentReference{ID: "doc-b", RunID: "run-1", RemoteKey: "bucket/b.txt", State: domain.StatePending}
	require.NoError(t, store.SaveDocument(ctx, docA))
	require.NoError(t, store.SaveDocument(ctx, docB))

	// Upsert keeps the original position.
	docA.State = domain.StatePlain
	require.NoError(t, store.SaveDocument(ctx, docA))

	docs, err := store.ListDocuments(ctx, "run-1")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "doc-a", docs[0].ID)
	assert.Equal(t, domain.StatePlain, docs[0].State)
	assert.Equal(t, "doc-b", docs[1].ID)
}

// TestManifestStore_Documents_EmptyRun tests an unknown run ID
func TestManifestStore_Documents_EmptyRun(t *testing.T) {
	store := NewManifestStore()

	docs, err := store.ListDocuments(context.Background(), "nope")
	require.NoError(t, err)
	assert.Empty(t, docs)
}
