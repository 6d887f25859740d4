package domain

import "time"

// RunStatus describes the overall outcome of a staging run.
type RunStatus string

// Run states.
const (
	// RunRunning marks a run still processing documents.
	RunRunning RunStatus = "running"

	// RunCompleted marks a run that processed its whole corpus.
	// Individual documents may still have failed.
	RunCompleted RunStatus = "completed"

	// RunFailed marks a run aborted by a fatal error or cancellation.
	RunFailed RunStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s RunStatus) IsValid() bool {
	switch s {
	case RunRunning, RunCompleted, RunFailed:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (s RunStatus) String() string {
	return string(s)
}

// RunCounts aggregates per-state document totals for a run.
type RunCounts struct {
	// Total is every reference discovered, including nested ones.
	Total int

	// Plain counts documents that reached StatePlain.
	Plain int

	// Archives counts documents expanded as archives.
	Archives int

	// Skipped counts archives left unexpanded by configuration.
	Skipped int

	// Failed counts documents that reached StateFailed.
	Failed int
}

// StagingRun records one staging invocation in the manifest.
type StagingRun struct {
	// ID is the unique identifier for the run.
	ID string

	// Address is the location string the run was invoked with.
	Address string

	// WorkingDir is where fetched objects were cached.
	WorkingDir string

	// OutputDir is where handoff records were written.
	OutputDir string

	// Recursive is whether listing covered the full transitive set.
	Recursive bool

	// ExpandArchives is whether archive expansion was enabled.
	ExpandArchives bool

	// Workers is the worker pool bound used.
	Workers int

	// Status is the run outcome.
	Status RunStatus

	// Counts aggregates document totals.
	Counts RunCounts

	// Error holds the fatal failure message for RunFailed runs.
	Error string

	// StartedAt is when the run began.
	StartedAt time.Time

	// CompletedAt is when the run reached a terminal status.
	CompletedAt *time.Time
}
