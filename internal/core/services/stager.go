package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure StagingOrchestrator implements the interface.
var _ driving.Stager = (*StagingOrchestrator)(nil)

// StagingOrchestrator coordinates staging runs end to end: address
// resolution, corpus discovery, the bounded worker pool and the
// manifest record.
type StagingOrchestrator struct {
	registry   *BackendRegistry
	manifest   driven.ManifestStore
	enumerator driven.LocalEnumerator
	settings   driving.SettingsService
}

// NewStagingOrchestrator creates a new staging orchestrator.
func NewStagingOrchestrator(
	registry *BackendRegistry,
	manifest driven.ManifestStore,
	enumerator driven.LocalEnumerator,
	settings driving.SettingsService,
) *StagingOrchestrator {
	return &StagingOrchestrator{
		registry:   registry,
		manifest:   manifest,
		enumerator: enumerator,
		settings:   settings,
	}
}

// Stage runs the full pipeline for a location string.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (o *StagingOrchestrator) Stage(
	ctx context.Context,
	location string,
	opts driving.StageOptions,
) (*domain.StagingRun, error) {
	// 1. Parse the address
	addr, err := domain.ParseAddress(location)
	if err != nil {
		return nil, err
	}

	if opts.WorkingDir == "" || opts.OutputDir == "" {
		return nil, fmt.Errorf("%w: working and output directories are required", domain.ErrInvalidInput)
	}
	if opts.Workers < 1 {
		opts.Workers = domain.DefaultMaxWorkers
	}

	// 2. Resolve the backend once, at configuration time
	settings, err := o.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}
	fs, err := o.registry.Resolve(ctx, addr, settings.BackendOptions(addr.Backend))
	if err != nil {
		return nil, err
	}
	defer fs.Close()

	// 3. Probe connectivity so credential problems fail fast
	lister := NewCorpusLister(fs, addr)
	if err := lister.Initialise(ctx); err != nil {
		return nil, err
	}

	// 4. List the corpus (sequential, deterministic)
	objects, err := lister.List(ctx, opts.Recursive)
	if err != nil {
		return nil, err
	}

	// 5. Record the run and seed the work queue
	run := &domain.StagingRun{
		ID:             uuid.NewString(),
		Address:        location,
		WorkingDir:     opts.WorkingDir,
		OutputDir:      opts.OutputDir,
		Recursive:      opts.Recursive,
		ExpandArchives: opts.ExpandArchives,
		Workers:        opts.Workers,
		Status:         domain.RunRunning,
		StartedAt:      time.Now(),
	}
	if err := o.manifest.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}

	seeds := make([]*domain.DocumentReference, 0, len(objects))
	for _, obj := range objects {
		seeds = append(seeds, &domain.DocumentReference{
			ID:             uuid.NewString(),
			RunID:          run.ID,
			RemoteKey:      obj.Key,
			LocalCachePath: addr.CachePath(opts.WorkingDir, obj.Key),
			Size:           obj.Size,
			State:          domain.StatePending,
		})
	}
	for _, doc := range seeds {
		o.saveDocument(ctx, doc)
	}
	o.emit(opts.Progress, driving.StageEvent{Kind: driving.EventCorpusListed, Count: len(seeds)})
	logger.Info("Staging %d documents from %s with %d workers", len(seeds), addr, opts.Workers)

	// 6. Drain the queue with the bounded worker pool
	lifecycle := NewDocumentLifecycle(fs, opts.WorkingDir, opts.OutputDir)
	expander := NewArchiveExpander(o.enumerator)
	poolErr := o.runPool(ctx, lifecycle, expander, seeds, opts)

	// 7. Finalise the run record
	if docs, listErr := o.manifest.ListDocuments(ctx, run.ID); listErr != nil {
		logger.Warn("Failed to read back run %s documents: %v", run.ID, listErr)
	} else {
		run.Counts = countStates(docs)
	}

	now := time.Now()
	run.CompletedAt = &now
	if poolErr != nil {
		poolErr = fmt.Errorf("%w: %v", domain.ErrRunCancelled, poolErr)
		run.Status = domain.RunFailed
		run.Error = poolErr.Error()
	} else {
		run.Status = domain.RunCompleted
	}
	if err := o.manifest.UpdateRun(ctx, run); err != nil {
		return run, fmt.Errorf("finalise run: %w", err)
	}

	logger.Info("Run %s %s: %d documents, %d plain, %d archives, %d failed",
		run.ID, run.Status, run.Counts.Total, run.Counts.Plain, run.Counts.Archives, run.Counts.Failed)
	return run, poolErr
}

// runPool processes the seeded queue with opts.Workers workers until
// the document tree is exhausted or the context is cancelled.
func (o *StagingOrchestrator) runPool(
	ctx context.Context,
	lifecycle *DocumentLifecycle,
	expander *ArchiveExpander,
	seeds []*domain.DocumentReference,
	opts driving.StageOptions,
) error {
	queue := newWorkQueue(seeds)

	g, ctx := errgroup.WithContext(ctx)

	// Wake blocked workers when the run is cancelled. The errgroup
	// context is always cancelled by Wait, so this goroutine exits
	// with the pool.
	go func() {
		<-ctx.Done()
		queue.wake()
	}()

	for i := 0; i < opts.Workers; i++ {
		g.Go(func() error {
			for {
				doc, ok := queue.pop(ctx)
				if !ok {
					return ctx.Err()
				}
				children := o.processDocument(ctx, lifecycle, expander, doc, opts)
				// Push before done so the pending count only reaches
				// zero once the whole tree is exhausted.
				queue.push(children)
				queue.done()
			}
		})
	}
	return g.Wait()
}

// processDocument runs one reference to a terminal state and returns
// any children discovered by expansion. Per-document failures are
// recorded on the reference and the run continues; only cancellation
// stops the pool.
func (o *StagingOrchestrator) processDocument(
	ctx context.Context,
	lifecycle *DocumentLifecycle,
	expander *ArchiveExpander,
	doc *domain.DocumentReference,
	opts driving.StageOptions,
) []*domain.DocumentReference {
	// A cancelled run leaves unprocessed references pending rather
	// than inventing terminal states for work that never happened.
	if ctx.Err() != nil {
		return nil
	}

	logger.Debug("Processing %s (depth %d)", doc.RemoteKey, doc.Depth)

	// Fetch, or adopt an existing cache entry
	if err := lifecycle.Fetch(ctx, doc); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		o.failDocument(ctx, doc, err, opts)
		return nil
	}
	o.emit(opts.Progress, driving.StageEvent{
		Kind:  driving.EventDocumentFetched,
		Key:   doc.RemoteKey,
		Depth: doc.Depth,
	})

	// Classify from content bytes
	if err := lifecycle.Classify(doc); err != nil {
		o.failDocument(ctx, doc, err, opts)
		return nil
	}

	var children []*domain.DocumentReference
	switch {
	case !doc.Archive.IsArchive():
		doc.State = domain.StatePlain
		if err := lifecycle.EmitRecord(doc); err != nil {
			o.failDocument(ctx, doc, err, opts)
			return nil
		}

	case !opts.ExpandArchives:
		doc.State = domain.StateArchiveSkipped

	default:
		expanded, err := expander.Expand(doc)
		if err != nil {
			o.failDocument(ctx, doc, err, opts)
			return nil
		}
		doc.State = domain.StateArchiveExpanded
		doc.Children = expanded
		children = expanded
	}

	if !opts.KeepCache && (doc.State == domain.StatePlain || doc.State == domain.StateArchiveExpanded) {
		lifecycle.DiscardCache(doc)
	}

	o.saveDocument(ctx, doc)
	for _, child := range children {
		o.saveDocument(ctx, child)
		o.emit(opts.Progress, driving.StageEvent{
			Kind:  driving.EventDocumentQueued,
			Key:   child.RemoteKey,
			Depth: child.Depth,
		})
	}
	o.emit(opts.Progress, driving.StageEvent{
		Kind:  driving.EventDocumentDone,
		Key:   doc.RemoteKey,
		State: doc.State,
		Depth: doc.Depth,
		Err:   doc.Err,
	})
	return children
}

// failDocument drives a reference to StateFailed with its cause.
func (o *StagingOrchestrator) failDocument(
	ctx context.Context,
	doc *domain.DocumentReference,
	err error,
	opts driving.StageOptions,
) {
	logger.Warn("Document %s failed: %v", doc.RemoteKey, err)
	doc.State = domain.StateFailed
	doc.Err = err
	o.saveDocument(ctx, doc)
	o.emit(opts.Progress, driving.StageEvent{
		Kind:  driving.EventDocumentDone,
		Key:   doc.RemoteKey,
		State: doc.State,
		Depth: doc.Depth,
		Err:   err,
	})
}

// saveDocument records the reference in the manifest, logging storage
// failures instead of propagating them; a degraded manifest must not
// stop staging.
func (o *StagingOrchestrator) saveDocument(ctx context.Context, doc *domain.DocumentReference) {
	if err := o.manifest.SaveDocument(ctx, doc); err != nil {
		logger.Warn("Failed to record %s in manifest: %v", doc.RemoteKey, err)
	}
}

// emit delivers a progress event when a listener is attached.
func (o *StagingOrchestrator) emit(progress driving.ProgressFunc, event driving.StageEvent) {
	if progress != nil {
		progress(event)
	}
}

// countStates aggregates per-state totals from recorded references.
func countStates(docs []*domain.DocumentReference) domain.RunCounts {
	counts := domain.RunCounts{Total: len(docs)}
	for _, doc := range docs {
		switch doc.State {
		case domain.StatePlain:
			counts.Plain++
		case domain.StateArchiveExpanded:
			counts.Archives++
		case domain.StateArchiveSkipped:
			counts.Skipped++
		case domain.StateFailed:
			counts.Failed++
		}
	}
	return counts
}

// workQueue is the explicit staging work list. Expansion used to
// recurse down the call stack; keeping an item list plus a pending
// counter moves that nesting into data, so any worker can pick up any
// document and cancellation has a single place to drain.
type workQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	items   []*domain.DocumentReference
	pending int
}

// newWorkQueue seeds a queue with the top-level corpus.
func newWorkQueue(seeds []*domain.DocumentReference) *workQueue {
	q := &workQueue{
		items:   append([]*domain.DocumentReference(nil), seeds...),
		pending: len(seeds),
	}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// pop blocks until an item is available, all work is finished, or the
// context is cancelled. It returns false when the worker should exit.
func (q *workQueue) pop(ctx context.Context) (*domain.DocumentReference, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for {
		if len(q.items) > 0 {
			doc := q.items[0]
			q.items = q.items[1:]
			return doc, true
		}
		if q.pending == 0 || ctx.Err() != nil {
			return nil, false
		}
		q.cond.Wait()
	}
}

// push appends newly discovered children and raises the pending count.
func (q *workQueue) push(docs []*domain.DocumentReference) {
	if len(docs) == 0 {
		return
	}
	q.mu.Lock()
	q.items = append(q.items, docs...)
	q.pending += len(docs)
	q.mu.Unlock()
	q.cond.Broadcast()
}

// done marks one item finished and wakes waiters when the tree is
// exhausted.
func (q *workQueue) done() {
	q.mu.Lock()
	q.pending--
	finished := q.pending == 0
	q.mu.Unlock()
	if finished {
		q.cond.Broadcast()
	}
}

// wake unblocks every waiting worker, used on cancellation.
func (q *workQueue) wake() {
	q.cond.Broadcast()
}
