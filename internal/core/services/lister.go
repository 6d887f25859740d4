package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// CorpusLister enumerates the corpus behind one resolved backend. It
// owns the two discovery steps of a run: the connectivity probe and
// the listing itself. Listing is deliberately sequential; only
// per-document work after discovery is parallelised.
type CorpusLister struct {
	fs   driven.RemoteFS
	addr domain.BackendAddress
}

// NewCorpusLister creates a lister over a resolved backend.
func NewCorpusLister(fs driven.RemoteFS, addr domain.BackendAddress) *CorpusLister {
	return &CorpusLister{fs: fs, addr: addr}
}

// Initialise probes the backend with a shallow listing so credential
// and connectivity problems surface before any document work begins.
// The probe result is discarded; emptiness is judged by List.
func (l *CorpusLister) Initialise(ctx context.Context) error {
	if _, err := l.fs.List(ctx, l.addr.Path(), false); err != nil {
		return fmt.Errorf("initialise corpus at %s: %w", l.addr, err)
	}
	return nil
}

// List enumerates candidate documents under the address path. Entries
// without a positive size are dropped: zero-byte objects are directory
// placeholders on several backends and carry nothing to stage. An
// all-filtered or empty listing fails with domain.ErrEmptyCorpus so
// the run stops before any fetching. Results come back sorted by key
// for deterministic runs.
func (l *CorpusLister) List(ctx context.Context, recursive bool) ([]driven.ObjectInfo, error) {
	objects, err := l.fs.List(ctx, l.addr.Path(), recursive)
	if err != nil {
		return nil, fmt.Errorf("list corpus at %s: %w", l.addr, err)
	}

	candidates := make([]driven.ObjectInfo, 0, len(objects))
	for _, obj := range objects {
		if obj.Size > 0 {
			candidates = append(candidates, obj)
		}
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: no candidate documents at %s", domain.ErrEmptyCorpus, l.addr)
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Key < candidates[j].Key
	})
	return candidates, nil
}
