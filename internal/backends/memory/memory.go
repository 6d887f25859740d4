// Package memory provides an in-process RemoteFS seeded with objects.
// Tests register it under real backend identifiers to exercise the
// staging pipeline without network access; it also counts fetches so
// cache-adoption behaviour can be asserted.
package memory

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/backends"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure RemoteFS implements the interface.
var _ driven.RemoteFS = (*RemoteFS)(nil)

// RemoteFS is an in-process backend over a fixed object map.
type RemoteFS struct {
	mu       sync.Mutex
	objects  map[string][]byte
	fetches  map[string]int
	listErr  error
	fetchErr map[string]error
	closed   bool
}

// New creates a backend seeded with objects, keyed by their fully
// qualified path (e.g. "bucket/dir/file.txt").
func New(objects map[string][]byte) *RemoteFS {
	seeded := make(map[string][]byte, len(objects))
	for k, v := range objects {
		seeded[k] = v
	}
	return &RemoteFS{
		objects:  seeded,
		fetches:  make(map[string]int),
		fetchErr: make(map[string]error),
	}
}

// Factory returns a BackendFactory that always resolves to this
// instance, for registering under a real backend identifier in tests.
func (f *RemoteFS) Factory() driven.BackendFactory {
	return func(_ context.Context, _ domain.BackendAddress, _ map[string]string) (driven.RemoteFS, error) {
		return f, nil
	}
}

// FailList makes every List call return err.
func (f *RemoteFS) FailList(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErr = err
}

// FailFetch makes fetches of key return err.
func (f *RemoteFS) FailFetch(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetchErr[key] = err
}

// FetchCount reports how many times key was fetched.
func (f *RemoteFS) FetchCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[key]
}

// Closed reports whether Close was called.
func (f *RemoteFS) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// List enumerates seeded objects under path.
func (f *RemoteFS) List(ctx context.Context, path string, recursive bool) ([]driven.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	root, prefix := backends.SplitPath(path)
	var result []driven.ObjectInfo
	for key, data := range f.objects {
		if !strings.HasPrefix(key, root+"/") {
			continue
		}
		if !backends.WithinScope(key[len(root)+1:], prefix, recursive) {
			continue
		}
		result = append(result, driven.ObjectInfo{Key: key, Size: int64(len(data))})
	}

	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

// Fetch writes the seeded bytes to localPath, counting the call.
func (f *RemoteFS) Fetch(ctx context.Context, remoteKey, localPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	f.mu.Lock()
	f.fetches[remoteKey]++
	data, ok := f.objects[remoteKey]
	err := f.fetchErr[remoteKey]
	f.mu.Unlock()

	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("object %q not found", remoteKey)
	}
	return os.WriteFile(localPath, data, 0o644)
}

// Close marks the backend released.
func (f *RemoteFS) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}
