package driven

import "context"

// ObjectInfo is one entry returned by a backend listing.
type ObjectInfo struct {
	// Key is the fully qualified object path within the backend,
	// including the root container (e.g. "bucket/dir/file.txt").
	Key string

	// Size is the object size in bytes as reported by the backend.
	// Zero-byte entries are directory placeholders on several backends
	// and are filtered out by the lister.
	Size int64
}

// RemoteFS is the uniform list/fetch capability over one remote storage
// backend. The core depends on this abstraction only; it never speaks a
// backend wire protocol itself.
//
// Implementations must tolerate concurrent Fetch calls from multiple
// workers; no external synchronisation is provided.
type RemoteFS interface {
	// List enumerates objects under path (a "<root>[/<object>]" listing
	// path). In shallow mode only the immediate children are returned;
	// in recursive mode the full transitive set. Entries carry size
	// metadata so callers can filter placeholders.
	List(ctx context.Context, path string, recursive bool) ([]ObjectInfo, error)

	// Fetch downloads one object to localPath. The caller creates
	// parent directories beforehand. A failed fetch may leave a
	// partial file behind; callers keep it for diagnosis.
	Fetch(ctx context.Context, remoteKey, localPath string) error

	// Close releases the backend session.
	Close() error
}
