package domain

import (
	"fmt"
	"strings"
	"unicode"
)

// Backend identifies a supported remote filesystem kind.
type Backend string

// Supported backends. The set is closed: location strings naming any
// other scheme are rejected at parse time, before any network access.
const (
	// BackendS3 is Amazon S3 and S3-compatible object stores.
	BackendS3 Backend = "s3"
	// BackendS3A is the Hadoop-style alias for S3.
	BackendS3A Backend = "s3a"
	// BackendABFS is Azure Blob Filesystem (Data Lake Gen2).
	BackendABFS Backend = "abfs"
	// BackendAzure is Azure Blob Storage.
	BackendAzure Backend = "az"
	// BackendGS is Google Cloud Storage.
	BackendGS Backend = "gs"
	// BackendGCS is the long-form alias for Google Cloud Storage.
	BackendGCS Backend = "gcs"
	// BackendBox is Box cloud storage.
	BackendBox Backend = "box"
	// BackendDropbox is Dropbox cloud storage.
	BackendDropbox Backend = "dropbox"
)

// AllBackends returns every supported backend identifier.
func AllBackends() []Backend {
	return []Backend{
		BackendS3,
		BackendS3A,
		BackendABFS,
		BackendAzure,
		BackendGS,
		BackendGCS,
		BackendBox,
		BackendDropbox,
	}
}

// IsValid returns true if the backend identifier is recognised.
func (b Backend) IsValid() bool {
	switch b {
	case BackendS3, BackendS3A, BackendABFS, BackendAzure,
		BackendGS, BackendGCS, BackendBox, BackendDropbox:
		return true
	default:
		return false
	}
}

// Rootless returns true for backends whose top-level container is
// conventionally a whitespace placeholder rather than a named bucket.
func (b Backend) Rootless() bool {
	return b == BackendDropbox
}

// String returns the string representation.
func (b Backend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b Backend) Description() string {
	switch b {
	case BackendS3, BackendS3A:
		return "Amazon S3 (or S3-compatible)"
	case BackendABFS, BackendAzure:
		return "Azure Blob Storage"
	case BackendGS, BackendGCS:
		return "Google Cloud Storage"
	case BackendBox:
		return "Box"
	case BackendDropbox:
		return "Dropbox"
	default:
		return "Unknown"
	}
}

// BackendAddress is the structured decomposition of a location string
// into backend kind, root container and object path. It is derived once
// by ParseAddress and never mutated afterwards.
type BackendAddress struct {
	// Backend is the remote filesystem kind.
	Backend Backend

	// Root identifies the top-level container (bucket, share, account).
	// For rootless backends this is a single whitespace placeholder.
	Root string

	// Object is the directory or file path under the container.
	// Empty when the address points at the container root.
	Object string
}

// Path returns the listing path for the address: the root joined with
// the object portion when one is present.
func (a BackendAddress) Path() string {
	if a.Object == "" {
		return a.Root
	}
	return a.Root + "/" + a.Object
}

// String reassembles the canonical address form.
func (a BackendAddress) String() string {
	return a.Backend.String() + "://" + a.Path()
}

// CachePath derives the local cache location for a remote key listed
// under this address: workingDir joined with the key, less the leading
// "<root>/" container prefix, so the cache layout mirrors the object
// tree rather than the container name.
func (a BackendAddress) CachePath(workingDir, remoteKey string) string {
	rel := strings.TrimPrefix(remoteKey, a.Root+"/")
	return joinLocal(workingDir, rel)
}

// addressShape attempts to decompose the remainder of a location string
// (everything after the scheme separator) into root and object parts.
// A detector returns ok=false when the remainder is not in its shape.
type addressShape func(b Backend, rest string) (root, object string, ok bool)

// Shape detectors in match order: rootless placeholder, bare container
// root, then root plus object path. The first match wins.
var addressShapes = []addressShape{
	matchRootless,
	matchRootOnly,
	matchRootAndObject,
}

// ParseAddress decomposes a location string of the form
// <backend>://<root>[/<object-path>] into a BackendAddress.
//
// The string is split on the first "://". The backend identifier must
// belong to the supported set. The remainder is then matched against the
// recognised shapes in order; if none match the address is invalid.
// ParseAddress is a pure function of its input and performs no I/O.
func ParseAddress(location string) (BackendAddress, error) {
	scheme, rest, found := strings.Cut(location, "://")
	if !found {
		return BackendAddress{}, fmt.Errorf("%w: %q has no <backend>:// scheme", ErrInvalidAddress, location)
	}

	backend := Backend(scheme)
	if !backend.IsValid() {
		return BackendAddress{}, fmt.Errorf("%w: %q", ErrUnsupportedBackend, scheme)
	}

	for _, shape := range addressShapes {
		if root, object, ok := shape(backend, rest); ok {
			return BackendAddress{Backend: backend, Root: root, Object: object}, nil
		}
	}

	return BackendAddress{}, fmt.Errorf("%w: %q has no recognisable root form", ErrInvalidAddress, location)
}

// matchRootless recognises the whitespace-placeholder form used by
// rootless backends: exactly one whitespace character followed by "/".
// The placeholder itself becomes the root so downstream path handling
// stays uniform across backends.
func matchRootless(b Backend, rest string) (string, string, bool) {
	if !b.Rootless() {
		return "", "", false
	}
	if len(rest) != 2 || rest[1] != '/' || !unicode.IsSpace(rune(rest[0])) {
		return "", "", false
	}
	return rest[:1], "", true
}

// matchRootOnly recognises a bare container name, ignoring any trailing
// slashes. The name must not contain internal slashes or whitespace.
func matchRootOnly(_ Backend, rest string) (string, string, bool) {
	trimmed := strings.TrimRight(rest, "/")
	if trimmed == "" || strings.Contains(trimmed, "/") || containsSpace(trimmed) {
		return "", "", false
	}
	return trimmed, "", true
}

// matchRootAndObject recognises <root>/<object-path>. The root must not
// contain slashes or whitespace; the object may contain slashes and may
// be empty (trailing slash only).
func matchRootAndObject(_ Backend, rest string) (string, string, bool) {
	root, object, found := strings.Cut(rest, "/")
	if !found || root == "" || containsSpace(root) || containsSpace(object) {
		return "", "", false
	}
	return root, object, true
}

func containsSpace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}
