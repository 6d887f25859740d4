package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent staging failures.
// These are distinct from infrastructure errors.
var (
	// ErrInvalidAddress indicates a location string that does not parse.
	// Fatal before any run work begins.
	ErrInvalidAddress = errors.New("invalid address")

	// ErrUnsupportedBackend indicates a backend identifier outside the
	// supported set, or one with no registered factory. Fatal before
	// any network access.
	ErrUnsupportedBackend = errors.New("unsupported backend")

	// ErrEmptyCorpus indicates listing produced no candidate documents.
	// Raised at initialisation so a run fails fast rather than after
	// partial work.
	ErrEmptyCorpus = errors.New("empty corpus")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRunCancelled indicates the run context was cancelled while
	// documents were still outstanding.
	ErrRunCancelled = errors.New("run cancelled")
)

// FetchError wraps a per-document download failure. The document is
// excluded from further processing; the run continues.
type FetchError struct {
	// Key is the remote key whose fetch failed.
	Key string

	// Err is the underlying backend error.
	Err error
}

// NewFetchError wraps err as a per-document fetch failure for key.
func NewFetchError(key string, err error) *FetchError {
	return &FetchError{Key: key, Err: err}
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Key, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsFetchFailure returns true if err is a per-document fetch failure.
func IsFetchFailure(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}

// TarError wraps a malformed tar stream. Unlike zip failures it is
// recovered where it occurs: the archive keeps its place in the corpus
// with no children and only a warning is surfaced.
type TarError struct {
	// Path is the local archive path that failed to read as tar.
	Path string

	// Err is the underlying read error.
	Err error
}

// NewTarError wraps err as a recoverable tar failure for path.
func NewTarError(path string, err error) *TarError {
	return &TarError{Path: path, Err: err}
}

// Error implements the error interface.
func (e *TarError) Error() string {
	return fmt.Sprintf("read tar %s: %v", e.Path, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As chains.
func (e *TarError) Unwrap() error {
	return e.Err
}

// IsTarCorrupt returns true if err is a recoverable tar failure.
func IsTarCorrupt(err error) bool {
	var te *TarError
	return errors.As(err, &te)
}

// IsFatal returns true for errors in the pre-run fatal taxonomy: a bad
// address, an unsupported backend, or an empty corpus. Everything else
// is per-document and leaves the run going.
func IsFatal(err error) bool {
	return errors.Is(err, ErrInvalidAddress) ||
		errors.Is(err, ErrUnsupportedBackend) ||
		errors.Is(err, ErrEmptyCorpus)
}
