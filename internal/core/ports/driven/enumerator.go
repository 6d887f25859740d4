package driven

// LocalEntry is one file found by walking a local directory tree.
type LocalEntry struct {
	// Path is the absolute path of the file.
	Path string

	// RelPath is the path relative to the enumeration root, using
	// forward slashes. It becomes the remote key of nested documents.
	RelPath string

	// Size is the file size in bytes.
	Size int64
}

// LocalEnumerator walks an already-local directory tree and yields
// document candidates. The archive expander uses it to turn an
// extraction directory back into a corpus, which is how nested archives
// re-enter the ordinary staging path.
type LocalEnumerator interface {
	// Enumerate lists regular files under root. In shallow mode only
	// the immediate children are returned; in recursive mode the full
	// tree. Entries come back in deterministic (sorted) order.
	Enumerate(root string, recursive bool) ([]LocalEntry, error)
}
