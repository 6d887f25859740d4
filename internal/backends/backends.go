package backends

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// SplitPath separates a "<root>[/<prefix>]" listing path into its
// container and the prefix beneath it.
func SplitPath(path string) (root, prefix string) {
	root, prefix, _ = strings.Cut(path, "/")
	return root, prefix
}

// WithinScope reports whether an object key (relative to its container)
// belongs to a listing scoped to prefix. A key is in scope when it names
// the prefix object itself or sits beneath "<prefix>/"; in shallow mode
// keys nested under further directories are excluded. Provider APIs
// match raw prefixes, so "data" would otherwise also catch "database/x".
func WithinScope(key, prefix string, recursive bool) bool {
	rest := key
	if prefix != "" {
		switch {
		case key == prefix:
			rest = ""
		case strings.HasPrefix(key, prefix+"/"):
			rest = key[len(prefix)+1:]
		default:
			return false
		}
	}
	if !recursive && strings.Contains(rest, "/") {
		return false
	}
	return true
}

// WriteStream copies a fetched object stream into localPath, creating
// or truncating the file. A copy failure leaves the partial file in
// place for diagnosis.
func WriteStream(localPath string, body io.Reader) error {
	file, err := os.Create(localPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", localPath, err)
	}
	if _, err := io.Copy(file, body); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", localPath, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", localPath, err)
	}
	return nil
}
