// Package archive classifies downloaded files by their content bytes
// and extracts zip and tar containers for expansion.
//
// Classification inspects leading bytes, including a peek inside gzip
// streams so compressed tars classify as tar, and never trusts file
// extensions. Extraction preserves entry order and validates entry
// paths against directory escape.
package archive
