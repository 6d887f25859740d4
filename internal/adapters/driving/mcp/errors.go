// Package mcp provides an MCP (Model Context Protocol) server adapter
// for corpus. It enables AI assistants to enumerate and stage remote
// corpora through the same services the CLI uses.
package mcp

import "errors"

// ErrMissingExplorer is returned when the corpus explorer is not provided.
var ErrMissingExplorer = errors.New("mcp: corpus explorer is required")

// ErrMissingStager is returned when the stager is not provided.
var ErrMissingStager = errors.New("mcp: stager is required")
