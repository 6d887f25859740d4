// Package domain defines the core business entities for corpus staging.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - BackendAddress: A location string decomposed into backend, root and object
//   - DocumentReference: One discovered document, pending or locally cached
//   - StagingRun: The manifest record of one staging invocation
//   - StagingSettings: Configuration for staging behaviour
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
