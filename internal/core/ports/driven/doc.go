// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
// These must be provided for the application to function:
//
//   - RemoteFS: List/fetch capability over one storage backend
//   - BackendFactory: Creates a RemoteFS from an address and options
//   - LocalEnumerator: Walks already-local directory trees
//   - ManifestStore: Run and document persistence
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or backend package
package driven
