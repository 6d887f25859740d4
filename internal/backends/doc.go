// Package backends contains the RemoteFS implementations, one
// sub-package per storage provider. Each exposes a factory that the
// composition root registers with the backend registry; the core only
// ever sees the RemoteFS interface.
package backends
