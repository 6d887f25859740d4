// Package sqlite provides the SQLite-backed manifest store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO, enabling easy cross-compilation. Every staging run and its
// document references are recorded so past runs can be inspected with
// `corpus runs`.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files. Document rows are upserted on every state transition; the original
// rowid keeps discovery order stable.
//
// # Data Location
//
// By default, the database is stored at ~/.corpus/data/manifest.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking
// provided by SQLite in WAL mode.
package sqlite
