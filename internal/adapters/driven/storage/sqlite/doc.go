// Package sqlite provides a SQLite-based implementation of the collection store.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
// Applied versions are recorded in schema_migrations.
//
// Collections are rows with their activation triggers and conditions stored as
// JSON. Chunks are keyed by (collection_id, hash); text and labels are columns,
// keyword metadata and links are one JSON document per chunk.
//
// # Data Location
//
// By default, the database is stored at ~/.loreweave/data/collections.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
