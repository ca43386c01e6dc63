// Package sqlite provides a SQLite-based driven.IndexSink.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO. Each project index is a row in the indexes table holding its schema; records
// are stored as their JSON body, and keyword-typed fields are flattened into
// record_fields so they can be filtered with Find.
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// The database is stored at <dir>/index.db.
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
