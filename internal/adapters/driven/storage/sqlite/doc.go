// Package sqlite provides a SQLite-backed document index and run history.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. One database connection serves:
//
//   - IndexConnector: document records with staged, transactional commits
//   - RunStore: batch run reports
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql
// files; applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.archie/data/archie.db
//
// # Thread Safety
//
// All operations are safe for concurrent use. Staged index writes belong to
// the connector that made them and are applied in a single transaction.
package sqlite
