// Package store provides the SQLite database handle used to converge schema
// objects.
//
// Store implements schema.DB on top of github.com/jmoiron/sqlx. Two drivers
// are registered:
//   - "sqlite3": github.com/mattn/go-sqlite3 (CGO, default)
//   - "sqlite":  modernc.org/sqlite (pure Go)
//
// # Database Configuration
//
//   - busy_timeout: Wait for locks (default 5 seconds)
//   - foreign_keys=ON: Enforce referential integrity
//   - WAL mode and synchronous=NORMAL when Config.WAL is set
//
// The package also builds catalog check queries (TableExistsQuery,
// IndexExistsQuery, ...) that return a single boolean row, and records the
// outcome of apply runs in the ensure_schema_runs table. That table is itself
// created through a schema.Node (see HistoryNode).
package store
