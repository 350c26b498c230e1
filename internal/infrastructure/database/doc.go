// Package database manages the SQLite connection backing the optional
// device registry.
//
// It wraps database/sql with the pragmas SQLite needs for a long-running
// single-writer service (WAL journalling, busy timeout, foreign keys) and
// applies the registry schema idempotently on open. Higher-level query
// logic lives in the device package; this package only owns the
// connection lifecycle.
package database
