// Package store persists finished evaluations in SQLite.
//
// Each evaluation row keeps the memo, the deal note and the full pipeline
// result as JSON alongside the columns used for listing (company, status,
// score, recommendation). The database runs in WAL mode and every write
// retries briefly when SQLite reports the database as busy, so the CLI and
// the MCP server can share one file.
//
// The schema version lives in PRAGMA user_version. A database written by a
// different version is refused rather than migrated.
package store
