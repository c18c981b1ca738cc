// Package bars implements read-only access to daily bar archives.
//
// Sources:
//   - Memory: in-process map, built directly or from a CSV export
//   - Postgres: one row per (sid, day) in a daily bars table
//   - SQLite: the same table layout in a local database file
//
// Limited wraps any Source with a read rate limit.
//
// A missing row is returned as model.AbsentBar, never as an error.
// Errors are reserved for archives that cannot be read.
package bars
