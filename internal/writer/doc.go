// Package writer persists reconciliation results to PostgreSQL.
//
// Each run gets one reconcile_runs row and one bar_mismatches row per
// mismatched cell. Rows are append-only; a run is never updated.
// Representative values are stored as reported (fixed-point for price
// fields, a count for volume).
package writer
