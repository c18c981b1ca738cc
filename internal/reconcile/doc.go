// Package reconcile compares two daily bar archives cell by cell.
//
// For a query range the Reconciler:
//   - Slices the trading calendar to the range
//   - Clips each asset's days to its listing lifetime
//   - Reads the bar for every remaining day from both archives
//   - Records a mismatch when any OHLCV field differs, reporting
//     the configured representative field (volume by default)
//
// Assets are processed by a bounded pool of workers. Each worker owns the
// result slot for its asset; results are merged after all workers finish.
package reconcile
