// Package poller re-runs reconciliation on a fixed interval.
//
// The Poller:
//   - Runs once on start, then every interval
//   - Compares a trailing window of trading days ending at the latest
//     calendar day not after "now"
//   - Hands every report (and any partial-failure error) to a handler
//   - Never overlaps two runs
package poller
