// Package model defines shared data types used across barcheck.
//
// Conventions:
//   - Prices: fixed-point integers scaled by PriceScale (1/1000 of a unit)
//   - Volume: integer share count
//   - Days: time.Time at UTC midnight (see NormalizeDay)
//   - Assets: identified by SID; the symbol is informational
package model
