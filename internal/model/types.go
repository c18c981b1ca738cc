package model

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Reference Types
// -----------------------------------------------------------------------------

// Asset is the handle reconciliation results are keyed by.
type Asset struct {
	SID    int64  // Primary key (security id)
	Symbol string // Canonical ticker symbol
}

func (a Asset) String() string {
	if a.Symbol == "" {
		return fmt.Sprintf("Asset(%d)", a.SID)
	}
	return fmt.Sprintf("Asset(%d [%s])", a.SID, a.Symbol)
}

// Lifetime is the inclusive window during which an asset is listed.
type Lifetime struct {
	Start time.Time
	End   time.Time
}

// Contains reports whether day falls inside the lifetime, bounds included.
func (l Lifetime) Contains(day time.Time) bool {
	d := NormalizeDay(day)
	return !d.Before(NormalizeDay(l.Start)) && !d.After(NormalizeDay(l.End))
}

// NormalizeDay truncates t to midnight UTC of its calendar date.
func NormalizeDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// -----------------------------------------------------------------------------
// Bar Types
// -----------------------------------------------------------------------------

// Bar is one asset's daily OHLCV record.
type Bar struct {
	Day    time.Time // Trading day (UTC midnight)
	Open   int64     // Open price (PriceScale fixed-point)
	High   int64     // High price
	Low    int64     // Low price
	Close  int64     // Close price
	Volume int64     // Shares traded
}

// AbsentBar returns the all-zero record archives use for a missing row.
//
// The encoding cannot be told apart from a genuine all-zero trading day.
// Comparison treats it as an ordinary value.
func AbsentBar(day time.Time) Bar {
	return Bar{Day: NormalizeDay(day)}
}

// IsAbsent reports whether every OHLCV field is zero.
func (b Bar) IsAbsent() bool {
	return b.Open == 0 && b.High == 0 && b.Low == 0 && b.Close == 0 && b.Volume == 0
}

// -----------------------------------------------------------------------------
// Result Types
// -----------------------------------------------------------------------------

// Mismatch is a single disagreeing cell.
type Mismatch struct {
	Day time.Time // Day of disagreement
	A   int64     // Representative value from archive A
	B   int64     // Representative value from archive B
}

// Unpaired holds one asset's mismatches as parallel slices ordered by day.
type Unpaired struct {
	Days []time.Time `json:"days"`
	A    []int64     `json:"values_a"`
	B    []int64     `json:"values_b"`
}

// Append adds m to the end of u. Callers append in ascending day order.
func (u *Unpaired) Append(m Mismatch) {
	u.Days = append(u.Days, m.Day)
	u.A = append(u.A, m.A)
	u.B = append(u.B, m.B)
}

// Len returns the number of mismatches.
func (u Unpaired) Len() int {
	return len(u.Days)
}

// At returns the i-th mismatch.
func (u Unpaired) At(i int) Mismatch {
	return Mismatch{Day: u.Days[i], A: u.A[i], B: u.B[i]}
}

// Report maps each asset with at least one mismatch to its entries.
// Assets that fully agree have no key.
type Report map[Asset]Unpaired

// Mismatches returns the total number of mismatched cells.
func (r Report) Mismatches() int {
	n := 0
	for _, u := range r {
		n += u.Len()
	}
	return n
}
