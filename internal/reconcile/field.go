package reconcile

import (
	"fmt"
	"strings"

	"github.com/rickgao/barcheck/internal/model"
)

// ReportField selects which field's values are reported for a mismatched
// cell. The comparison itself always covers every field.
type ReportField int

const (
	// Volume is an exact count and does not depend on price scaling.
	Volume ReportField = iota
	Open
	High
	Low
	Close
)

var fieldNames = [...]string{
	Volume: "volume",
	Open:   "open",
	High:   "high",
	Low:    "low",
	Close:  "close",
}

func (f ReportField) String() string {
	if f < 0 || int(f) >= len(fieldNames) {
		return fmt.Sprintf("ReportField(%d)", int(f))
	}
	return fieldNames[f]
}

// ParseReportField parses a field name. The empty string selects Volume.
func ParseReportField(s string) (ReportField, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return Volume, nil
	}
	for i, name := range fieldNames {
		if name == s {
			return ReportField(i), nil
		}
	}
	return 0, fmt.Errorf("unknown report field %q", s)
}

// value extracts the field from bar.
func (f ReportField) value(bar model.Bar) int64 {
	switch f {
	case Open:
		return bar.Open
	case High:
		return bar.High
	case Low:
		return bar.Low
	case Close:
		return bar.Close
	default:
		return bar.Volume
	}
}
