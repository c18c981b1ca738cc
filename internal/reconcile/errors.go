package reconcile

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/rickgao/barcheck/internal/calendar"
	"github.com/rickgao/barcheck/internal/model"
)

// ErrInvalidRange is returned when start is after end.
var ErrInvalidRange = calendar.ErrInvalidRange

// PartialError reports assets that could not be reconciled. It is returned
// alongside a Report holding every asset that did complete.
type PartialError struct {
	// Failures holds the source error for each asset that could not be read.
	Failures map[model.Asset]error

	// Abandoned lists assets left unfinished because the context ended.
	Abandoned []model.Asset

	// Cause is the context error when the run was interrupted, else nil.
	Cause error
}

func (e *PartialError) Error() string {
	var parts []string
	if n := len(e.Failures); n > 0 {
		parts = append(parts, fmt.Sprintf("%d asset(s) failed", n))
	}
	if n := len(e.Abandoned); n > 0 {
		parts = append(parts, fmt.Sprintf("%d asset(s) abandoned", n))
	}
	msg := "reconciliation incomplete: " + strings.Join(parts, ", ")
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	} else if len(e.Failures) == 1 {
		for a, err := range e.Failures {
			msg += fmt.Sprintf(": %s: %v", a, err)
		}
	}
	return msg
}

// Unwrap returns the context cause followed by each failure ordered by SID.
func (e *PartialError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures)+1)
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	for _, a := range e.FailedAssets() {
		errs = append(errs, e.Failures[a])
	}
	return errs
}

// FailedAssets returns the assets in Failures ordered by SID.
func (e *PartialError) FailedAssets() []model.Asset {
	out := make([]model.Asset, 0, len(e.Failures))
	for a := range e.Failures {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b model.Asset) int { return cmp.Compare(a.SID, b.SID) })
	return out
}
