package calendar

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/rickgao/barcheck/internal/model"
)

var (
	// ErrInvalidRange is returned when a range starts after it ends.
	ErrInvalidRange = errors.New("invalid date range")

	// ErrEmpty is returned when a calendar would contain no days.
	ErrEmpty = errors.New("calendar has no trading days")
)

// Calendar is an ordered, duplicate-free sequence of trading days.
type Calendar struct {
	days []time.Time
}

// New builds a calendar from days. Days are normalized to UTC midnight and
// sorted; duplicates are rejected.
func New(days []time.Time) (*Calendar, error) {
	if len(days) == 0 {
		return nil, ErrEmpty
	}

	normalized := make([]time.Time, len(days))
	for i, d := range days {
		normalized[i] = model.NormalizeDay(d)
	}
	slices.SortFunc(normalized, func(a, b time.Time) int { return a.Compare(b) })

	for i := 1; i < len(normalized); i++ {
		if normalized[i].Equal(normalized[i-1]) {
			return nil, fmt.Errorf("duplicate trading day %s", normalized[i].Format(time.DateOnly))
		}
	}

	return &Calendar{days: normalized}, nil
}

// Weekdays builds a calendar of every Monday through Friday in [start, end]
// except the given holidays.
func Weekdays(start, end time.Time, holidays []time.Time) (*Calendar, error) {
	start, end = model.NormalizeDay(start), model.NormalizeDay(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s after %s", ErrInvalidRange,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	closed := make(map[time.Time]struct{}, len(holidays))
	for _, h := range holidays {
		closed[model.NormalizeDay(h)] = struct{}{}
	}

	var days []time.Time
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		if _, ok := closed[d]; ok {
			continue
		}
		days = append(days, d)
	}

	return New(days)
}

// Slice returns the trading days between start and end inclusive. Bounds
// that are not trading days snap inward to the nearest valid day. The
// returned slice is a copy.
func (c *Calendar) Slice(start, end time.Time) ([]time.Time, error) {
	start, end = model.NormalizeDay(start), model.NormalizeDay(end)
	if start.After(end) {
		return nil, fmt.Errorf("%w: %s after %s", ErrInvalidRange,
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	lo := sort.Search(len(c.days), func(i int) bool { return !c.days[i].Before(start) })
	hi := sort.Search(len(c.days), func(i int) bool { return c.days[i].After(end) })
	if lo >= hi {
		return nil, nil
	}
	return slices.Clone(c.days[lo:hi]), nil
}

// Contains reports whether day is a trading day.
func (c *Calendar) Contains(day time.Time) bool {
	_, found := slices.BinarySearchFunc(c.days, model.NormalizeDay(day), func(a, b time.Time) int {
		return a.Compare(b)
	})
	return found
}

// Days returns a copy of every trading day.
func (c *Calendar) Days() []time.Time {
	return slices.Clone(c.days)
}

// Len returns the number of trading days.
func (c *Calendar) Len() int {
	return len(c.days)
}

// First returns the earliest trading day.
func (c *Calendar) First() time.Time {
	return c.days[0]
}

// Last returns the latest trading day.
func (c *Calendar) Last() time.Time {
	return c.days[len(c.days)-1]
}
