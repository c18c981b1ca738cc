package assets

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rickgao/barcheck/internal/model"
)

// ErrUnknownAsset is returned for a SID the directory does not know.
var ErrUnknownAsset = errors.New("unknown asset")

// Directory maps identifiers to assets and assets to lifetimes.
// Implementations must be safe for concurrent use.
type Directory interface {
	// Resolve returns the canonical asset for sid.
	Resolve(sid int64) (model.Asset, error)

	// Lifetime returns the inclusive listing window of asset.
	Lifetime(asset model.Asset) (model.Lifetime, error)
}

// Entry describes one listed asset.
type Entry struct {
	SID       int64     `yaml:"sid"`
	Symbol    string    `yaml:"symbol"`
	StartDate time.Time `yaml:"start_date"`
	EndDate   time.Time `yaml:"end_date"`
}

// Memory is a read-only Directory backed by a map.
type Memory struct {
	assets    map[int64]model.Asset
	lifetimes map[int64]model.Lifetime
}

// NewMemory builds a directory from entries.
func NewMemory(entries []Entry) (*Memory, error) {
	m := &Memory{
		assets:    make(map[int64]model.Asset, len(entries)),
		lifetimes: make(map[int64]model.Lifetime, len(entries)),
	}

	for _, e := range entries {
		if _, dup := m.assets[e.SID]; dup {
			return nil, fmt.Errorf("duplicate asset sid %d", e.SID)
		}
		if e.StartDate.IsZero() || e.EndDate.IsZero() {
			return nil, fmt.Errorf("asset %d: start_date and end_date are required", e.SID)
		}
		start, end := model.NormalizeDay(e.StartDate), model.NormalizeDay(e.EndDate)
		if start.After(end) {
			return nil, fmt.Errorf("asset %d: start_date %s after end_date %s",
				e.SID, start.Format(time.DateOnly), end.Format(time.DateOnly))
		}

		m.assets[e.SID] = model.Asset{SID: e.SID, Symbol: e.Symbol}
		m.lifetimes[e.SID] = model.Lifetime{Start: start, End: end}
	}

	return m, nil
}

// Resolve returns the canonical asset for sid.
func (m *Memory) Resolve(sid int64) (model.Asset, error) {
	a, ok := m.assets[sid]
	if !ok {
		return model.Asset{}, fmt.Errorf("%w: sid %d", ErrUnknownAsset, sid)
	}
	return a, nil
}

// Lifetime returns the listing window of asset, looked up by SID.
func (m *Memory) Lifetime(asset model.Asset) (model.Lifetime, error) {
	l, ok := m.lifetimes[asset.SID]
	if !ok {
		return model.Lifetime{}, fmt.Errorf("%w: %s", ErrUnknownAsset, asset)
	}
	return l, nil
}

// All returns every asset ordered by SID.
func (m *Memory) All() []model.Asset {
	out := make([]model.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		out = append(out, a)
	}
	slices.SortFunc(out, func(a, b model.Asset) int { return cmp.Compare(a.SID, b.SID) })
	return out
}

// ResolveAll resolves each sid, failing on the first unknown one.
func ResolveAll(dir Directory, sids []int64) ([]model.Asset, error) {
	out := make([]model.Asset, 0, len(sids))
	for _, sid := range sids {
		a, err := dir.Resolve(sid)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
