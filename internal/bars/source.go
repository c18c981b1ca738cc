package bars

import (
	"context"
	"sync"
	"time"

	"github.com/rickgao/barcheck/internal/model"
)

// Source reads one archive's bar for an (asset, day) cell.
// Implementations must be safe for concurrent use.
type Source interface {
	Get(ctx context.Context, asset model.Asset, day time.Time) (model.Bar, error)
}

// SourceFunc is a function adapter for Source.
type SourceFunc func(ctx context.Context, asset model.Asset, day time.Time) (model.Bar, error)

func (f SourceFunc) Get(ctx context.Context, asset model.Asset, day time.Time) (model.Bar, error) {
	return f(ctx, asset, day)
}

type cellKey struct {
	sid int64
	day time.Time
}

// Memory is an in-process Source.
type Memory struct {
	mu   sync.RWMutex
	rows map[cellKey]model.Bar
}

// NewMemory creates an empty Memory source.
func NewMemory() *Memory {
	return &Memory{rows: make(map[cellKey]model.Bar)}
}

// Put stores bar for sid, replacing any existing row for that day.
func (m *Memory) Put(sid int64, bar model.Bar) {
	bar.Day = model.NormalizeDay(bar.Day)

	m.mu.Lock()
	m.rows[cellKey{sid: sid, day: bar.Day}] = bar
	m.mu.Unlock()
}

// Get returns the stored bar or the absent sentinel.
func (m *Memory) Get(_ context.Context, asset model.Asset, day time.Time) (model.Bar, error) {
	day = model.NormalizeDay(day)

	m.mu.RLock()
	bar, ok := m.rows[cellKey{sid: asset.SID, day: day}]
	m.mu.RUnlock()

	if !ok {
		return model.AbsentBar(day), nil
	}
	return bar, nil
}

// Len returns the number of stored rows.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}
