package bars

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/rickgao/barcheck/internal/model"
)

func TestLimited_PassesThrough(t *testing.T) {
	m := NewMemory()
	m.Put(1, model.Bar{Day: day("2016-03-28"), Volume: 10})

	src := NewLimited(m, 0, 0)
	bar, err := src.Get(context.Background(), model.Asset{SID: 1}, day("2016-03-28"))
	require.NoError(t, err)
	require.Equal(t, int64(10), bar.Volume)
}

func TestLimited_Throttles(t *testing.T) {
	src := NewLimited(NewMemory(), 20, 1)
	ctx := context.Background()

	begin := time.Now()
	for range 3 {
		_, err := src.Get(ctx, model.Asset{SID: 1}, day("2016-03-28"))
		require.NoError(t, err)
	}
	// One token up front, then two more at 50ms each.
	require.GreaterOrEqual(t, time.Since(begin), 90*time.Millisecond)
}

func TestLimited_ContextCanceled(t *testing.T) {
	src := NewLimited(NewMemory(), 0.001, 1)
	ctx, cancel := context.WithCancel(context.Background())

	_, err := src.Get(ctx, model.Asset{SID: 1}, day("2016-03-28"))
	require.NoError(t, err)

	cancel()
	_, err = src.Get(ctx, model.Asset{SID: 1}, day("2016-03-28"))
	require.True(t, errors.Is(err, context.Canceled), "err = %v", err)
}

func TestLimited_TokenAfterDeadline(t *testing.T) {
	src := NewLimited(NewMemory(), 0.5, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	_, err := src.Get(ctx, model.Asset{SID: 1}, day("2016-03-28"))
	require.NoError(t, err)

	begin := time.Now()
	_, err = src.Get(ctx, model.Asset{SID: 1}, day("2016-03-29"))
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Less(t, time.Since(begin), 200*time.Millisecond)
}
