package bars

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/rickgao/barcheck/internal/model"
)

// Limited throttles reads from an underlying Source.
type Limited struct {
	src     Source
	limiter *rate.Limiter
}

// NewLimited wraps src so that at most perSecond reads start per second,
// with bursts up to burst. A non-positive perSecond disables the limit.
func NewLimited(src Source, perSecond float64, burst int) *Limited {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	if burst < 1 {
		burst = 1
	}
	return &Limited{src: src, limiter: rate.NewLimiter(limit, burst)}
}

// Get waits for a token, then reads from the wrapped source.
//
// The limiter fails early when the next token would arrive after ctx's
// deadline; that error wraps context.DeadlineExceeded like an expired ctx.
func (l *Limited) Get(ctx context.Context, asset model.Asset, day time.Time) (model.Bar, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		if _, ok := ctx.Deadline(); ok && ctx.Err() == nil {
			return model.Bar{}, fmt.Errorf("rate limit: %w: %w", context.DeadlineExceeded, err)
		}
		return model.Bar{}, fmt.Errorf("rate limit: %w", err)
	}
	return l.src.Get(ctx, asset, day)
}
