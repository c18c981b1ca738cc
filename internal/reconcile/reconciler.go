package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rickgao/barcheck/internal/assets"
	"github.com/rickgao/barcheck/internal/bars"
	"github.com/rickgao/barcheck/internal/calendar"
	"github.com/rickgao/barcheck/internal/model"
)

// Config holds reconciler configuration.
type Config struct {
	Concurrency int         // Max assets compared at once (default: 8)
	Field       ReportField // Field reported for a mismatched cell (default: Volume)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		Concurrency: 8,
		Field:       Volume,
	}
}

// Reconciler compares archive A against archive B for a fixed asset list.
// It keeps no state between calls to Unpaired.
type Reconciler struct {
	cfg    Config
	cal    *calendar.Calendar
	dir    assets.Directory
	a      bars.Source
	b      bars.Source
	assets []model.Asset
	logger *slog.Logger
}

// New creates a Reconciler. No archive data is read until Unpaired.
func New(
	cfg Config,
	cal *calendar.Calendar,
	dir assets.Directory,
	a, b bars.Source,
	list []model.Asset,
	logger *slog.Logger,
) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}
	return &Reconciler{
		cfg:    cfg,
		cal:    cal,
		dir:    dir,
		a:      a,
		b:      b,
		assets: list,
		logger: logger,
	}
}

// assetResult is written only by the worker that owns it.
type assetResult struct {
	unpaired model.Unpaired
	compared int
	err      error
	done     bool
}

// Unpaired returns every cell in [start, end] where archives A and B
// disagree, grouped by asset and ordered by day.
//
// An invalid range or an asset without a lifetime fails the whole call.
// Source errors fail only the affected asset: the returned Report holds the
// assets that completed and the error is a *PartialError. The same applies
// when ctx ends mid-run; unfinished assets are dropped, not half reported.
func (r *Reconciler) Unpaired(ctx context.Context, start, end time.Time) (model.Report, error) {
	begin := time.Now()

	days, err := r.cal.Slice(start, end)
	if err != nil {
		return nil, err
	}

	lifetimes := make([]model.Lifetime, len(r.assets))
	for i, a := range r.assets {
		l, err := r.dir.Lifetime(a)
		if err != nil {
			return nil, fmt.Errorf("lifetime for %s: %w", a, err)
		}
		lifetimes[i] = l
	}

	results := make([]assetResult, len(r.assets))

	var g errgroup.Group
	g.SetLimit(r.cfg.Concurrency)
	for i := range r.assets {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			results[i] = r.reconcileAsset(ctx, r.assets[i], activeDays(days, lifetimes[i]))
			return nil
		})
	}
	_ = g.Wait()

	report, compared, perr := r.merge(ctx, results)

	r.logger.Info("reconciliation complete",
		"start", model.NormalizeDay(start).Format(time.DateOnly),
		"end", model.NormalizeDay(end).Format(time.DateOnly),
		"assets", len(r.assets),
		"trading_days", len(days),
		"compared", compared,
		"mismatched_assets", len(report),
		"mismatches", report.Mismatches(),
		"duration", time.Since(begin),
	)

	if perr != nil {
		return report, perr
	}
	return report, nil
}

// reconcileAsset walks days in ascending order, so mismatches come out sorted.
func (r *Reconciler) reconcileAsset(ctx context.Context, asset model.Asset, days []time.Time) assetResult {
	var res assetResult

	for _, day := range days {
		if err := ctx.Err(); err != nil {
			res.err = err
			return res
		}

		a, err := r.a.Get(ctx, asset, day)
		if err != nil {
			res.err = fmt.Errorf("archive a: %w", err)
			return res
		}
		b, err := r.b.Get(ctx, asset, day)
		if err != nil {
			res.err = fmt.Errorf("archive b: %w", err)
			return res
		}

		res.compared++
		if m, ok := compare(day, a, b, r.cfg.Field); ok {
			res.unpaired.Append(m)
		}
	}

	res.done = true
	return res
}

// merge assembles the report after every worker has returned.
func (r *Reconciler) merge(ctx context.Context, results []assetResult) (model.Report, int, *PartialError) {
	report := make(model.Report)
	compared := 0
	var perr PartialError
	interrupted := ctx.Err()

	for i, res := range results {
		asset := r.assets[i]
		switch {
		case res.done:
			compared += res.compared
			if res.unpaired.Len() > 0 {
				report[asset] = res.unpaired
			}
		case abandoned(res.err, interrupted):
			perr.Abandoned = append(perr.Abandoned, asset)
		default:
			if perr.Failures == nil {
				perr.Failures = make(map[model.Asset]error)
			}
			perr.Failures[asset] = res.err
			r.logger.Warn("failed to reconcile asset",
				"sid", asset.SID,
				"symbol", asset.Symbol,
				"error", res.err,
			)
		}
	}

	if len(perr.Failures) == 0 && len(perr.Abandoned) == 0 {
		return report, compared, nil
	}
	perr.Cause = interrupted
	if perr.Cause == nil && len(perr.Abandoned) > 0 {
		perr.Cause = context.DeadlineExceeded
	}
	return report, compared, &perr
}

// abandoned reports whether an unfinished asset stopped because the run ran
// out of time rather than because a source failed. A source may give up on
// a deadline it cannot meet before ctx itself expires.
func abandoned(err, interrupted error) bool {
	if interrupted != nil {
		return err == nil || errors.Is(err, interrupted)
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// activeDays returns the sub-slice of the sorted days inside lifetime.
func activeDays(days []time.Time, lifetime model.Lifetime) []time.Time {
	start := model.NormalizeDay(lifetime.Start)
	end := model.NormalizeDay(lifetime.End)

	lo := sort.Search(len(days), func(i int) bool { return !days[i].Before(start) })
	hi := sort.Search(len(days), func(i int) bool { return days[i].After(end) })
	if lo >= hi {
		return nil
	}
	return days[lo:hi]
}
