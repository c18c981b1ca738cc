package poller

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/rickgao/barcheck/internal/calendar"
	"github.com/rickgao/barcheck/internal/model"
)

// Reconciler is the subset of *reconcile.Reconciler used by the poller.
type Reconciler interface {
	Unpaired(ctx context.Context, start, end time.Time) (model.Report, error)
}

// Result is the outcome of one poll cycle.
type Result struct {
	Start  time.Time
	End    time.Time
	Report model.Report
	Err    error
}

// ResultHandler receives each cycle's result.
type ResultHandler interface {
	HandleResult(ctx context.Context, res Result) error
}

// ResultHandlerFunc is a function adapter for ResultHandler.
type ResultHandlerFunc func(context.Context, Result) error

func (f ResultHandlerFunc) HandleResult(ctx context.Context, res Result) error {
	return f(ctx, res)
}

// Config holds poller configuration.
type Config struct {
	Interval time.Duration // Time between runs (default: 24h)
	Lookback int           // Trading days per run (default: 5)
	Timeout  time.Duration // Per-run timeout (default: 30m)
}

// DefaultConfig returns the values New uses for unset fields.
func DefaultConfig() Config {
	return Config{
		Interval: 24 * time.Hour,
		Lookback: 5,
		Timeout:  30 * time.Minute,
	}
}

// Poller periodically reconciles the most recent trading days.
type Poller struct {
	cfg        Config
	cal        *calendar.Calendar
	reconciler Reconciler
	handler    ResultHandler
	logger     *slog.Logger
	now        func() time.Time

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a new Poller. A non-positive Interval or Lookback takes the
// DefaultConfig value; a zero Timeout leaves each run unbounded.
func New(cfg Config, cal *calendar.Calendar, r Reconciler, handler ResultHandler, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if cfg.Interval <= 0 {
		cfg.Interval = def.Interval
	}
	if cfg.Lookback < 1 {
		cfg.Lookback = def.Lookback
	}
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	return &Poller{
		cfg:        cfg,
		cal:        cal,
		reconciler: r,
		handler:    handler,
		logger:     logger,
		now:        time.Now,
	}
}

// Start begins the polling loop.
func (p *Poller) Start(ctx context.Context) error {
	p.ctx, p.cancel = context.WithCancel(ctx)

	p.wg.Add(1)
	go p.run()

	p.logger.Info("reconcile poller started",
		"interval", p.cfg.Interval,
		"lookback", p.cfg.Lookback,
	)

	return nil
}

// Stop gracefully shuts down the poller.
func (p *Poller) Stop(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.logger.Info("reconcile poller stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// run is the main polling loop.
func (p *Poller) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.cfg.Interval)
	defer ticker.Stop()

	// Poll immediately on start.
	p.pollOnce()

	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.pollOnce()
		}
	}
}

// window returns the trailing Lookback trading days ending at or before now.
func (p *Poller) window() (time.Time, time.Time, bool) {
	days, err := p.cal.Slice(p.cal.First(), p.now())
	if err != nil || len(days) == 0 {
		return time.Time{}, time.Time{}, false
	}
	if len(days) > p.cfg.Lookback {
		days = days[len(days)-p.cfg.Lookback:]
	}
	return days[0], days[len(days)-1], true
}

// pollOnce reconciles the current window and hands off the result.
func (p *Poller) pollOnce() {
	start, end, ok := p.window()
	if !ok {
		p.logger.Debug("no trading days to reconcile")
		return
	}

	ctx := p.ctx
	if p.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(p.ctx, p.cfg.Timeout)
		defer cancel()
	}

	report, err := p.reconciler.Unpaired(ctx, start, end)
	if err != nil {
		p.logger.Warn("reconcile cycle incomplete",
			"start", start.Format(time.DateOnly),
			"end", end.Format(time.DateOnly),
			"error", err,
		)
	}

	if p.handler == nil {
		return
	}
	res := Result{Start: start, End: end, Report: report, Err: err}
	if err := p.handler.HandleResult(p.ctx, res); err != nil {
		p.logger.Error("failed to handle reconcile result", "error", err)
	}
}
