package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/barcheck/internal/assets"
	"github.com/rickgao/barcheck/internal/bars"
	"github.com/rickgao/barcheck/internal/calendar"
	"github.com/rickgao/barcheck/internal/config"
	"github.com/rickgao/barcheck/internal/database"
	"github.com/rickgao/barcheck/internal/model"
	"github.com/rickgao/barcheck/internal/reconcile"
	"github.com/rickgao/barcheck/internal/version"
	"github.com/rickgao/barcheck/internal/writer"
)

type runOptions struct {
	configPath string
	start      string
	end        string
	jsonPath   string
}

func newRunCmd() *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Compare archive A against archive B",
		Long: `Compare archive A against archive B over a date range.

Exit status is 0 when the archives agree, 1 when mismatches were found,
and 2 when the run could not complete.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runReconcile(cmd.Context(), opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&opts.configPath, "config", "configs/barcheck.yaml", "path to config file")
	cmd.Flags().StringVar(&opts.start, "start", "", "first day to compare (YYYY-MM-DD), overrides reconcile.start")
	cmd.Flags().StringVar(&opts.end, "end", "", "last day to compare (YYYY-MM-DD), overrides reconcile.end")
	cmd.Flags().StringVar(&opts.jsonPath, "json", "", "write the report to this file (- for stdout), overrides output.json_path")

	return cmd
}

func runReconcile(ctx context.Context, opts runOptions, stdout, stderr io.Writer) error {
	cfg, err := config.LoadAndValidate(opts.configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log, stderr)
	logger.Info("starting barcheck",
		"version", version.Version,
		"commit", version.Commit,
		"config", opts.configPath,
		"instance_id", cfg.Instance.ID,
	)

	pools := database.NewPools()
	defer pools.Close()

	sess, err := newSession(ctx, cfg, pools, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	start, end, err := resolveRange(cfg.Reconcile, opts, sess.cal)
	if err != nil {
		return err
	}
	logRangeBounds(logger, sess.cal, start, end)

	runCtx := ctx
	if cfg.Reconcile.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, cfg.Reconcile.Timeout)
		defer cancel()
	}

	run := writer.NewRun(cfg.Instance.ID, start, end, sess.field.String())
	run.Assets = len(sess.assets)

	report, runErr := sess.reconciler.Unpaired(runCtx, start, end)

	var partial *reconcile.PartialError
	if runErr != nil && !errors.As(runErr, &partial) {
		return runErr
	}
	if partial != nil {
		run.Failed = len(partial.Failures) + len(partial.Abandoned)
	}
	run.FinishedAt = time.Now().UTC()

	jsonPath := cfg.Output.JSONPath
	if opts.jsonPath != "" {
		jsonPath = opts.jsonPath
	}
	if err := writeOutput(jsonPath, stdout, newOutput(run, report, partial)); err != nil {
		return err
	}

	if cfg.Output.Persist {
		if err := persist(ctx, pools, cfg.Output.Database, run, report, logger); err != nil {
			return err
		}
	}

	switch {
	case runErr != nil:
		return runErr
	case len(report) > 0:
		logger.Warn("archives disagree",
			"mismatched_assets", len(report),
			"mismatches", report.Mismatches(),
		)
		return errMismatches
	default:
		logger.Info("archives agree", "assets", len(sess.assets))
		return nil
	}
}

// session holds everything built from config for one or more runs.
type session struct {
	cal        *calendar.Calendar
	assets     []model.Asset
	field      reconcile.ReportField
	reconciler *reconcile.Reconciler
	closers    []io.Closer
}

// Close releases archive handles that are not owned by the pool cache.
func (s *session) Close() error {
	var errs []error
	for _, c := range s.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func newSession(ctx context.Context, cfg *config.Config, pools *database.Pools, logger *slog.Logger) (*session, error) {
	cal, err := buildCalendar(cfg.Calendar)
	if err != nil {
		return nil, fmt.Errorf("build calendar: %w", err)
	}

	dir, err := assets.LoadFile(cfg.Assets.File)
	if err != nil {
		return nil, err
	}
	list := dir.All()
	if len(cfg.Assets.SIDs) > 0 {
		if list, err = assets.ResolveAll(dir, cfg.Assets.SIDs); err != nil {
			return nil, fmt.Errorf("resolve assets: %w", err)
		}
	}

	s := &session{cal: cal, assets: list}
	sourceA, err := s.openArchive(ctx, cfg.Archives.A, pools, logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open archive a: %w", err)
	}
	sourceB, err := s.openArchive(ctx, cfg.Archives.B, pools, logger)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("open archive b: %w", err)
	}

	field, err := reconcile.ParseReportField(cfg.Reconcile.ReportField)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.field = field
	s.reconciler = reconcile.New(reconcile.Config{
		Concurrency: cfg.Reconcile.Concurrency,
		Field:       field,
	}, cal, dir, sourceA, sourceB, list, logger)

	logger.Info("session ready",
		"trading_days", cal.Len(),
		"assets", len(list),
		"archive_a", cfg.Archives.A.Kind,
		"archive_b", cfg.Archives.B.Kind,
		"db_pools", pools.Len(),
		"report_field", field,
	)

	return s, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func buildCalendar(cfg config.CalendarConfig) (*calendar.Calendar, error) {
	if cfg.File != "" {
		return calendar.LoadFile(cfg.File)
	}
	return calendar.Weekdays(cfg.Start, cfg.End, cfg.Holidays)
}

func (s *session) openArchive(ctx context.Context, cfg config.ArchiveConfig, pools *database.Pools, logger *slog.Logger) (bars.Source, error) {
	var src bars.Source
	switch cfg.Kind {
	case config.KindCSV:
		mem, err := bars.LoadCSVFile(cfg.Path)
		if err != nil {
			return nil, err
		}
		logger.Debug("loaded csv archive", "path", cfg.Path, "rows", mem.Len())
		src = mem
	case config.KindPostgres:
		pool, err := pools.Get(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		pg, err := bars.NewPostgres(pool, cfg.Table)
		if err != nil {
			return nil, err
		}
		src = pg
	case config.KindSQLite:
		lite, db, err := bars.OpenSQLite(cfg.Path, cfg.Table)
		if err != nil {
			return nil, err
		}
		s.closers = append(s.closers, db)
		src = lite
	default:
		return nil, fmt.Errorf("unknown archive kind %q", cfg.Kind)
	}

	if cfg.RateLimit > 0 {
		src = bars.NewLimited(src, cfg.RateLimit, cfg.Burst)
	}
	return src, nil
}

// resolveRange picks flag values over config values over calendar bounds.
func resolveRange(cfg config.ReconcileConfig, opts runOptions, cal *calendar.Calendar) (time.Time, time.Time, error) {
	start, end := cfg.Start, cfg.End
	if start.IsZero() {
		start = cal.First()
	}
	if end.IsZero() {
		end = cal.Last()
	}

	if opts.start != "" {
		d, err := time.Parse(time.DateOnly, opts.start)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --start: %w", err)
		}
		start = d
	}
	if opts.end != "" {
		d, err := time.Parse(time.DateOnly, opts.end)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("parse --end: %w", err)
		}
		end = d
	}

	return model.NormalizeDay(start), model.NormalizeDay(end), nil
}

// logRangeBounds notes range ends that are not trading days; the calendar
// snaps them inward.
func logRangeBounds(logger *slog.Logger, cal *calendar.Calendar, start, end time.Time) {
	if !cal.Contains(start) {
		logger.Info("range start is not a trading day", "start", start.Format(time.DateOnly))
	}
	if !cal.Contains(end) {
		logger.Info("range end is not a trading day", "end", end.Format(time.DateOnly))
	}
}

func persist(ctx context.Context, pools *database.Pools, cfg config.DBConfig, run writer.Run, report model.Report, logger *slog.Logger) error {
	pool, err := pools.Get(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open results database: %w", err)
	}

	w := writer.NewResultWriter(pool, writer.DefaultBatchSize, logger)
	if err := w.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := w.Write(ctx, run, report); err != nil {
		return err
	}

	logger.Info("results persisted", "run_id", run.ID, "mismatches", report.Mismatches())
	return nil
}

// writeOutput encodes out as JSON to path, or to stdout for "" and "-".
func writeOutput(path string, stdout io.Writer, out output) error {
	if path == "" || path == "-" {
		return out.encode(stdout)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := out.encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
