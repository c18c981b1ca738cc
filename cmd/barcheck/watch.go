package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/rickgao/barcheck/internal/config"
	"github.com/rickgao/barcheck/internal/database"
	"github.com/rickgao/barcheck/internal/poller"
	"github.com/rickgao/barcheck/internal/reconcile"
	"github.com/rickgao/barcheck/internal/version"
	"github.com/rickgao/barcheck/internal/writer"
)

func newWatchCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Reconcile the most recent trading days on an interval",
		Long: `Reconcile the trailing watch.lookback trading days every watch.interval
until interrupted. Each cycle's report is written to output.json_path and,
when output.persist is set, stored in the results database.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd.Context(), configPath, cmd.OutOrStdout(), cmd.ErrOrStderr())
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "configs/barcheck.yaml", "path to config file")

	return cmd
}

func runWatch(ctx context.Context, configPath string, stdout, stderr io.Writer) error {
	cfg, err := config.LoadAndValidate(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.Log, stderr)
	logger.Info("starting barcheck watch",
		"version", version.Version,
		"commit", version.Commit,
		"config", configPath,
		"instance_id", cfg.Instance.ID,
	)

	pools := database.NewPools()
	defer pools.Close()

	sess, err := newSession(ctx, cfg, pools, logger)
	if err != nil {
		return err
	}
	defer sess.Close()

	h := &cycleHandler{cfg: cfg, sess: sess, pools: pools, stdout: stdout, logger: logger}
	p := poller.New(poller.Config{
		Interval: cfg.Watch.Interval,
		Lookback: cfg.Watch.Lookback,
		Timeout:  cfg.Reconcile.Timeout,
	}, sess.cal, sess.reconciler, h, logger)

	if err := p.Start(ctx); err != nil {
		return fmt.Errorf("start poller: %w", err)
	}

	<-ctx.Done()
	logger.Info("shutting down")

	stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return p.Stop(stopCtx)
}

// cycleHandler writes and persists each poll cycle's report.
type cycleHandler struct {
	cfg    *config.Config
	sess   *session
	pools  *database.Pools
	stdout io.Writer
	logger *slog.Logger
}

func (h *cycleHandler) HandleResult(ctx context.Context, res poller.Result) error {
	if res.Err != nil {
		if err := h.pools.Ping(ctx); err != nil {
			h.logger.Warn("database unhealthy after incomplete cycle", "error", err)
		}
	}

	var partial *reconcile.PartialError
	if res.Err != nil && !errors.As(res.Err, &partial) {
		return res.Err
	}

	run := writer.NewRun(h.cfg.Instance.ID, res.Start, res.End, h.sess.field.String())
	run.Assets = len(h.sess.assets)
	if partial != nil {
		run.Failed = len(partial.Failures) + len(partial.Abandoned)
	}
	run.FinishedAt = time.Now().UTC()

	if err := writeOutput(h.cfg.Output.JSONPath, h.stdout, newOutput(run, res.Report, partial)); err != nil {
		return err
	}

	if h.cfg.Output.Persist {
		if err := persist(ctx, h.pools, h.cfg.Output.Database, run, res.Report, h.logger); err != nil {
			return err
		}
	}

	if len(res.Report) > 0 {
		h.logger.Warn("archives disagree",
			"start", res.Start.Format(time.DateOnly),
			"end", res.End.Format(time.DateOnly),
			"mismatched_assets", len(res.Report),
			"mismatches", res.Report.Mismatches(),
		)
	}
	return nil
}
