package writer

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/barcheck/internal/model"
)

// DB is the subset of *pgxpool.Pool used by ResultWriter.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Run describes one reconciliation call.
type Run struct {
	ID          uuid.UUID
	InstanceID  string
	Start       time.Time
	End         time.Time
	ReportField string
	Assets      int
	Failed      int
	StartedAt   time.Time
	FinishedAt  time.Time
}

// NewRun creates a Run with a fresh random id.
func NewRun(instanceID string, start, end time.Time, field string) Run {
	return Run{
		ID:          uuid.New(),
		InstanceID:  instanceID,
		Start:       model.NormalizeDay(start),
		End:         model.NormalizeDay(end),
		ReportField: field,
		StartedAt:   time.Now().UTC(),
	}
}

// mismatchRow is one bar_mismatches row.
type mismatchRow struct {
	SID    int64
	Symbol string
	Day    time.Time
	A      int64
	B      int64
}

// ResultWriter writes runs and their mismatches.
type ResultWriter struct {
	db        DB
	batchSize int
	logger    *slog.Logger
}

// DefaultBatchSize is the number of rows queued per pgx batch.
const DefaultBatchSize = 1000

// NewResultWriter creates a ResultWriter.
func NewResultWriter(db DB, batchSize int, logger *slog.Logger) *ResultWriter {
	if logger == nil {
		logger = slog.Default()
	}
	if batchSize < 1 {
		batchSize = DefaultBatchSize
	}
	return &ResultWriter{
		db:        db,
		batchSize: batchSize,
		logger:    logger,
	}
}

// EnsureSchema creates the results tables.
func (w *ResultWriter) EnsureSchema(ctx context.Context) error {
	if _, err := w.db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("create results schema: %w", err)
	}
	return nil
}

// Write stores run and every mismatch in report in one transaction, so a
// run row never exists without its mismatch rows.
func (w *ResultWriter) Write(ctx context.Context, run Run, report model.Report) error {
	start := time.Now()
	rows := flatten(report)

	if run.FinishedAt.IsZero() {
		run.FinishedAt = time.Now().UTC()
	}

	err := pgx.BeginFunc(ctx, w.db, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO reconcile_runs (run_id, instance_id, range_start, range_end, report_field,
				assets, mismatches, failed, started_at, finished_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		`, run.ID, run.InstanceID, run.Start, run.End, run.ReportField,
			run.Assets, len(rows), run.Failed, run.StartedAt, run.FinishedAt)
		if err != nil {
			return fmt.Errorf("insert run %s: %w", run.ID, err)
		}

		for chunk := range slices.Chunk(rows, w.batchSize) {
			if err := batchInsert(ctx, tx, run.ID, chunk); err != nil {
				return fmt.Errorf("insert mismatches for run %s: %w", run.ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	w.logger.Debug("wrote reconciliation results",
		"run_id", run.ID,
		"mismatches", len(rows),
		"duration", time.Since(start),
	)
	return nil
}

// batchInsert inserts rows using pgx.Batch.
func batchInsert(ctx context.Context, tx pgx.Tx, runID uuid.UUID, rows []mismatchRow) error {
	batch := &pgx.Batch{}
	for _, r := range rows {
		batch.Queue(`
			INSERT INTO bar_mismatches (run_id, sid, symbol, day, value_a, value_b)
			VALUES ($1, $2, $3, $4, $5, $6)
		`, runID, r.SID, r.Symbol, r.Day, r.A, r.B)
	}

	results := tx.SendBatch(ctx, batch)
	defer results.Close()

	for range rows {
		if _, err := results.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// flatten converts report into rows ordered by SID, then day.
func flatten(report model.Report) []mismatchRow {
	assets := make([]model.Asset, 0, len(report))
	for a := range report {
		assets = append(assets, a)
	}
	slices.SortFunc(assets, func(a, b model.Asset) int { return cmp.Compare(a.SID, b.SID) })

	rows := make([]mismatchRow, 0, report.Mismatches())
	for _, a := range assets {
		u := report[a]
		for i := 0; i < u.Len(); i++ {
			m := u.At(i)
			rows = append(rows, mismatchRow{
				SID:    a.SID,
				Symbol: a.Symbol,
				Day:    m.Day,
				A:      m.A,
				B:      m.B,
			})
		}
	}
	return rows
}
