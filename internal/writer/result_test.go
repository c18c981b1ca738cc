package writer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/rickgao/barcheck/internal/model"
)

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

// fakeResults answers every queued statement with err.
type fakeResults struct {
	err    error
	closed bool
}

func (r *fakeResults) Exec() (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag("INSERT 0 1"), r.err
}
func (r *fakeResults) Query() (pgx.Rows, error) { return nil, errors.New("not implemented") }
func (r *fakeResults) QueryRow() pgx.Row        { return nil }
func (r *fakeResults) Close() error {
	r.closed = true
	return nil
}

// fakeDB records statements. Statements run inside a transaction are
// recorded here too.
type fakeDB struct {
	execs      []string
	execErr    error
	beginErr   error
	batches    []int
	results    *fakeResults
	committed  bool
	rolledBack bool
}

func (d *fakeDB) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	d.execs = append(d.execs, sql)
	return pgconn.NewCommandTag("INSERT 0 1"), d.execErr
}

func (d *fakeDB) Begin(context.Context) (pgx.Tx, error) {
	if d.beginErr != nil {
		return nil, d.beginErr
	}
	return &fakeTx{db: d}, nil
}

// fakeTx forwards to its fakeDB. Methods ResultWriter does not use panic
// through the nil embedded interface.
type fakeTx struct {
	pgx.Tx
	db *fakeDB
}

func (tx *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return tx.db.Exec(ctx, sql, args...)
}

func (tx *fakeTx) SendBatch(_ context.Context, b *pgx.Batch) pgx.BatchResults {
	tx.db.batches = append(tx.db.batches, b.Len())
	if tx.db.results == nil {
		tx.db.results = &fakeResults{}
	}
	return tx.db.results
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.db.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.db.committed {
		return pgx.ErrTxClosed
	}
	tx.db.rolledBack = true
	return nil
}

func testReport() model.Report {
	return model.Report{
		{SID: 2, Symbol: "EQUITY2"}: {
			Days: []time.Time{day("2016-03-29")},
			A:    []int64{200001},
			B:    []int64{0},
		},
		{SID: 1, Symbol: "EQUITY1"}: {
			Days: []time.Time{day("2016-03-02"), day("2016-03-30")},
			A:    []int64{0, 100002},
			B:    []int64{7, 0},
		},
	}
}

func TestFlatten(t *testing.T) {
	got := flatten(testReport())

	want := []mismatchRow{
		{SID: 1, Symbol: "EQUITY1", Day: day("2016-03-02"), A: 0, B: 7},
		{SID: 1, Symbol: "EQUITY1", Day: day("2016-03-30"), A: 100002, B: 0},
		{SID: 2, Symbol: "EQUITY2", Day: day("2016-03-29"), A: 200001, B: 0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("flatten mismatch (-want +got):\n%s", diff)
	}
}

func TestFlatten_Empty(t *testing.T) {
	if got := flatten(model.Report{}); len(got) != 0 {
		t.Errorf("flatten(empty) = %v, want no rows", got)
	}
}

func TestNewRun(t *testing.T) {
	run := NewRun("test", day("2016-03-01").Add(5*time.Hour), day("2016-03-31"), "volume")

	if run.ID.String() == "00000000-0000-0000-0000-000000000000" {
		t.Error("NewRun ID is nil uuid")
	}
	if !run.Start.Equal(day("2016-03-01")) {
		t.Errorf("Start = %v, want 2016-03-01", run.Start)
	}
	if run.StartedAt.IsZero() {
		t.Error("StartedAt not set")
	}
}

func TestResultWriter_Write(t *testing.T) {
	db := &fakeDB{}
	w := NewResultWriter(db, 2, nil)

	run := NewRun("test", day("2016-03-01"), day("2016-03-31"), "volume")
	if err := w.Write(context.Background(), run, testReport()); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if len(db.execs) != 1 || !strings.Contains(db.execs[0], "INSERT INTO reconcile_runs") {
		t.Errorf("execs = %v, want one reconcile_runs insert", db.execs)
	}
	// 3 rows with batch size 2.
	if diff := cmp.Diff([]int{2, 1}, db.batches); diff != "" {
		t.Errorf("batch sizes mismatch (-want +got):\n%s", diff)
	}
	if !db.results.closed {
		t.Error("batch results not closed")
	}
	if !db.committed || db.rolledBack {
		t.Errorf("committed = %v, rolledBack = %v, want commit only", db.committed, db.rolledBack)
	}
}

func TestResultWriter_WriteEmptyReport(t *testing.T) {
	db := &fakeDB{}
	w := NewResultWriter(db, 0, nil)

	run := NewRun("test", day("2016-03-01"), day("2016-03-31"), "volume")
	if err := w.Write(context.Background(), run, model.Report{}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if len(db.execs) != 1 {
		t.Errorf("execs = %d, want 1", len(db.execs))
	}
	if len(db.batches) != 0 {
		t.Errorf("batches = %v, want none", db.batches)
	}
}

func TestResultWriter_WriteErrors(t *testing.T) {
	boom := errors.New("relation does not exist")

	db := &fakeDB{execErr: boom}
	w := NewResultWriter(db, 10, nil)
	run := NewRun("test", day("2016-03-01"), day("2016-03-31"), "volume")

	if err := w.Write(context.Background(), run, testReport()); !errors.Is(err, boom) {
		t.Errorf("Write() error = %v, want %v", err, boom)
	}

	db = &fakeDB{beginErr: boom}
	w = NewResultWriter(db, 10, nil)
	if err := w.Write(context.Background(), run, testReport()); !errors.Is(err, boom) {
		t.Errorf("Write() begin error = %v, want %v", err, boom)
	}
	if len(db.execs) != 0 {
		t.Errorf("execs = %v, want none without a transaction", db.execs)
	}
}

func TestResultWriter_BatchErrorRollsBack(t *testing.T) {
	boom := errors.New("value out of range")
	db := &fakeDB{results: &fakeResults{err: boom}}
	w := NewResultWriter(db, 2, nil)
	run := NewRun("test", day("2016-03-01"), day("2016-03-31"), "volume")

	if err := w.Write(context.Background(), run, testReport()); !errors.Is(err, boom) {
		t.Fatalf("Write() error = %v, want %v", err, boom)
	}
	if db.committed {
		t.Error("run committed despite failed mismatch insert")
	}
	if !db.rolledBack {
		t.Error("transaction not rolled back")
	}
	// The first batch fails, so the second is never sent.
	if diff := cmp.Diff([]int{2}, db.batches); diff != "" {
		t.Errorf("batch sizes mismatch (-want +got):\n%s", diff)
	}
}

func TestResultWriter_EnsureSchema(t *testing.T) {
	db := &fakeDB{}
	w := NewResultWriter(db, 0, nil)

	if err := w.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema() error = %v", err)
	}
	if len(db.execs) != 1 || !strings.Contains(db.execs[0], "CREATE TABLE IF NOT EXISTS bar_mismatches") {
		t.Errorf("execs = %v, want schema DDL", db.execs)
	}
}
