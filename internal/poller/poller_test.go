package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/rickgao/barcheck/internal/calendar"
	"github.com/rickgao/barcheck/internal/model"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func day(s string) time.Time {
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return d
}

func march2016(t *testing.T) *calendar.Calendar {
	t.Helper()
	cal, err := calendar.Weekdays(day("2016-03-01"), day("2016-03-31"), []time.Time{day("2016-03-25")})
	if err != nil {
		t.Fatalf("Weekdays failed: %v", err)
	}
	return cal
}

// mockReconciler records requested windows.
type mockReconciler struct {
	mu      sync.Mutex
	windows [][2]time.Time
	report  model.Report
	err     error
}

func (m *mockReconciler) Unpaired(_ context.Context, start, end time.Time) (model.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.windows = append(m.windows, [2]time.Time{start, end})
	return m.report, m.err
}

func TestPoller_Window(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		lookback  int
		wantStart string
		wantEnd   string
		wantOK    bool
	}{
		{
			name:      "weekday",
			now:       day("2016-03-30").Add(18 * time.Hour),
			lookback:  3,
			wantStart: "2016-03-28",
			wantEnd:   "2016-03-30",
			wantOK:    true,
		},
		{
			name:      "holiday weekend",
			now:       day("2016-03-27"),
			lookback:  2,
			wantStart: "2016-03-23",
			wantEnd:   "2016-03-24",
			wantOK:    true,
		},
		{
			name:      "lookback exceeds history",
			now:       day("2016-03-02"),
			lookback:  10,
			wantStart: "2016-03-01",
			wantEnd:   "2016-03-02",
			wantOK:    true,
		},
		{
			name:     "before calendar",
			now:      day("2016-02-15"),
			lookback: 5,
			wantOK:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(Config{Interval: time.Hour, Lookback: tt.lookback}, march2016(t), &mockReconciler{}, nil, nil)
			p.now = func() time.Time { return tt.now }

			start, end, ok := p.window()
			if ok != tt.wantOK {
				t.Fatalf("window() ok = %v, want %v", ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got := start.Format(time.DateOnly); got != tt.wantStart {
				t.Errorf("start = %s, want %s", got, tt.wantStart)
			}
			if got := end.Format(time.DateOnly); got != tt.wantEnd {
				t.Errorf("end = %s, want %s", got, tt.wantEnd)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want Config
	}{
		{
			name: "zero config",
			want: Config{Interval: 24 * time.Hour, Lookback: 5},
		},
		{
			name: "negative values",
			cfg:  Config{Interval: -time.Second, Lookback: -1, Timeout: -time.Second},
			want: Config{Interval: 24 * time.Hour, Lookback: 5},
		},
		{
			name: "explicit values kept",
			cfg:  Config{Interval: time.Minute, Lookback: 2, Timeout: time.Second},
			want: Config{Interval: time.Minute, Lookback: 2, Timeout: time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.cfg, march2016(t), &mockReconciler{}, nil, nil)
			if p.cfg != tt.want {
				t.Errorf("cfg = %+v, want %+v", p.cfg, tt.want)
			}
		})
	}
}

func TestPoller_PollOnce(t *testing.T) {
	report := model.Report{
		{SID: 2}: {Days: []time.Time{day("2016-03-29")}, A: []int64{200001}, B: []int64{0}},
	}
	rec := &mockReconciler{report: report, err: errors.New("1 asset(s) failed")}

	var got Result
	handler := ResultHandlerFunc(func(_ context.Context, res Result) error {
		got = res
		return nil
	})

	p := New(Config{Interval: time.Hour, Lookback: 3, Timeout: time.Second}, march2016(t), rec, handler, nil)
	p.now = func() time.Time { return day("2016-03-31") }
	p.ctx = context.Background()

	p.pollOnce()

	if len(rec.windows) != 1 {
		t.Fatalf("Unpaired calls = %d, want 1", len(rec.windows))
	}
	if !got.Start.Equal(day("2016-03-29")) || !got.End.Equal(day("2016-03-31")) {
		t.Errorf("window = %v..%v, want 2016-03-29..2016-03-31", got.Start, got.End)
	}
	if got.Report.Mismatches() != 1 {
		t.Errorf("Report mismatches = %d, want 1", got.Report.Mismatches())
	}
	if got.Err == nil {
		t.Error("Result.Err = nil, want partial error passed through")
	}
}

func TestPoller_StartStop(t *testing.T) {
	rec := &mockReconciler{report: model.Report{}}

	var called atomic.Int32
	handler := ResultHandlerFunc(func(context.Context, Result) error {
		called.Add(1)
		return nil
	})

	cfg := Config{
		Interval: 20 * time.Millisecond,
		Lookback: 5,
		Timeout:  time.Second,
	}
	p := New(cfg, march2016(t), rec, handler, nil)
	p.now = func() time.Time { return day("2016-03-31") }

	ctx := context.Background()
	if err := p.Start(ctx); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	// Wait for the immediate run plus at least one tick.
	time.Sleep(70 * time.Millisecond)

	stopCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := p.Stop(stopCtx); err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if n := called.Load(); n < 2 {
		t.Errorf("handler calls = %d, want >= 2", n)
	}
}
