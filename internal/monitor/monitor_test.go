package monitor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/jpalmerr/httpstat/internal/probe"
	"github.com/jpalmerr/httpstat/internal/report"
)

// testLogger returns a logger that discards all output for clean test output.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// proberFunc adapts a function to the [Prober] interface for stubbing.
type proberFunc func(ctx context.Context, url string, timeout time.Duration) (probe.Result, error)

func (f proberFunc) Probe(ctx context.Context, url string, timeout time.Duration) (probe.Result, error) {
	return f(ctx, url, timeout)
}

// recorder captures everything the monitor hands to the reporter.
type recorder struct {
	headers int
	rows    []report.Row
}

func (r *recorder) WriteHeader() { r.headers++ }

func (r *recorder) WriteRow(row report.Row) { r.rows = append(r.rows, row) }

// sleepRecorder captures requested inter-tick delays without waiting.
type sleepRecorder struct {
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.delays = append(s.delays, d)
	return ctx.Err()
}

// fixedProber returns the same measurements on every tick.
func fixedProber(status int, head, get time.Duration) proberFunc {
	return func(context.Context, string, time.Duration) (probe.Result, error) {
		return probe.Result{StatusCode: status, HeadElapsed: head, GetElapsed: get}, nil
	}
}

func newTestMonitor(t *testing.T, cfg Config, p Prober, rec *recorder, sr *sleepRecorder) *Monitor {
	t.Helper()
	m, err := New(cfg,
		WithProber(p),
		WithReporter(rec),
		WithLogger(testLogger()),
		WithSleep(sr.sleep),
	)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return m
}

// TestNew_Validation verifies startup argument checks.
func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing url", Config{}},
		{"url without host", Config{URL: "example.com"}},
		{"negative delay", Config{URL: "http://example.com", Delay: -time.Second}},
		{"negative capacity", Config{URL: "http://example.com", WindowCapacity: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cfg); err == nil {
				t.Errorf("New(%+v): expected error, got nil", tt.cfg)
			}
		})
	}
}

// TestMonitor_SingleTick verifies the one-positional-argument contract:
// exactly one probe, no sleep at all, one header and one row.
func TestMonitor_SingleTick(t *testing.T) {
	rec := &recorder{}
	sr := &sleepRecorder{}
	m := newTestMonitor(t, Config{URL: "http://example.com", Count: 1},
		fixedProber(200, 20*time.Millisecond, 120*time.Millisecond), rec, sr)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sr.delays) != 0 {
		t.Errorf("single tick slept %d times (%v), want 0", len(sr.delays), sr.delays)
	}
	if rec.headers != 1 {
		t.Errorf("header written %d times, want 1", rec.headers)
	}
	if len(rec.rows) != 1 {
		t.Fatalf("got %d rows, want 1", len(rec.rows))
	}

	row := rec.rows[0]
	if row.Domain != "example.com" {
		t.Errorf("Domain = %q, want %q", row.Domain, "example.com")
	}
	if row.Status != 200 {
		t.Errorf("Status = %d, want 200", row.Status)
	}
	if row.Stats.Last != 0.12 {
		t.Errorf("Stats.Last = %v, want 0.12", row.Stats.Last)
	}
	if row.NetTime != 0.02 {
		t.Errorf("NetTime = %v, want 0.02", row.NetTime)
	}
}

// TestMonitor_SleepsBetweenTicksOnly verifies the first tick fires with
// no upfront sleep and each later tick is preceded by exactly one sleep
// of the configured delay.
func TestMonitor_SleepsBetweenTicksOnly(t *testing.T) {
	rec := &recorder{}
	sr := &sleepRecorder{}

	var probesBeforeFirstSleep int
	p := proberFunc(func(context.Context, string, time.Duration) (probe.Result, error) {
		if len(sr.delays) == 0 {
			probesBeforeFirstSleep++
		}
		return probe.Result{StatusCode: 200, HeadElapsed: time.Millisecond, GetElapsed: time.Millisecond}, nil
	})

	m := newTestMonitor(t, Config{URL: "http://example.com", Delay: 2 * time.Second, Count: 5}, p, rec, sr)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if probesBeforeFirstSleep != 1 {
		t.Errorf("%d probes before the first sleep, want exactly 1", probesBeforeFirstSleep)
	}
	if len(sr.delays) != 4 {
		t.Fatalf("slept %d times, want 4", len(sr.delays))
	}
	for i, d := range sr.delays {
		if d != 2*time.Second {
			t.Errorf("sleep %d = %v, want 2s", i, d)
		}
	}
	if len(rec.rows) != 5 {
		t.Errorf("got %d rows, want 5", len(rec.rows))
	}
}

// TestMonitor_ZeroDelayHonored verifies that an explicit delay of zero
// runs ticks back-to-back: the monitor must not substitute a default for
// a zero delay the caller asked for.
func TestMonitor_ZeroDelayHonored(t *testing.T) {
	rec := &recorder{}
	sr := &sleepRecorder{}
	m := newTestMonitor(t, Config{URL: "http://example.com", Delay: 0, Count: 3},
		fixedProber(200, time.Millisecond, time.Millisecond), rec, sr)

	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(sr.delays) != 2 {
		t.Fatalf("slept %d times, want 2", len(sr.delays))
	}
	for i, d := range sr.delays {
		if d != 0 {
			t.Errorf("sleep %d requested %v, want 0 (explicit zero delay)", i, d)
		}
	}
	if len(rec.rows) != 3 {
		t.Errorf("got %d rows, want 3", len(rec.rows))
	}
}

// TestMonitor_FailedTickConsumesBudget verifies the failure contract:
// with a prober that fails on tick 2 of 3, the run emits 2 rows, retains
// 2 samples, and still counts 3 ticks.
func TestMonitor_FailedTickConsumesBudget(t *testing.T) {
	rec := &recorder{}
	sr := &sleepRecorder{}

	var calls int
	p := proberFunc(func(context.Context, string, time.Duration) (probe.Result, error) {
		calls++
		if calls == 2 {
			return probe.Result{}, errors.New("connection refused")
		}
		return probe.Result{
			StatusCode:  200,
			HeadElapsed: 10 * time.Millisecond,
			GetElapsed:  time.Duration(calls) * 100 * time.Millisecond,
		}, nil
	})

	m := newTestMonitor(t, Config{URL: "http://example.com", Count: 3}, p, rec, sr)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if m.Ticks() != 3 {
		t.Errorf("Ticks() = %d, want 3", m.Ticks())
	}
	if len(rec.rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rec.rows))
	}

	sum := m.Summary()
	if sum.GetSamples != 2 {
		t.Errorf("GetSamples = %d, want 2", sum.GetSamples)
	}
	if sum.HeadSamples != 2 {
		t.Errorf("HeadSamples = %d, want 2", sum.HeadSamples)
	}
	if sum.Failures != 1 {
		t.Errorf("Failures = %d, want 1", sum.Failures)
	}

	// statistics come from ticks 1 and 3 only
	if got := rec.rows[1].Stats.Min; got != 0.1 {
		t.Errorf("final row Min = %v, want 0.1", got)
	}
	if got := rec.rows[1].Stats.Last; got != 0.3 {
		t.Errorf("final row Last = %v, want 0.3", got)
	}
}

// TestMonitor_UnboundedStopsOnCancel verifies that an unbounded run ends
// cleanly (nil error) when the context is cancelled.
func TestMonitor_UnboundedStopsOnCancel(t *testing.T) {
	rec := &recorder{}
	sr := &sleepRecorder{}
	ctx, cancel := context.WithCancel(context.Background())

	var calls int
	p := proberFunc(func(context.Context, string, time.Duration) (probe.Result, error) {
		calls++
		if calls == 5 {
			cancel()
		}
		return probe.Result{StatusCode: 200, HeadElapsed: time.Millisecond, GetElapsed: time.Millisecond}, nil
	})

	m := newTestMonitor(t, Config{URL: "http://example.com", Delay: time.Second}, p, rec, sr)
	if err := m.Run(ctx); err != nil {
		t.Fatalf("Run after cancel returned %v, want nil", err)
	}

	if calls != 5 {
		t.Errorf("prober called %d times, want 5", calls)
	}
	if len(rec.rows) != 5 {
		t.Errorf("got %d rows, want 5", len(rec.rows))
	}
}

// TestMonitor_WindowCapacity verifies that statistics reflect only the
// retained window once the run outlives the configured capacity.
func TestMonitor_WindowCapacity(t *testing.T) {
	rec := &recorder{}
	sr := &sleepRecorder{}

	var calls int
	p := proberFunc(func(context.Context, string, time.Duration) (probe.Result, error) {
		calls++
		return probe.Result{
			StatusCode:  200,
			HeadElapsed: time.Millisecond,
			GetElapsed:  time.Duration(calls) * time.Second,
		}, nil
	})

	m := newTestMonitor(t, Config{URL: "http://example.com", Count: 5, WindowCapacity: 2}, p, rec, sr)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sum := m.Summary()
	if sum.GetSamples != 2 {
		t.Errorf("GetSamples = %d, want 2 (capacity bound)", sum.GetSamples)
	}

	// after 5 ticks with capacity 2, the window holds samples 4 and 5
	final := rec.rows[len(rec.rows)-1].Stats
	if final.Min != 4 {
		t.Errorf("final Min = %v, want 4 (oldest samples evicted)", final.Min)
	}
	if final.Max != 5 {
		t.Errorf("final Max = %v, want 5", final.Max)
	}
	if final.Mean != 4.5 {
		t.Errorf("final Mean = %v, want 4.5", final.Mean)
	}
}

// TestMonitor_WindowCapacityOne verifies that both channel windows are
// constructed with the configured capacity: at capacity 1 each retains
// exactly the latest sample.
func TestMonitor_WindowCapacityOne(t *testing.T) {
	rec := &recorder{}
	sr := &sleepRecorder{}

	var calls int
	p := proberFunc(func(context.Context, string, time.Duration) (probe.Result, error) {
		calls++
		return probe.Result{
			StatusCode:  200,
			HeadElapsed: time.Duration(calls) * 10 * time.Millisecond,
			GetElapsed:  time.Duration(calls) * time.Second,
		}, nil
	})

	m := newTestMonitor(t, Config{URL: "http://example.com", Count: 3, WindowCapacity: 1}, p, rec, sr)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sum := m.Summary()
	if sum.GetSamples != 1 || sum.HeadSamples != 1 {
		t.Errorf("sample counts = %d/%d, want 1/1", sum.GetSamples, sum.HeadSamples)
	}
	if sum.Get.Last != 3 || sum.Get.Min != 3 {
		t.Errorf("Get summary = %+v, want only the latest sample (3s)", sum.Get)
	}
	if sum.Head.Last != 0.03 {
		t.Errorf("Head.Last = %v, want 0.03", sum.Head.Last)
	}
}

// TestMonitor_SummaryEmptyRun verifies the summary of a run where every
// tick failed: counts advance, sample counts stay zero.
func TestMonitor_SummaryEmptyRun(t *testing.T) {
	rec := &recorder{}
	sr := &sleepRecorder{}
	p := proberFunc(func(context.Context, string, time.Duration) (probe.Result, error) {
		return probe.Result{}, errors.New("no route to host")
	})

	m := newTestMonitor(t, Config{URL: "http://example.com", Count: 3}, p, rec, sr)
	if err := m.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(rec.rows) != 0 {
		t.Errorf("got %d rows from an all-failure run, want 0", len(rec.rows))
	}

	sum := m.Summary()
	if sum.Ticks != 3 || sum.Failures != 3 {
		t.Errorf("Ticks/Failures = %d/%d, want 3/3", sum.Ticks, sum.Failures)
	}
	if sum.GetSamples != 0 || sum.HeadSamples != 0 {
		t.Errorf("sample counts = %d/%d, want 0/0", sum.GetSamples, sum.HeadSamples)
	}
}
