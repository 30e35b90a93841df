// Package monitor drives the httpstat polling loop.
//
// This package is internal to httpstat and owns the tick lifecycle: sleep
// (except before the first tick), probe, record samples, report. The
// loop is strictly sequential; there are no background goroutines and no
// concurrent window mutation. Interruption is observed between phases
// via the run context and ends the loop cleanly.
//
// The main components are:
//
//   - [Monitor]: The scheduler, owning the per-domain sample windows
//   - [Config]: Iteration and measurement parameters
//   - [Prober] / [Reporter]: Seams for the HTTP transport and the output
package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"time"

	"github.com/jpalmerr/httpstat/internal/probe"
	"github.com/jpalmerr/httpstat/internal/report"
	"github.com/jpalmerr/httpstat/internal/stats"
	"github.com/jpalmerr/httpstat/internal/window"
)

// DefaultTimeout bounds each individual HEAD or GET attempt.
const DefaultTimeout = 5 * time.Second

// ErrExternalUnsupported is returned when external-resource monitoring is
// requested. The feature is announced but not built; requesting it must
// fail loudly rather than silently monitor less than asked.
var ErrExternalUnsupported = errors.New("external resource monitoring is not implemented")

// Prober performs one dual-timed probe against a URL.
//
// [probe.Client] is the production implementation; tests substitute stubs.
type Prober interface {
	Probe(ctx context.Context, url string, timeout time.Duration) (probe.Result, error)
}

// Reporter receives the header once and one row per successful tick.
//
// [report.Writer] is the production implementation.
type Reporter interface {
	WriteHeader()
	WriteRow(report.Row)
}

// Config holds the iteration and measurement parameters for a run.
type Config struct {
	// URL is the target to probe. Required.
	URL string

	// Delay is the pause between probe starts. The first probe fires
	// immediately; Delay applies from the second tick on. Zero is a
	// valid value and runs ticks back-to-back.
	Delay time.Duration

	// Count is the number of ticks to run. Zero or negative means run
	// until the context is cancelled.
	Count int

	// Timeout bounds each individual request attempt.
	Timeout time.Duration

	// WindowCapacity is the number of samples retained per channel.
	WindowCapacity int
}

// target holds the two per-channel sample windows for one domain.
type target struct {
	head *window.Window
	get  *window.Window
}

// Monitor schedules repeated probes of a single target and maintains the
// rolling latency windows.
//
// The windows are owned by the Monitor instance, keyed by domain, so
// extending to multiple targets means more map entries, not shared state.
// Monitor is not safe for concurrent use; one Run per instance.
type Monitor struct {
	cfg      config
	domain   string
	targets  map[string]*target
	ticks    int
	failures int
}

// config holds mutable state during Monitor construction.
type config struct {
	Config
	prober   Prober
	reporter Reporter
	logger   *slog.Logger
	sleep    func(ctx context.Context, d time.Duration) error
}

// Option configures a [Monitor] during construction.
//
// Options implement the functional options pattern and return an error
// if validation fails. Built-in options: [WithProber], [WithReporter],
// [WithLogger], [WithSleep].
type Option func(*config) error

// WithProber replaces the HTTP transport. Intended for tests; the default
// is a [probe.Client] with keepalive disabled.
func WithProber(p Prober) Option {
	return func(c *config) error {
		if p == nil {
			return errors.New("prober must not be nil")
		}
		c.prober = p
		return nil
	}
}

// WithReporter replaces the output destination. The default writes
// vmstat-style rows to stdout via [report.NewWriter].
func WithReporter(r Reporter) Option {
	return func(c *config) error {
		if r == nil {
			return errors.New("reporter must not be nil")
		}
		c.reporter = r
		return nil
	}
}

// WithLogger sets the logger for per-tick diagnostics (failed probes).
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) error {
		if logger == nil {
			return errors.New("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithSleep replaces the inter-tick sleep. Intended for tests, which can
// record requested delays and return immediately instead of waiting.
func WithSleep(sleep func(ctx context.Context, d time.Duration) error) Option {
	return func(c *config) error {
		if sleep == nil {
			return errors.New("sleep must not be nil")
		}
		c.sleep = sleep
		return nil
	}
}

// New creates a [Monitor] for cfg.URL.
//
// The URL must parse and carry a host; the domain reported on every row
// is its authority component. Zero-valued Timeout and WindowCapacity
// fall back to [DefaultTimeout] and [window.DefaultCapacity]; a zero
// Delay is honored as-is.
func New(cfg Config, opts ...Option) (*Monitor, error) {
	if cfg.URL == "" {
		return nil, errors.New("url is required")
	}
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid url %q: %w", cfg.URL, err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("url %q has no host; a scheme like http:// is required", cfg.URL)
	}

	if cfg.Delay < 0 {
		return nil, fmt.Errorf("delay must not be negative, got %s", cfg.Delay)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.WindowCapacity == 0 {
		cfg.WindowCapacity = window.DefaultCapacity
	}
	if cfg.WindowCapacity < 0 {
		return nil, fmt.Errorf("window capacity must be positive, got %d", cfg.WindowCapacity)
	}

	c := config{Config: cfg}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return nil, err
		}
	}

	if c.prober == nil {
		c.prober = probe.NewClient(false)
	}
	if c.reporter == nil {
		c.reporter = report.NewWriter(os.Stdout)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	if c.sleep == nil {
		c.sleep = sleepContext
	}

	return &Monitor{
		cfg:     c,
		domain:  parsed.Host,
		targets: make(map[string]*target),
	}, nil
}

// Run executes the polling loop until the tick budget is exhausted or
// ctx is cancelled.
//
// Cancellation is a normal way to end an unbounded run, so Run returns
// nil for it; callers map that to exit status 0. The header row is
// written once before the first tick.
func (m *Monitor) Run(ctx context.Context) error {
	m.cfg.reporter.WriteHeader()

	for tick := 0; m.cfg.Count <= 0 || tick < m.cfg.Count; tick++ {
		if tick > 0 {
			if err := m.cfg.sleep(ctx, m.cfg.Delay); err != nil {
				return nil
			}
		}
		if ctx.Err() != nil {
			return nil
		}

		result, err := m.cfg.prober.Probe(ctx, m.cfg.URL, m.cfg.Timeout)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// a failed tick consumes budget but contributes no samples
			m.ticks++
			m.failures++
			m.cfg.logger.Error("probe failed", "domain", m.domain, "error", err)
			continue
		}
		m.ticks++

		tgt := m.targetFor(m.domain)
		tgt.head.Push(result.HeadElapsed.Seconds())
		tgt.get.Push(result.GetElapsed.Seconds())

		summary, err := stats.Summarize(tgt.get.Snapshot())
		if err != nil {
			return fmt.Errorf("summarizing %s: %w", m.domain, err)
		}
		netTime, _ := tgt.head.Last()

		m.cfg.reporter.WriteRow(report.Row{
			Domain:  m.domain,
			Status:  result.StatusCode,
			Stats:   summary,
			NetTime: netTime,
		})
	}

	return nil
}

// Ticks returns the number of probe attempts so far, including failures.
func (m *Monitor) Ticks() int {
	return m.ticks
}

// Summary aggregates the run for the closing table.
func (m *Monitor) Summary() report.RunSummary {
	sum := report.RunSummary{
		Domain:   m.domain,
		Ticks:    m.ticks,
		Failures: m.failures,
	}

	tgt, ok := m.targets[m.domain]
	if !ok {
		return sum
	}

	if s, err := stats.Summarize(tgt.get.Snapshot()); err == nil {
		sum.Get = s
		sum.GetSamples = tgt.get.Len()
	}
	if s, err := stats.Summarize(tgt.head.Snapshot()); err == nil {
		sum.Head = s
		sum.HeadSamples = tgt.head.Len()
	}

	return sum
}

// targetFor returns the windows for domain, creating them on first use.
func (m *Monitor) targetFor(domain string) *target {
	if tgt, ok := m.targets[domain]; ok {
		return tgt
	}

	tgt := &target{
		head: mustWindow(m.cfg.WindowCapacity),
		get:  mustWindow(m.cfg.WindowCapacity),
	}
	m.targets[domain] = tgt
	return tgt
}

// mustWindow constructs a window for a capacity already validated in New.
func mustWindow(capacity int) *window.Window {
	w, err := window.New(capacity)
	if err != nil {
		panic(err)
	}
	return w
}

// sleepContext pauses for d or until ctx is cancelled, whichever first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
