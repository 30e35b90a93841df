// Package window provides the bounded sample history for httpstat.
//
// This package is internal to httpstat and implements the fixed-capacity
// FIFO buffer that makes indefinite monitoring runs possible with bounded
// memory. Each monitored (domain, channel) pair owns one [Window].
//
// The main components are:
//
//   - [Window]: Fixed-capacity ring buffer of elapsed-time samples
//   - [New]: Constructor validating the capacity
//
// The window is not safe for concurrent use; the monitor loop is strictly
// sequential and each window has a single owner.
package window

import "fmt"

// DefaultCapacity is the number of samples retained per channel when no
// explicit capacity is configured.
const DefaultCapacity = 500

// Window is a fixed-capacity FIFO buffer of elapsed-time samples.
//
// Samples are float64 durations in seconds. Once the window holds
// capacity samples, each push evicts exactly the oldest sample, so the
// retained history is always the most recent capacity pushes in push
// order. The zero value is not usable; create windows with [New].
type Window struct {
	buf   []float64
	pos   int // next write position
	count int // number of retained samples, up to len(buf)
}

// New creates a [Window] retaining at most capacity samples.
//
// Returns an error if capacity is not positive.
func New(capacity int) (*Window, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("window capacity must be positive, got %d", capacity)
	}
	return &Window{buf: make([]float64, capacity)}, nil
}

// Push appends a sample, evicting the oldest sample when the window is
// already at capacity. Exactly one sample is evicted per push, never more.
func (w *Window) Push(sample float64) {
	w.buf[w.pos] = sample
	w.pos = (w.pos + 1) % len(w.buf)
	if w.count < len(w.buf) {
		w.count++
	}
}

// Len returns the number of samples currently retained.
// Always satisfies 0 <= Len() <= Cap().
func (w *Window) Len() int {
	return w.count
}

// Cap returns the window's fixed capacity.
func (w *Window) Cap() int {
	return len(w.buf)
}

// Last returns the most recently pushed sample.
//
// Returns false if the window is empty.
func (w *Window) Last() (float64, bool) {
	if w.count == 0 {
		return 0, false
	}
	return w.buf[(w.pos-1+len(w.buf))%len(w.buf)], true
}

// Snapshot returns a copy of the retained samples, oldest first.
//
// The returned slice is owned by the caller; mutating it does not affect
// the window. An empty window yields a nil slice.
func (w *Window) Snapshot() []float64 {
	if w.count == 0 {
		return nil
	}
	out := make([]float64, 0, w.count)
	start := (w.pos - w.count + len(w.buf)) % len(w.buf)
	for i := 0; i < w.count; i++ {
		out = append(out, w.buf[(start+i)%len(w.buf)])
	}
	return out
}
