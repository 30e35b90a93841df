// Package stats computes summary statistics over a window of samples.
//
// This package is internal to httpstat. It recomputes the full summary
// from the window contents on every call rather than maintaining
// incremental aggregates; at the default window size of 500 samples the
// scan cost per tick is negligible and the code stays obviously correct.
package stats

import (
	"errors"
	"math"
)

// ErrEmptyWindow is returned by [Summarize] when given no samples.
// The monitor only reports after at least one successful probe, so
// reaching this error indicates a caller bug.
var ErrEmptyWindow = errors.New("stats: cannot summarize an empty window")

// Summary holds the statistics reported for one channel's window.
//
// All values are exact float64 results in seconds; rounding for display
// is the reporter's concern.
type Summary struct {
	// Last is the most recently recorded sample.
	Last float64

	// Min is the fastest sample in the window.
	Min float64

	// Max is the slowest sample in the window.
	Max float64

	// Mean is the arithmetic mean of the window.
	Mean float64

	// Stddev is the population standard deviation of the window
	// (divides by N, not N-1).
	Stddev float64
}

// Summarize computes a [Summary] over samples, ordered oldest first.
//
// Returns [ErrEmptyWindow] if samples is empty. Two calls with the same
// input always yield the same result.
func Summarize(samples []float64) (Summary, error) {
	if len(samples) == 0 {
		return Summary{}, ErrEmptyWindow
	}

	s := Summary{
		Last: samples[len(samples)-1],
		Min:  samples[0],
		Max:  samples[0],
	}

	var sum float64
	for _, v := range samples {
		sum += v
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
	}
	s.Mean = sum / float64(len(samples))

	// population variance: numpy.std semantics, divide by N
	var sqsum float64
	for _, v := range samples {
		d := v - s.Mean
		sqsum += d * d
	}
	s.Stddev = math.Sqrt(sqsum / float64(len(samples)))

	return s, nil
}
