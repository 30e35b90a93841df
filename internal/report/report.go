// Package report renders monitor output for httpstat.
//
// This package is internal to httpstat and owns all presentation: the
// streaming vmstat-style rows written once per successful tick, and the
// summary table rendered when a run finishes. Statistics arrive as exact
// floats; rounding to the fixed 4-decimal precision happens here and
// nowhere else.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/jpalmerr/httpstat/internal/stats"
)

// precision is the number of decimal places for all duration columns,
// which are reported in seconds.
const precision = 4

// rowTemplate lays out the streaming columns: domain, status, then the
// five GET statistics and the HEAD-derived network time.
const rowTemplate = "%-15s %-7s %-7s %-7s %-7s %-7s %-7s %-7s\n"

// Row is the data contract for one successful tick.
type Row struct {
	// Domain is the authority component of the monitored URL.
	Domain string

	// Status is the HTTP status code of the tick's GET response.
	Status int

	// Stats summarizes the GET window at the time of the tick.
	Stats stats.Summary

	// NetTime is the tick's HEAD elapsed time in seconds, a proxy for
	// network connection latency.
	NetTime float64
}

// RunSummary aggregates a finished run for the closing table.
type RunSummary struct {
	// Domain is the monitored domain.
	Domain string

	// Ticks is the number of probe attempts, including failures.
	Ticks int

	// Failures is the number of ticks that produced no samples.
	Failures int

	// Head and Get summarize the final contents of each channel's window.
	Head stats.Summary
	Get  stats.Summary

	// HeadSamples and GetSamples are the retained sample counts.
	HeadSamples int
	GetSamples  int
}

// Writer emits monitor output to a single destination.
//
// Writer is not safe for concurrent use; the monitor loop is sequential.
type Writer struct {
	out io.Writer
}

// NewWriter creates a [Writer] emitting to out.
func NewWriter(out io.Writer) *Writer {
	return &Writer{out: out}
}

// WriteHeader emits the column header row. Call once at startup.
func (w *Writer) WriteHeader() {
	fmt.Fprintf(w.out, rowTemplate,
		"domain", "status", "last", "min", "max", "avg", "stddev", "net_time")
}

// WriteRow emits one tick's row with durations fixed to 4 decimal places.
func (w *Writer) WriteRow(row Row) {
	fmt.Fprintf(w.out, rowTemplate,
		row.Domain,
		strconv.Itoa(row.Status),
		formatSeconds(row.Stats.Last),
		formatSeconds(row.Stats.Min),
		formatSeconds(row.Stats.Max),
		formatSeconds(row.Stats.Mean),
		formatSeconds(row.Stats.Stddev),
		formatSeconds(row.NetTime),
	)
}

// WriteSummary renders the end-of-run table with per-channel aggregates.
//
// Nothing is rendered when the run produced no samples.
func (w *Writer) WriteSummary(sum RunSummary) {
	if sum.GetSamples == 0 && sum.HeadSamples == 0 {
		return
	}

	fmt.Fprintf(w.out, "\nsummary for %s (%d ticks, %d failed):\n",
		sum.Domain, sum.Ticks, sum.Failures)

	table := tablewriter.NewTable(w.out,
		tablewriter.WithHeader([]string{
			"channel", "samples", "last", "min", "max", "avg", "stddev",
		}),
	)

	if sum.GetSamples > 0 {
		table.Append(summaryLine("get", sum.GetSamples, sum.Get))
	}
	if sum.HeadSamples > 0 {
		table.Append(summaryLine("head", sum.HeadSamples, sum.Head))
	}

	table.Render()
}

func summaryLine(channel string, samples int, s stats.Summary) []string {
	return []string{
		channel,
		strconv.Itoa(samples),
		formatSeconds(s.Last),
		formatSeconds(s.Min),
		formatSeconds(s.Max),
		formatSeconds(s.Mean),
		formatSeconds(s.Stddev),
	}
}

// formatSeconds renders a duration in seconds to the fixed precision.
func formatSeconds(v float64) string {
	return strconv.FormatFloat(v, 'f', precision, 64)
}
