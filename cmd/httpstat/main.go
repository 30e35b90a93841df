// Package main is the entry point for the httpstat CLI.
//
// httpstat is a vmstat/iostat-style continuous monitor for HTTP
// endpoints: it probes one URL at a fixed interval and prints live
// latency statistics over a rolling window of recent samples.
//
// Usage:
//
//	httpstat http://google.com          # fetch once and exit
//	httpstat http://google.com 2        # fetch forever, 2s apart
//	httpstat http://google.com 2 10     # fetch 10 times, 2s apart
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information - set by GoReleaser at build time via ldflags.
// Example: go build -ldflags "-X main.version=1.0.0"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// rootCmd is the monitor itself: the url/delay/count positional contract
// lives on the root so invocation reads like vmstat or iostat.
var rootCmd = &cobra.Command{
	Use:   "httpstat [flags] url [delay [count]]",
	Short: "Continuously measure HTTP endpoint latency",
	Long: `httpstat repeatedly probes a URL and reports live latency statistics.

The delay/count arguments work just like vmstat or iostat:

  httpstat http://google.com          fetch google.com once and exit
  httpstat http://google.com 2        fetch forever, pausing 2 seconds in-between
  httpstat http://google.com 2 10     fetch 10 times, waiting 2 seconds each interval

Each probe issues a HEAD request (network connect time) followed by a GET
request (full document fetch time). One row is printed per successful
probe, computed over the last 500 datapoints (in seconds):

  domain    the domain requested
  status    HTTP response code of the GET
  last      the most recent full-fetch time
  min       the fastest time in the window
  max       the slowest time in the window
  avg       the average response time
  stddev    standard deviation
  net_time  network connect time (the HEAD request)

NOTE: the first request will always take longer (hint: DNS).`,
	Args: cobra.RangeArgs(1, 3),
	RunE: runMonitor,
}

// Execute runs the root command.
// This is the main entry point called from main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error, just exit with code 1
		os.Exit(1)
	}
}

func main() {
	Execute()
}

// versionCmd prints version information.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, commit hash, and build date of this httpstat binary.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("httpstat %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)

	rootCmd.Flags().BoolP("debug", "d", false, "enable debug output")
	rootCmd.Flags().BoolP("external", "e", false, "also fetch externally loaded resources (not implemented)")
	rootCmd.Flags().BoolP("keepalive", "k", false, "enable HTTP keepalive")
	rootCmd.Flags().IntP("num-datapoints", "n", 0, "number of data points to keep in memory (default 500)")
	rootCmd.Flags().Duration("timeout", 0, "per-request timeout (default 5s)")
	rootCmd.Flags().String("config", "", "path to optional YAML config file")

	// runtime failures should not dump usage text over the error
	rootCmd.SilenceUsage = true
}
