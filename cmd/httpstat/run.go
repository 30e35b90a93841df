package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jpalmerr/httpstat/internal/config"
	"github.com/jpalmerr/httpstat/internal/monitor"
	"github.com/jpalmerr/httpstat/internal/probe"
	"github.com/jpalmerr/httpstat/internal/report"
)

// newLogger creates a JSON logger for CLI use. Diagnostics go to stderr
// so the row stream on stdout stays machine-readable.
func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// runMonitor wires flags, config file, and positional arguments into a
// monitor run. It blocks until the tick budget is exhausted or the
// process is interrupted; a clean interrupt is a normal exit.
func runMonitor(cmd *cobra.Command, args []string) error {
	debug, _ := cmd.Flags().GetBool("debug")
	logger := newLogger(debug).With("run_id", uuid.NewString())

	if external, _ := cmd.Flags().GetBool("external"); external {
		logger.Error("sorry, --external resource monitoring is not yet implemented (but it's a cool idea, right?)")
		return monitor.ErrExternalUnsupported
	}

	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		logger.Debug("config loaded", "path", path)
	}

	// flags take precedence over the config file
	if cmd.Flags().Changed("keepalive") {
		cfg.Keepalive, _ = cmd.Flags().GetBool("keepalive")
	}
	if cmd.Flags().Changed("num-datapoints") {
		cfg.NumDatapoints, _ = cmd.Flags().GetInt("num-datapoints")
	}
	if cmd.Flags().Changed("timeout") {
		timeout, _ := cmd.Flags().GetDuration("timeout")
		cfg.Timeout = config.Duration(timeout)
	}

	sched, err := parseSchedule(args, cfg.Delay.Duration())
	if err != nil {
		return err
	}

	client := probe.NewClient(cfg.Keepalive)
	defer client.Close()

	writer := report.NewWriter(os.Stdout)

	mon, err := monitor.New(monitor.Config{
		URL:            sched.url,
		Delay:          sched.delay,
		Count:          sched.count,
		Timeout:        cfg.Timeout.Duration(),
		WindowCapacity: cfg.NumDatapoints,
	},
		monitor.WithProber(client),
		monitor.WithReporter(writer),
		monitor.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	// interrupt ends the run cleanly with exit status 0
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Debug("starting monitor",
		"url", sched.url,
		"delay", sched.delay.String(),
		"count", sched.count,
		"keepalive", cfg.Keepalive,
		"num_datapoints", cfg.NumDatapoints,
	)

	if err := mon.Run(ctx); err != nil {
		return fmt.Errorf("monitor error: %w", err)
	}

	writer.WriteSummary(mon.Summary())
	return nil
}
