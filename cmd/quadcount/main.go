// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/quadcount/cmd/quadcount/config"
	"github.com/AleutianAI/quadcount/pkg/logging"
	"github.com/AleutianAI/quadcount/pkg/telemetry"
	"github.com/AleutianAI/quadcount/pkg/ux"
)

// Build metadata, set with -ldflags at release time.
var (
	version = "dev"
	commit  = "none"
)

// exitCode lets run functions request a nonzero exit without skipping
// the PersistentPostRun cleanup. main applies it after Execute returns.
var exitCode int

var (
	appLogger         *logging.Logger
	telemetryShutdown func(context.Context) error
	metricsShutdown   func(context.Context) error
)

func main() {
	// Execute the root command. Cobra handles parsing the arguments.
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

func init() {
	rootCmd.Version = version

	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if err := config.Load(); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}

		// Output mode: flag wins, then environment and TTY detection.
		if outputMode != "" {
			ux.SetMode(ux.ParseMode(outputMode))
		} else {
			ux.InitMode()
		}

		level := config.Global.Logging.Level
		if logLevelFlag != "" {
			level = logLevelFlag
		}
		appLogger = logging.New(logging.Config{
			Level:   logging.ParseLevel(level),
			LogDir:  config.Global.Logging.Dir,
			Service: "quadcount",
			JSON:    config.Global.Logging.JSON,
		})
		appLogger.SetDefault()

		initTelemetry(cmd.Context())
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if metricsShutdown != nil {
			if err := metricsShutdown(ctx); err != nil {
				appLogger.Warn("metrics server shutdown failed", "error", err)
			}
		}
		if telemetryShutdown != nil {
			if err := telemetryShutdown(ctx); err != nil {
				appLogger.Warn("telemetry shutdown failed", "error", err)
			}
		}
		if appLogger != nil {
			_ = appLogger.Close()
		}
	}
}

// initTelemetry wires exporters from config and flags. Telemetry failures
// are logged and tolerated; observability must never block counting.
func initTelemetry(ctx context.Context) {
	tcfg := telemetry.DefaultConfig()
	tcfg.ServiceVersion = version
	if v := config.Global.Telemetry.TraceExporter; v != "" {
		tcfg.TraceExporter = v
	}
	if v := config.Global.Telemetry.MetricExporter; v != "" {
		tcfg.MetricExporter = v
	}
	if v := config.Global.Telemetry.OTLPEndpoint; v != "" {
		tcfg.OTLPEndpoint = v
	}
	if v := config.Global.Telemetry.PrometheusPort; v != 0 {
		tcfg.PrometheusPort = v
	}
	if traceExporterFlag != "" {
		tcfg.TraceExporter = traceExporterFlag
	}
	if metricExporterFlag != "" {
		tcfg.MetricExporter = metricExporterFlag
	}

	shutdown, err := telemetry.Init(ctx, tcfg)
	if err != nil {
		appLogger.Warn("telemetry init failed", "error", err)
		return
	}
	telemetryShutdown = shutdown

	if tcfg.MetricExporter == "prometheus" {
		addr, stop, err := telemetry.StartMetricsServer(tcfg.PrometheusPort)
		if err != nil {
			appLogger.Warn("metrics server failed to start", "error", err)
			return
		}
		metricsShutdown = stop
		appLogger.Info("metrics endpoint ready", "addr", addr)
	}
}

// runVersion prints build information.
func runVersion(cmd *cobra.Command, args []string) {
	fmt.Printf("quadcount %s (commit %s, %s, %s/%s)\n",
		version, commit, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
