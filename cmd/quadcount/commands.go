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
	"github.com/spf13/cobra"
)

// --- Global Command Variables ---
var (
	outputMode         string // UX output mode (rich/minimal/machine)
	logLevelFlag       string // CLI override for logging.level
	traceExporterFlag  string // CLI override for telemetry.trace_exporter
	metricExporterFlag string // CLI override for telemetry.metric_exporter

	valuesFlag     string // comma-separated value list override
	parallelFlag   int
	noProgressFlag bool
	plainFlag      bool
	jsonFlag       bool

	countTarget int
	countUpper  int
	countEngine string

	formulaN int

	rootCmd = &cobra.Command{
		Use:   "quadcount",
		Short: "Count quadruples (a<b<c<d) summing to a target, three ways",
		Long: `quadcount counts integer quadruples 1 <= a < b < c < d <= M with
a+b+c+d = N using three independently derived engines (dynamic
program, pair-sum histogram, closed formula) and cross-checks
their agreement.`,
	}

	// --- Verification ---
	verifyCmd = &cobra.Command{
		Use:   "verify",
		Short: "Run all three engines over a value list and flag disagreements",
		Long: `For each value n the closed formula counts quadruples in 1..n whose
sum is divisible by n, and the two general engines reproduce that
count by summing over target sums n, 2n, 3n. Any disagreement is a
bug in at least one engine; the command exits 1 when one is found.`,
		Run: runVerify, // Defined in cmd_verify.go
	}

	// --- Single Queries ---
	countCmd = &cobra.Command{
		Use:   "count",
		Short: "Count quadruples for one target sum and upper bound",
		Run:   runCount, // Defined in cmd_count.go
	}

	formulaCmd = &cobra.Command{
		Use:   "formula",
		Short: "Closed-form count of quadruples in 1..n with sum divisible by n",
		Run:   runFormula, // Defined in cmd_formula.go
	}

	// --- Version ---
	versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version and build information",
		Run:   runVersion, // Defined in main.go
	}
)

// init runs when the Go program starts
func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&outputMode, "output", "",
		"Output style: rich (default on a terminal), minimal, or machine (scripting)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "",
		"Log level: debug, info, warn, or error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&traceExporterFlag, "trace-exporter", "",
		"Trace exporter: none, stdout, or otlp (overrides config)")
	rootCmd.PersistentFlags().StringVar(&metricExporterFlag, "metric-exporter", "",
		"Metric exporter: none, stdout, or prometheus (overrides config)")

	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&valuesFlag, "values", "",
		"Comma-separated values to verify (default: config, then built-in list)")
	verifyCmd.Flags().IntVar(&parallelFlag, "parallel", 0,
		"Verify up to N values concurrently (0: use config, 1: sequential)")
	verifyCmd.Flags().BoolVar(&noProgressFlag, "no-progress", false,
		"Disable progress rendering entirely")
	verifyCmd.Flags().BoolVar(&plainFlag, "plain", false,
		"Use the single-line progress bar instead of the full-screen display")
	verifyCmd.Flags().BoolVar(&jsonFlag, "json", false,
		"Emit the report as JSON on stdout (implies --no-progress)")

	rootCmd.AddCommand(countCmd)
	countCmd.Flags().IntVar(&countTarget, "target", 0, "Target sum N (required)")
	countCmd.Flags().IntVar(&countUpper, "upper", 0, "Upper bound M (required)")
	countCmd.Flags().StringVar(&countEngine, "engine", "both",
		"Engine to run: dp, pairsum, or both (cross-checks)")

	rootCmd.AddCommand(formulaCmd)
	formulaCmd.Flags().IntVar(&formulaN, "n", 0, "Value n (required)")

	rootCmd.AddCommand(versionCmd)
}
