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
	"encoding/json"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/spf13/cobra"

	"github.com/AleutianAI/quadcount/cmd/quadcount/config"
	"github.com/AleutianAI/quadcount/cmd/quadcount/internal/util"
	"github.com/AleutianAI/quadcount/pkg/quadruples"
	"github.com/AleutianAI/quadcount/pkg/ux"
	"github.com/AleutianAI/quadcount/pkg/validation"
)

// Prometheus metrics for CLI-driven runs. These land on the default
// registry next to the OTel instruments when the prometheus exporter
// is enabled.
var (
	verifyRunsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadcount_runs_total",
		Help: "Verification runs started by the CLI",
	})
	verifyMismatchTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quadcount_mismatch_total",
		Help: "Values for which the engines disagreed",
	})
)

// runVerify executes the full three-engine verification over the value
// list and renders the report. Exits 1 when any value's engines disagree.
func runVerify(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	if jsonFlag {
		// Keep stdout pure JSON; anything else goes machine-style to
		// stderr.
		ux.SetMode(ux.ModeMachine)
	}

	values, err := resolveValues()
	if err != nil {
		ux.Error(err.Error())
		exitCode = 1
		return
	}

	parallelism := parallelFlag
	if parallelism == 0 {
		parallelism = config.Global.Verify.Parallelism
	}

	verifyRunsTotal.Inc()

	var report *quadruples.Report
	switch {
	case jsonFlag || noProgressFlag || !ux.ShouldShowProgress():
		report, err = runVerifyDirect(ctx, values, parallelism, nil)
	case !plainFlag && ux.IsInteractive():
		report, err = runVerifyTUI(ctx, values, parallelism)
	default:
		report, err = runVerifyDirect(ctx, values, parallelism, util.RunBarFactory(os.Stderr))
	}
	if err != nil {
		ux.Error(fmt.Sprintf("verification failed: %v", err))
		exitCode = 1
		return
	}

	if jsonFlag {
		data, err := json.MarshalIndent(report, "", "  ")
		if err != nil {
			ux.Error(fmt.Sprintf("encoding report: %v", err))
			exitCode = 1
			return
		}
		fmt.Println(string(data))
		if !report.AllMatch() {
			verifyMismatchTotal.Add(float64(len(report.Mismatches)))
			exitCode = 1
		}
		return
	}

	fmt.Println(ux.RenderVerifyTable(report.Results))
	if report.AllMatch() {
		ux.Success("all engines agree")
	} else {
		verifyMismatchTotal.Add(float64(len(report.Mismatches)))
		fmt.Println(ux.RenderMismatchPanel(report))
		exitCode = 1
	}
	fmt.Println(ux.RenderRunSummary(report))
}

// runVerifyDirect runs the verifier without the full-screen display.
func runVerifyDirect(ctx context.Context, values []int, parallelism int, progress quadruples.SinkFactory) (*quadruples.Report, error) {
	verifier, err := quadruples.NewVerifier(&quadruples.VerifierConfig{
		Parallelism: parallelism,
		Progress:    progress,
	})
	if err != nil {
		return nil, err
	}
	return verifier.Run(ctx, values)
}

// resolveValues picks the value list: flag, then config file, then the
// built-in defaults.
func resolveValues() ([]int, error) {
	if valuesFlag != "" {
		values, err := validation.ParseValues(valuesFlag)
		if err != nil {
			return nil, err
		}
		if err := validation.ValidateValues(values, quadruples.MaxUpperBound); err != nil {
			return nil, err
		}
		return values, nil
	}
	if len(config.Global.Verify.Values) > 0 {
		return config.Global.Verify.Values, nil
	}
	return config.DefaultConfig().Verify.Values, nil
}
