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

	"github.com/spf13/cobra"

	"github.com/AleutianAI/quadcount/cmd/quadcount/internal/util"
	"github.com/AleutianAI/quadcount/pkg/quadruples"
	"github.com/AleutianAI/quadcount/pkg/ux"
)

// runCount answers one (target, upper) query with the chosen general
// engine, or with both engines cross-checked.
func runCount(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	if !cmd.Flags().Changed("target") || !cmd.Flags().Changed("upper") {
		ux.Error("count requires --target and --upper")
		exitCode = 1
		return
	}

	req := quadruples.Request{TargetSum: countTarget, UpperBound: countUpper}
	if err := req.Validate(); err != nil {
		ux.Error(err.Error())
		exitCode = 1
		return
	}
	if !req.InBand() {
		// Still a legitimate query; the engines will answer zero without
		// sweeping. Say why so the zero is not a surprise.
		ux.Muted(fmt.Sprintf("target %d is outside the achievable band [%d, %d]",
			countTarget, quadruples.MinTargetSum, req.MaxSum()))
	}

	switch countEngine {
	case "dp":
		res, err := countOnce(ctx, quadruples.EngineDP)
		if err != nil {
			ux.Error(err.Error())
			exitCode = 1
			return
		}
		renderCount(quadruples.EngineDP, res)

	case "pairsum", "pair_sum":
		res, err := countOnce(ctx, quadruples.EnginePairSum)
		if err != nil {
			ux.Error(err.Error())
			exitCode = 1
			return
		}
		renderCount(quadruples.EnginePairSum, res)

	case "both":
		dpRes, err := countOnce(ctx, quadruples.EngineDP)
		if err != nil {
			ux.Error(err.Error())
			exitCode = 1
			return
		}
		psRes, err := countOnce(ctx, quadruples.EnginePairSum)
		if err != nil {
			ux.Error(err.Error())
			exitCode = 1
			return
		}
		renderBoth(dpRes, psRes)

	default:
		ux.Error(fmt.Sprintf("unknown engine %q (want dp, pairsum, or both)", countEngine))
		exitCode = 1
	}
}

// countOnce runs one general engine over the query, with a progress bar
// when the output mode wants one.
func countOnce(ctx context.Context, engine quadruples.Engine) (quadruples.EngineResult, error) {
	cfg := quadruples.DefaultEngineConfig()
	if ux.ShouldShowProgress() {
		cfg.Progress = util.NewLineSink(util.LineSinkConfig{
			Label: fmt.Sprintf("%s N=%d M=%d", engine, countTarget, countUpper),
		})
	}

	var counter quadruples.GeneralCounter
	if engine == quadruples.EngineDP {
		counter = quadruples.NewDPCounter(cfg)
	} else {
		counter = quadruples.NewPairSumCounter(cfg)
	}

	count, elapsed, err := quadruples.Timed(func() (int64, error) {
		return counter.Count(ctx, countTarget, countUpper)
	})
	if err != nil {
		return quadruples.EngineResult{}, fmt.Errorf("%s: %w", engine, err)
	}
	return quadruples.EngineResult{Count: count, Elapsed: elapsed}, nil
}

// renderCount prints a single engine's answer.
func renderCount(engine quadruples.Engine, res quadruples.EngineResult) {
	if ux.CurrentMode() == ux.ModeMachine {
		fmt.Printf("%d\n", res.Count)
		return
	}
	ux.Box(fmt.Sprintf("%s engine", engine), fmt.Sprintf(
		"%s quadruples with a+b+c+d = %d in 1..%d\ncomputed in %s",
		ux.FormatCount(res.Count), countTarget, countUpper,
		ux.FormatDuration(res.Elapsed)))
}

// renderBoth prints the cross-checked answers and flags disagreement.
func renderBoth(dpRes, psRes quadruples.EngineResult) {
	if ux.CurrentMode() == ux.ModeMachine {
		fmt.Printf("dp\t%d\n", dpRes.Count)
		fmt.Printf("pair_sum\t%d\n", psRes.Count)
	} else {
		ux.Info(fmt.Sprintf("dp:       %s in %s",
			ux.FormatCount(dpRes.Count), ux.FormatDuration(dpRes.Elapsed)))
		ux.Info(fmt.Sprintf("pair_sum: %s in %s",
			ux.FormatCount(psRes.Count), ux.FormatDuration(psRes.Elapsed)))
	}

	if dpRes.Count == psRes.Count {
		ux.Success(fmt.Sprintf("engines agree on %s", ux.FormatCount(dpRes.Count)))
	} else {
		ux.Error(fmt.Sprintf("engine mismatch: dp=%d pair_sum=%d", dpRes.Count, psRes.Count))
		exitCode = 1
	}
}
