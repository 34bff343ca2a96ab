// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package quadruples

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/codes"
)

// tableRows is the number of selection-count rows, 0 through 4 values chosen.
const tableRows = 5

// DPCounter counts quadruples with a 0/1-subset-sum dynamic program.
//
// Description:
//
//	Classic 0/1 knapsack over an incrementally revealed universe 1..M.
//	table[k][s] holds the number of ways to choose k distinct values from
//	the candidates processed so far with sum s. Revealing candidates in
//	increasing order and updating rows in descending order yields strictly
//	increasing quadruples with each value used at most once.
//
//	Time:  O(N*M) for target sum N, upper bound M
//	Space: O(N) per selection row, five rows
//
// Thread Safety: Safe for concurrent use. The counter holds configuration
// only; every Count call allocates and discards its own table.
type DPCounter struct {
	config *EngineConfig
}

// NewDPCounter creates a DP counting engine. A nil config uses defaults.
func NewDPCounter(config *EngineConfig) *DPCounter {
	if config == nil {
		config = DefaultEngineConfig()
	}
	return &DPCounter{config: config}
}

// Count returns the number of quadruples (a,b,c,d) with
// 1 <= a < b < c < d <= upperBound and a+b+c+d = targetSum.
//
// Description:
//
//	Initializes table[0][0] = 1 and reveals each candidate v from 1 to
//	upperBound exactly once. For each v the selection rows are updated
//	from 4 down to 1 and the sums from targetSum down to v:
//
//	    table[k][s] += table[k-1][s-v]
//
//	The descending double loop is load-bearing: ascending order would let
//	a single v feed multiple selection slots within the same pass, which
//	counts v more than once per quadruple. The answer is
//	table[4][targetSum].
//
// Inputs:
//   - ctx: Context for tracing. Must not be nil.
//   - targetSum: Required value of a+b+c+d. Must be non-negative.
//   - upperBound: Largest usable value. Must be in [0, MaxUpperBound].
//
// Outputs:
//   - int64: The count. 0 whenever targetSum is outside [10, 4*upperBound-6];
//     that path returns before any table is allocated.
//   - error: ErrNegativeInput or ErrUpperBoundTooLarge on contract
//     violations. Nil otherwise.
//
// Example:
//
//	dp := NewDPCounter(nil)
//	n, err := dp.Count(ctx, 10, 4)  // 1: only (1,2,3,4)
//
// Thread Safety: Safe for concurrent use.
func (c *DPCounter) Count(ctx context.Context, targetSum, upperBound int) (int64, error) {
	req := Request{TargetSum: targetSum, UpperBound: upperBound}
	if err := req.Validate(); err != nil {
		return 0, err
	}

	ctx, span := startCountSpan(ctx, EngineDP, targetSum, upperBound)
	defer span.End()

	start := time.Now()

	if !req.InBand() {
		setCountSpanResult(span, 0, true)
		span.SetStatus(codes.Ok, "target sum outside achievable band")
		recordCountMetrics(ctx, EngineDP, time.Since(start), 0, true)
		return 0, nil
	}

	// Single allocation backing all five rows.
	span.AddEvent("allocating_table")
	width := targetSum + 1
	cells := make([]int64, tableRows*width)
	var table [tableRows][]int64
	for k := range table {
		table[k] = cells[k*width : (k+1)*width]
	}
	table[0][0] = 1

	span.AddEvent("sweeping_candidates")
	sink := beginSweep(c.config.Progress, upperBound)
	defer sink.End()

	for v := 1; v <= upperBound; v++ {
		// Descending so v contributes to at most one slot per pass.
		for k := 4; k >= 1; k-- {
			row, prev := table[k], table[k-1]
			for s := targetSum; s >= v; s-- {
				row[s] += prev[s-v]
			}
		}
		sink.Advance(1)
	}

	count := table[4][targetSum]
	elapsed := time.Since(start)

	setCountSpanResult(span, count, false)
	span.SetStatus(codes.Ok, "count complete")
	recordCountMetrics(ctx, EngineDP, elapsed, tableRows*width, false)

	slog.Debug("dp count complete",
		slog.Int("target_sum", targetSum),
		slog.Int("upper_bound", upperBound),
		slog.Int64("count", count),
		slog.Duration("elapsed", elapsed))

	return count, nil
}
