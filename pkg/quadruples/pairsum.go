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

// PairSumCounter counts quadruples with an incrementally built histogram of
// two-element sums.
//
// Description:
//
//	The performance-critical engine. A histogram over pair sums answers
//	"how many pairs (c,d) with b < c < d <= M sum to t" in O(1), so the
//	outer loops only enumerate (a,b). The histogram is kept consistent
//	with the current b by registering each pair family exactly once, the
//	moment its smallest member becomes reachable.
//
//	Time:  O(M^2) for upper bound M
//	Space: O(M), a histogram of 2M+1 counters
//
// Thread Safety: Safe for concurrent use. The counter holds configuration
// only; every Count call allocates and discards its own histogram.
type PairSumCounter struct {
	config *EngineConfig
}

// NewPairSumCounter creates a pair-sum counting engine. A nil config uses
// defaults.
func NewPairSumCounter(config *EngineConfig) *PairSumCounter {
	if config == nil {
		config = DefaultEngineConfig()
	}
	return &PairSumCounter{config: config}
}

// Count returns the number of quadruples (a,b,c,d) with
// 1 <= a < b < c < d <= upperBound and a+b+c+d = targetSum.
//
// Description:
//
//	Sweeps the second element b from upperBound-2 down to 2. Before
//	querying for the current b, every pair (c,d) with c = b+1 and
//	c < d <= upperBound is registered into the histogram. Because b
//	decreases monotonically, registration fires exactly once per c (at
//	b = c-1), and the histogram cumulatively holds exactly the pairs with
//	b < c < d — the ordering constraint is enforced by construction, never
//	re-checked. For each a in 1..b-1 the count of matching (c,d) pairs is
//	histogram[targetSum-a-b], guarded to the index range [0, 2*upperBound].
//
//	Each valid quadruple is counted once: (a,b) fix the outer loops, and
//	the histogram only contains tails with c > b.
//
// Inputs:
//   - ctx: Context for tracing. Must not be nil.
//   - targetSum: Required value of a+b+c+d. Must be non-negative.
//   - upperBound: Largest usable value. Must be in [0, MaxUpperBound].
//
// Outputs:
//   - int64: The count. 0 whenever targetSum is outside [10, 4*upperBound-6];
//     that path returns before the histogram is allocated.
//   - error: ErrNegativeInput or ErrUpperBoundTooLarge on contract
//     violations. Nil otherwise.
//
// Example:
//
//	ps := NewPairSumCounter(nil)
//	n, err := ps.Count(ctx, 12, 6)  // 2: (1,2,3,6) and (1,2,4,5)
//
// Thread Safety: Safe for concurrent use.
func (c *PairSumCounter) Count(ctx context.Context, targetSum, upperBound int) (int64, error) {
	req := Request{TargetSum: targetSum, UpperBound: upperBound}
	if err := req.Validate(); err != nil {
		return 0, err
	}

	ctx, span := startCountSpan(ctx, EnginePairSum, targetSum, upperBound)
	defer span.End()

	start := time.Now()

	if !req.InBand() {
		setCountSpanResult(span, 0, true)
		span.SetStatus(codes.Ok, "target sum outside achievable band")
		recordCountMetrics(ctx, EnginePairSum, time.Since(start), 0, true)
		return 0, nil
	}

	span.AddEvent("allocating_histogram")
	maxPair := 2 * upperBound
	histogram := make([]int64, maxPair+1)

	// In-band implies upperBound >= 4, so b runs at least once.
	span.AddEvent("sweeping_pairs")
	sink := beginSweep(c.config.Progress, upperBound-3)
	defer sink.End()

	var total int64
	for b := upperBound - 2; b >= 2; b-- {
		// Register the pair family whose smallest member is b+1.
		c3 := b + 1
		for d := c3 + 1; d <= upperBound; d++ {
			histogram[c3+d]++
		}

		rest := targetSum - b
		for a := 1; a < b; a++ {
			t := rest - a
			if t >= 0 && t <= maxPair {
				total += histogram[t]
			}
		}
		sink.Advance(1)
	}

	elapsed := time.Since(start)

	setCountSpanResult(span, total, false)
	span.SetStatus(codes.Ok, "count complete")
	recordCountMetrics(ctx, EnginePairSum, elapsed, maxPair+1, false)

	slog.Debug("pair-sum count complete",
		slog.Int("target_sum", targetSum),
		slog.Int("upper_bound", upperBound),
		slog.Int64("count", total),
		slog.Duration("elapsed", elapsed))

	return total, nil
}
