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
	"fmt"
	"log/slog"
	"math/big"
	"time"

	"go.opentelemetry.io/otel/codes"
)

// FormulaCounter counts quadruples whose sum is divisible by n using a
// closed-form expression.
//
// Description:
//
//	For the universe 1..n, the number of 4-subsets whose sum is divisible
//	by n follows from the symmetry of subset sums modulo n. The zeroth
//	residue class contributes base = C(n,4)*4/n, and a case split on
//	n mod 4 corrects for the fixed points of the symmetry:
//
//	    n mod 4 in {1,3}:  base/4
//	    n mod 4 == 2:      (2*base + n - 2)/8
//	    n mod 4 == 0:      (2*base + n - 6)/8
//
//	Every division is exact; the divisibility is a property of the
//	combinatorial structure, not a runtime coincidence, and the test
//	suite pins it against the DP engine across all residues.
//
//	Time:  O(1) big-integer operations
//	Space: O(1)
//
// Thread Safety: Safe for concurrent use (no state).
type FormulaCounter struct{}

// NewFormulaCounter creates a closed-form counting engine. The engine has
// no configuration: the computation is O(1) with no sweep to observe.
func NewFormulaCounter() *FormulaCounter {
	return &FormulaCounter{}
}

// Count returns the number of quadruples (a,b,c,d) with
// 1 <= a < b < c < d <= n whose sum is divisible by n.
//
// Description:
//
//	Computes the closed form with arbitrary-precision intermediates, so
//	C(n,4)*4 can never wrap silently. Returns 0 for 0 <= n < 5: below
//	n=4 no quadruple exists, and at n=4 the only quadruple (1,2,3,4)
//	sums to 10, which 4 does not divide, so the short-circuit loses
//	nothing.
//
// Inputs:
//   - ctx: Context for tracing. Must not be nil.
//   - n: Universe size and divisor. Must be non-negative.
//
// Outputs:
//   - int64: The count. 0 for n < 5.
//   - error: ErrNegativeInput for n < 0; ErrCountOverflow when the exact
//     count does not fit an int64. Nil otherwise.
//
// Example:
//
//	f := NewFormulaCounter()
//	n, err := f.Count(ctx, 5)  // 1: (1,2,3,4), sum 10, divisible by 5
//
// Thread Safety: Safe for concurrent use.
func (c *FormulaCounter) Count(ctx context.Context, n int) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("%w: n=%d", ErrNegativeInput, n)
	}

	ctx, span := startFormulaSpan(ctx, n)
	defer span.End()

	start := time.Now()

	if n < 5 {
		setCountSpanResult(span, 0, true)
		span.SetStatus(codes.Ok, "universe below minimum size")
		recordCountMetrics(ctx, EngineFormula, time.Since(start), 0, true)
		return 0, nil
	}

	// base = C(n,4) * 4 / n, the zeroth-residue contribution.
	base := new(big.Int).Binomial(int64(n), 4)
	base.Mul(base, big.NewInt(4))
	base.Quo(base, big.NewInt(int64(n)))

	result := new(big.Int)
	switch n % 4 {
	case 1, 3:
		result.Quo(base, big.NewInt(4))
	case 2:
		result.Lsh(base, 1)
		result.Add(result, big.NewInt(int64(n-2)))
		result.Quo(result, big.NewInt(8))
	case 0:
		result.Lsh(base, 1)
		result.Add(result, big.NewInt(int64(n-6)))
		result.Quo(result, big.NewInt(8))
	}

	if !result.IsInt64() {
		span.SetStatus(codes.Error, "count overflow")
		return 0, fmt.Errorf("%w: n=%d", ErrCountOverflow, n)
	}

	count := result.Int64()
	elapsed := time.Since(start)

	setCountSpanResult(span, count, false)
	span.SetStatus(codes.Ok, "count complete")
	recordCountMetrics(ctx, EngineFormula, elapsed, 0, false)

	slog.Debug("formula count complete",
		slog.Int("n", n),
		slog.Int64("count", count),
		slog.Duration("elapsed", elapsed))

	return count, nil
}
