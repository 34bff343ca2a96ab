// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package quadruples counts integer quadruples (a,b,c,d) with
// 1 <= a < b < c < d <= M and a+b+c+d = N.
//
// Three independently derived engines solve the problem, and their agreement
// is the package's correctness oracle:
//
//   - DPCounter: 0/1-subset-sum dynamic program, O(N*M) time, O(N) space per
//     selection slot.
//   - PairSumCounter: incremental pair-sum histogram, O(M^2) time, O(M) space.
//   - FormulaCounter: closed-form binomial/residue count of quadruples whose
//     sum is divisible by n, O(1) arithmetic.
//
// The Verifier drives all three over a list of n values and flags any n
// where the results disagree. Because quadruple sums divisible by n can only
// be n, 2n, or 3n (for n >= 5), FormulaCounter(n) must equal the sum of the
// general engines over target sums n, 2n, 3n with upper bound n.
//
// # Purity
//
// Every engine call allocates its own working state and releases it on
// return. Engines hold configuration only, never results, so a single
// counter value is safe for concurrent use from multiple goroutines.
//
// # Value Range
//
// Counts are returned as int64. A nonzero count requires
// 10 <= N <= 4M-6 (minimum sum 1+2+3+4, maximum sum the top four values);
// anything outside that band returns 0 without allocating. FormulaCounter
// computes with arbitrary-precision intermediates and returns
// ErrCountOverflow rather than wrapping silently.
package quadruples

import "errors"

// Sentinel errors for counting operations.
var (
	// ErrNegativeInput is returned when a target sum, upper bound, or
	// divisor is negative. Zero and out-of-band positive inputs are
	// defined zero-count cases, not errors; a negative value is always a
	// caller bug and surfaces immediately.
	ErrNegativeInput = errors.New("inputs must be non-negative")

	// ErrCountOverflow is returned when a closed-form count does not fit
	// in an int64.
	ErrCountOverflow = errors.New("count exceeds int64 range")

	// ErrUpperBoundTooLarge is returned when an upper bound exceeds
	// MaxUpperBound.
	ErrUpperBoundTooLarge = errors.New("upper bound exceeds maximum")

	// ErrNoValues is returned when a verification run is requested over
	// an empty value list.
	ErrNoValues = errors.New("value list must not be empty")

	// ErrInvalidParallelism is returned when a verifier is configured
	// with a negative parallelism limit.
	ErrInvalidParallelism = errors.New("parallelism must not be negative")

	// ErrNilEngine is returned when a verifier is constructed with a nil
	// engine after config resolution. Only possible when a caller builds
	// a VerifierConfig by hand with an explicit nil.
	ErrNilEngine = errors.New("engine must not be nil")
)
