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
	"fmt"
)

// MinTargetSum is the smallest achievable quadruple sum, 1+2+3+4.
const MinTargetSum = 10

// MaxUpperBound caps the universe size. Below this cap every count fits an
// int64: the counts over all target sums total C(M,4), and C(2^16,4) is
// under 2^60. It also bounds the DP working table to ~10 MiB.
const MaxUpperBound = 1 << 16

// Engine identifies one of the three counting engines.
type Engine int

const (
	EngineDP      Engine = iota // 0/1-subset-sum dynamic program
	EnginePairSum               // pair-sum histogram sweep
	EngineFormula               // closed-form binomial/residue count
)

// String returns the metric-friendly name of the engine.
func (e Engine) String() string {
	switch e {
	case EngineDP:
		return "dp"
	case EnginePairSum:
		return "pair_sum"
	case EngineFormula:
		return "formula"
	default:
		return "unknown"
	}
}

// Request is one counting query: how many quadruples (a,b,c,d) with
// 1 <= a < b < c < d <= UpperBound sum to TargetSum.
type Request struct {
	TargetSum  int // required value of a+b+c+d
	UpperBound int // maximum value any element may take
}

// MaxSum returns the largest achievable sum for the request's universe,
// (M-3)+(M-2)+(M-1)+M = 4M-6.
func (r Request) MaxSum() int {
	return 4*r.UpperBound - 6
}

// InBand reports whether a nonzero count is possible for the request.
// Outside the band [MinTargetSum, 4M-6] every engine returns 0 without
// allocating working state. An UpperBound below 4 makes the band empty.
func (r Request) InBand() bool {
	return r.TargetSum >= MinTargetSum && r.TargetSum <= r.MaxSum()
}

// Validate checks the request against the caller contract.
//
// Negative values are rejected with ErrNegativeInput: a negative bound is
// always a caller bug, never a query. Zero and out-of-band positive values
// pass validation and count as zero through InBand.
func (r Request) Validate() error {
	if r.TargetSum < 0 || r.UpperBound < 0 {
		return fmt.Errorf("%w: target_sum=%d upper_bound=%d",
			ErrNegativeInput, r.TargetSum, r.UpperBound)
	}
	if r.UpperBound > MaxUpperBound {
		return fmt.Errorf("%w: %d > %d",
			ErrUpperBoundTooLarge, r.UpperBound, MaxUpperBound)
	}
	return nil
}

// EngineConfig configures a counting engine.
type EngineConfig struct {
	// Progress receives one notification per outer-loop iteration of the
	// engine's sweep. Nil disables progress reporting. A sink must not
	// influence the returned count.
	Progress ProgressSink
}

// DefaultEngineConfig returns the default configuration: no progress sink.
func DefaultEngineConfig() *EngineConfig {
	return &EngineConfig{}
}
