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
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

// maxMultiplier is the largest multiple of n reachable as a quadruple sum:
// for n >= 5 the band [10, 4n-6] contains exactly n, 2n, and 3n.
const maxMultiplier = 3

// GeneralCounter is the contract of the two general engines: count
// quadruples within 1..upperBound summing to targetSum.
type GeneralCounter interface {
	Count(ctx context.Context, targetSum, upperBound int) (int64, error)
}

// DivisibleCounter is the contract of the closed-form engine: count
// quadruples within 1..n whose sum is divisible by n.
type DivisibleCounter interface {
	Count(ctx context.Context, n int) (int64, error)
}

var (
	_ GeneralCounter   = (*DPCounter)(nil)
	_ GeneralCounter   = (*PairSumCounter)(nil)
	_ DivisibleCounter = (*FormulaCounter)(nil)
)

// EngineResult is one timed engine outcome.
type EngineResult struct {
	Count   int64         `json:"count"`      // computed count
	Elapsed time.Duration `json:"elapsed_ns"` // wall-clock time for the call
}

// VerifyResult is the per-value row of a verification run.
type VerifyResult struct {
	N       int          `json:"n"`        // verified value
	Formula EngineResult `json:"formula"`  // closed-form count of sums divisible by N
	DP      EngineResult `json:"dp"`       // DP counts summed over target sums N, 2N, 3N
	PairSum EngineResult `json:"pair_sum"` // pair-sum counts over the same target sums
	Match   bool         `json:"match"`    // all three counts equal
}

// Report is the outcome of a verification run. Engines never see or mutate
// it; only the verifier writes it.
type Report struct {
	RunID      string         `json:"run_id"`               // unique id for log/trace correlation
	Results    []VerifyResult `json:"results"`              // one row per input value, input order
	Mismatches []int          `json:"mismatches,omitempty"` // values whose engines disagreed, input order
	Elapsed    time.Duration  `json:"elapsed_ns"`           // wall-clock time for the whole run
}

// AllMatch reports whether every verified value had all three engines in
// agreement.
func (r *Report) AllMatch() bool {
	return len(r.Mismatches) == 0
}

// VerifierConfig configures a verification run.
type VerifierConfig struct {
	// Parallelism is the maximum number of values verified concurrently.
	// 0 and 1 both mean sequential. The engines are pure, so fan-out is
	// safe; it only reorders timing, never results.
	Parallelism int

	// Progress builds per-invocation progress sinks. Nil disables
	// progress. With Parallelism > 1 the returned sinks must be safe for
	// concurrent use.
	Progress SinkFactory
}

// DefaultVerifierConfig returns the default configuration: sequential, no
// progress.
func DefaultVerifierConfig() *VerifierConfig {
	return &VerifierConfig{Parallelism: 1}
}

// Verifier drives the three engines over a list of values and flags any
// value where the results disagree.
//
// Description:
//
//	For each value n the verifier computes, in fixed order:
//
//	    formula:  FormulaCounter(n)
//	    dp:       sum of DPCounter(n*k, n)       for k = 1..3
//	    pair_sum: sum of PairSumCounter(n*k, n)  for k = 1..3
//
//	Quadruple sums divisible by n can only be n, 2n, or 3n, so the two
//	general engines restricted to those targets must reproduce the
//	closed form exactly. The three-way equality is the package's
//	principal correctness oracle: the engines share no code on their
//	counting paths, so agreement on every tested value is strong
//	evidence each one is right.
//
// Thread Safety: Safe for concurrent use; runs share no state.
type Verifier struct {
	config *VerifierConfig

	// Engine constructors, swappable in tests to force disagreement.
	newDP      func(*EngineConfig) GeneralCounter
	newPairSum func(*EngineConfig) GeneralCounter
	formula    DivisibleCounter
}

// NewVerifier creates a verifier. A nil config uses defaults.
func NewVerifier(config *VerifierConfig) (*Verifier, error) {
	if config == nil {
		config = DefaultVerifierConfig()
	}
	if config.Parallelism < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidParallelism, config.Parallelism)
	}
	return &Verifier{
		config:     config,
		newDP:      func(cfg *EngineConfig) GeneralCounter { return NewDPCounter(cfg) },
		newPairSum: func(cfg *EngineConfig) GeneralCounter { return NewPairSumCounter(cfg) },
		formula:    NewFormulaCounter(),
	}, nil
}

// Run verifies every value in the list and returns the collected report.
//
// Description:
//
//	Sequential by default; with Parallelism > 1 the values fan out over
//	an errgroup with that concurrency limit. Each value's row lands in
//	its input slot, so the report is deterministic either way. The run
//	stops early if the context is cancelled between values or any engine
//	call fails; a disagreement is NOT an error — it is recorded in
//	Report.Mismatches and left to the caller to act on.
//
// Inputs:
//   - ctx: Context for cancellation and tracing. Must not be nil.
//   - values: Values to verify, each non-negative. Must not be empty.
//
// Outputs:
//   - *Report: Per-value results, mismatch list, run id, total elapsed.
//   - error: ErrNoValues for an empty list, engine contract violations,
//     or a wrapped context error on cancellation.
//
// Example:
//
//	v, _ := NewVerifier(nil)
//	report, err := v.Run(ctx, []int{5, 101, 1024})
//	if err != nil {
//	    return err
//	}
//	if !report.AllMatch() {
//	    log.Fatalf("engines disagree on %v", report.Mismatches)
//	}
func (v *Verifier) Run(ctx context.Context, values []int) (*Report, error) {
	if len(values) == 0 {
		return nil, ErrNoValues
	}

	parallelism := v.config.Parallelism
	if parallelism < 1 {
		parallelism = 1
	}

	ctx, span := startVerifySpan(ctx, len(values), parallelism)
	defer span.End()

	start := time.Now()
	runID := uuid.NewString()

	slog.Info("verification run starting",
		slog.String("run_id", runID),
		slog.Int("value_count", len(values)),
		slog.Int("parallelism", parallelism))

	runSink := v.newSink("verify", SlotRun)
	runSink.Begin(len(values))
	defer runSink.End()

	results := make([]VerifyResult, len(values))

	var err error
	if parallelism == 1 {
		err = v.runSequential(ctx, values, results, runSink)
	} else {
		err = v.runParallel(ctx, values, results, runSink, parallelism)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "verification run failed")
		return nil, err
	}

	report := &Report{
		RunID:   runID,
		Results: results,
		Elapsed: time.Since(start),
	}
	for _, r := range results {
		if !r.Match {
			report.Mismatches = append(report.Mismatches, r.N)
		}
	}

	recordVerifyMetrics(ctx, report.Elapsed, len(values), len(report.Mismatches))
	span.SetAttributes(attribute.Int("mismatch_count", len(report.Mismatches)))

	if report.AllMatch() {
		span.SetStatus(codes.Ok, "all engines agree")
		slog.Info("verification run complete",
			slog.String("run_id", runID),
			slog.Int("value_count", len(values)),
			slog.Duration("elapsed", report.Elapsed))
	} else {
		// Still Ok at the span level: the run itself succeeded, the
		// finding lives in the report and the metric.
		span.AddEvent("mismatch_detected", trace.WithAttributes(
			attribute.IntSlice("values", report.Mismatches),
		))
		span.SetStatus(codes.Ok, "mismatches detected")
		slog.Warn("verification run found mismatches",
			slog.String("run_id", runID),
			slog.Any("values", report.Mismatches),
			slog.Duration("elapsed", report.Elapsed))
	}

	return report, nil
}

// runSequential verifies values one at a time, checking for cancellation
// between values. Engine sweeps themselves always run to completion.
func (v *Verifier) runSequential(ctx context.Context, values []int, results []VerifyResult, runSink ProgressSink) error {
	for i, n := range values {
		select {
		case <-ctx.Done():
			return fmt.Errorf("verification cancelled: %w", ctx.Err())
		default:
		}

		row, err := v.verifyOne(ctx, n, SlotEngine)
		if err != nil {
			return err
		}
		results[i] = row
		runSink.Advance(1)
	}
	return nil
}

// runParallel fans values out over an errgroup. Row i keeps slot
// SlotEngine+i%limit so concurrent sweeps render on distinct display rows.
func (v *Verifier) runParallel(ctx context.Context, values []int, results []VerifyResult, runSink ProgressSink, limit int) error {
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, n := range values {
		g.Go(func() error {
			row, err := v.verifyOne(gCtx, n, SlotEngine+i%limit)
			if err != nil {
				return err
			}
			results[i] = row
			runSink.Advance(1)
			return nil
		})
	}
	return g.Wait()
}

// verifyOne runs the three engines for one value in fixed order.
func (v *Verifier) verifyOne(ctx context.Context, n int, slot int) (VerifyResult, error) {
	row := VerifyResult{N: n}

	fCount, fElapsed, err := Timed(func() (int64, error) {
		return v.formula.Count(ctx, n)
	})
	if err != nil {
		return row, fmt.Errorf("formula n=%d: %w", n, err)
	}
	row.Formula = EngineResult{Count: fCount, Elapsed: fElapsed}

	dpCount, dpElapsed, err := Timed(func() (int64, error) {
		return v.sumOverMultipliers(ctx, EngineDP, n, slot)
	})
	if err != nil {
		return row, fmt.Errorf("dp n=%d: %w", n, err)
	}
	row.DP = EngineResult{Count: dpCount, Elapsed: dpElapsed}

	psCount, psElapsed, err := Timed(func() (int64, error) {
		return v.sumOverMultipliers(ctx, EnginePairSum, n, slot)
	})
	if err != nil {
		return row, fmt.Errorf("pair_sum n=%d: %w", n, err)
	}
	row.PairSum = EngineResult{Count: psCount, Elapsed: psElapsed}

	row.Match = fCount == dpCount && dpCount == psCount
	if !row.Match {
		slog.Warn("engine mismatch",
			slog.Int("n", n),
			slog.Int64("formula", fCount),
			slog.Int64("dp", dpCount),
			slog.Int64("pair_sum", psCount))
	}
	return row, nil
}

// sumOverMultipliers sums a general engine over target sums n*k, k=1..3,
// with upper bound n. One progress sink per counting call, all sharing the
// engine's label and display slot.
func (v *Verifier) sumOverMultipliers(ctx context.Context, engine Engine, n int, slot int) (int64, error) {
	newCounter := v.newDP
	if engine == EnginePairSum {
		newCounter = v.newPairSum
	}
	label := fmt.Sprintf("%s n=%d", engine, n)

	var total int64
	for k := 1; k <= maxMultiplier; k++ {
		counter := newCounter(&EngineConfig{Progress: v.newSink(label, slot)})
		count, err := counter.Count(ctx, n*k, n)
		if err != nil {
			return 0, fmt.Errorf("k=%d: %w", k, err)
		}
		total += count
	}
	return total, nil
}

// newSink builds a sink from the configured factory, normalizing nil.
func (v *Verifier) newSink(label string, slot int) ProgressSink {
	if v.config.Progress == nil {
		return NopSink{}
	}
	if sink := v.config.Progress(label, slot); sink != nil {
		return sink
	}
	return NopSink{}
}
