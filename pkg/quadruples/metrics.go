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
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Package-level tracer and meter for counting operations.
var (
	tracer = otel.Tracer("quadcount.quadruples")
	meter  = otel.Meter("quadcount.quadruples")
)

// Metrics for engine and verifier operations.
var (
	countLatency  metric.Float64Histogram
	countsTotal   metric.Int64Counter
	tableCells    metric.Int64Histogram
	verifyLatency metric.Float64Histogram
	mismatchTotal metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		countLatency, err = meter.Float64Histogram(
			"quadcount_count_duration_seconds",
			metric.WithDescription("Duration of single engine counting calls"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		countsTotal, err = meter.Int64Counter(
			"quadcount_counts_total",
			metric.WithDescription("Total number of engine counting calls"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		tableCells, err = meter.Int64Histogram(
			"quadcount_table_cells",
			metric.WithDescription("Working-table cells allocated per counting call"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		verifyLatency, err = meter.Float64Histogram(
			"quadcount_verify_duration_seconds",
			metric.WithDescription("Duration of full verification runs"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		mismatchTotal, err = meter.Int64Counter(
			"quadcount_verify_mismatch_total",
			metric.WithDescription("Values for which the three engines disagreed"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordCountMetrics records metrics for one engine counting call.
func recordCountMetrics(ctx context.Context, engine Engine, duration time.Duration, cells int, shortCircuit bool) {
	if err := initMetrics(); err != nil {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("engine", engine.String()),
		attribute.Bool("short_circuit", shortCircuit),
	)

	countLatency.Record(ctx, duration.Seconds(), attrs)
	countsTotal.Add(ctx, 1, attrs)

	if !shortCircuit {
		tableCells.Record(ctx, int64(cells),
			metric.WithAttributes(attribute.String("engine", engine.String())),
		)
	}
}

// recordVerifyMetrics records metrics for a verification run.
func recordVerifyMetrics(ctx context.Context, duration time.Duration, valueCount, mismatchCount int) {
	if err := initMetrics(); err != nil {
		return
	}

	verifyLatency.Record(ctx, duration.Seconds(),
		metric.WithAttributes(attribute.Int("value_count", valueCount)),
	)
	if mismatchCount > 0 {
		mismatchTotal.Add(ctx, int64(mismatchCount))
	}
}

// startCountSpan creates a span for one engine counting call.
func startCountSpan(ctx context.Context, engine Engine, targetSum, upperBound int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "quadruples."+engine.String()+".Count",
		trace.WithAttributes(
			attribute.String("engine", engine.String()),
			attribute.Int("target_sum", targetSum),
			attribute.Int("upper_bound", upperBound),
		),
	)
}

// startFormulaSpan creates a span for a closed-form counting call.
func startFormulaSpan(ctx context.Context, n int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "quadruples.formula.Count",
		trace.WithAttributes(
			attribute.String("engine", EngineFormula.String()),
			attribute.Int("n", n),
		),
	)
}

// setCountSpanResult sets the result attributes on a counting span.
func setCountSpanResult(span trace.Span, count int64, shortCircuit bool) {
	span.SetAttributes(
		attribute.Int64("count", count),
		attribute.Bool("short_circuit", shortCircuit),
	)
}

// startVerifySpan creates a span for a verification run.
func startVerifySpan(ctx context.Context, valueCount, parallelism int) (context.Context, trace.Span) {
	return tracer.Start(ctx, "quadruples.Verifier.Run",
		trace.WithAttributes(
			attribute.Int("value_count", valueCount),
			attribute.Int("parallelism", parallelism),
		),
	)
}
