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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// skewedCounter wraps a real engine and shifts every in-band count, forcing
// a detectable disagreement.
type skewedCounter struct {
	inner GeneralCounter
	skew  int64
}

func (s *skewedCounter) Count(ctx context.Context, targetSum, upperBound int) (int64, error) {
	count, err := s.inner.Count(ctx, targetSum, upperBound)
	if err != nil || count == 0 {
		return count, err
	}
	return count + s.skew, nil
}

// concurrentSink is a recordingSink safe for parallel runs.
type concurrentSink struct {
	mu sync.Mutex
	recordingSink
}

func (s *concurrentSink) Begin(total int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordingSink.Begin(total)
}

func (s *concurrentSink) Advance(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordingSink.Advance(n)
}

func (s *concurrentSink) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.recordingSink.End()
}

// Test defaults
func TestNewVerifier_NilConfig(t *testing.T) {
	v, err := NewVerifier(nil)
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.Equal(t, 1, v.config.Parallelism)
}

// Test config validation
func TestNewVerifier_InvalidParallelism(t *testing.T) {
	_, err := NewVerifier(&VerifierConfig{Parallelism: -2})
	assert.ErrorIs(t, err, ErrInvalidParallelism)
}

// Test the three-way agreement law over a mixed value list
func TestVerifier_Run_AllAgree(t *testing.T) {
	v, err := NewVerifier(nil)
	require.NoError(t, err)

	values := []int{1, 4, 5, 6, 7, 8, 9, 10, 101}
	report, err := v.Run(context.Background(), values)
	require.NoError(t, err)
	require.NotNil(t, report)

	assert.True(t, report.AllMatch())
	assert.Empty(t, report.Mismatches)
	assert.NotEmpty(t, report.RunID)
	assert.Positive(t, report.Elapsed)
	require.Len(t, report.Results, len(values))

	for i, row := range report.Results {
		assert.Equal(t, values[i], row.N, "row %d keeps input order", i)
		assert.True(t, row.Match, "n=%d", row.N)
		assert.Equal(t, row.Formula.Count, row.DP.Count, "n=%d", row.N)
		assert.Equal(t, row.DP.Count, row.PairSum.Count, "n=%d", row.N)
	}
}

// Test that a skewed engine is caught and reported in input order
func TestVerifier_Run_DetectsMismatch(t *testing.T) {
	v, err := NewVerifier(nil)
	require.NoError(t, err)

	v.newDP = func(cfg *EngineConfig) GeneralCounter {
		return &skewedCounter{inner: NewDPCounter(cfg), skew: 1}
	}

	report, err := v.Run(context.Background(), []int{5, 9, 12})
	require.NoError(t, err, "a disagreement is a finding, not an error")

	assert.False(t, report.AllMatch())
	assert.Equal(t, []int{5, 9, 12}, report.Mismatches)
	for _, row := range report.Results {
		assert.False(t, row.Match, "n=%d", row.N)
	}
}

// Test input validation
func TestVerifier_Run_EmptyValues(t *testing.T) {
	v, err := NewVerifier(nil)
	require.NoError(t, err)

	_, err = v.Run(context.Background(), nil)
	assert.ErrorIs(t, err, ErrNoValues)
}

// Test that engine contract violations propagate
func TestVerifier_Run_NegativeValue(t *testing.T) {
	v, err := NewVerifier(nil)
	require.NoError(t, err)

	_, err = v.Run(context.Background(), []int{5, -3})
	assert.ErrorIs(t, err, ErrNegativeInput)
}

// Test cancellation between values
func TestVerifier_Run_Cancelled(t *testing.T) {
	v, err := NewVerifier(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = v.Run(ctx, []int{5, 6, 7})
	assert.ErrorIs(t, err, context.Canceled)
}

// Test that a parallel run produces exactly the sequential report rows
func TestVerifier_Run_ParallelMatchesSequential(t *testing.T) {
	values := []int{5, 6, 7, 8, 9, 10, 11, 12, 48, 96}

	seq, err := NewVerifier(nil)
	require.NoError(t, err)
	seqReport, err := seq.Run(context.Background(), values)
	require.NoError(t, err)

	par, err := NewVerifier(&VerifierConfig{Parallelism: 4})
	require.NoError(t, err)
	parReport, err := par.Run(context.Background(), values)
	require.NoError(t, err)

	require.Len(t, parReport.Results, len(seqReport.Results))
	for i := range seqReport.Results {
		assert.Equal(t, seqReport.Results[i].N, parReport.Results[i].N, "row %d", i)
		assert.Equal(t, seqReport.Results[i].Formula.Count, parReport.Results[i].Formula.Count, "row %d", i)
		assert.Equal(t, seqReport.Results[i].DP.Count, parReport.Results[i].DP.Count, "row %d", i)
		assert.Equal(t, seqReport.Results[i].PairSum.Count, parReport.Results[i].PairSum.Count, "row %d", i)
	}
	assert.True(t, parReport.AllMatch())
}

// Test progress plumbing: run-level sink plus one sink per counting call
func TestVerifier_Run_ProgressSinks(t *testing.T) {
	var mu sync.Mutex
	sinks := make(map[string][]*concurrentSink)
	var runSink *concurrentSink

	factory := func(label string, slot int) ProgressSink {
		mu.Lock()
		defer mu.Unlock()
		s := &concurrentSink{}
		if slot == SlotRun {
			runSink = s
			return s
		}
		sinks[label] = append(sinks[label], s)
		return s
	}

	v, err := NewVerifier(&VerifierConfig{Progress: factory})
	require.NoError(t, err)

	values := []int{5, 8}
	report, err := v.Run(context.Background(), values)
	require.NoError(t, err)
	assert.True(t, report.AllMatch())

	require.NotNil(t, runSink)
	assert.Equal(t, len(values), runSink.total)
	assert.Equal(t, len(values), runSink.advances)
	assert.Equal(t, 1, runSink.ends)

	// One label per engine and value, one sink per sweep (k=1..3). Only
	// in-band sweeps run a Begin/End lifecycle: for n=5 that is k=2 alone
	// (targets 5 and 15 fall outside [10,14]), for n=8 it is k=2 and k=3.
	assert.Len(t, sinks, len(values)*2)
	lifecycles := func(group []*concurrentSink) int {
		total := 0
		for _, sink := range group {
			total += sink.ends
		}
		return total
	}
	for _, label := range []string{"dp n=5", "pair_sum n=5"} {
		require.Contains(t, sinks, label)
		assert.Len(t, sinks[label], maxMultiplier, "label %q", label)
		assert.Equal(t, 1, lifecycles(sinks[label]), "label %q", label)
	}
	for _, label := range []string{"dp n=8", "pair_sum n=8"} {
		require.Contains(t, sinks, label)
		assert.Len(t, sinks[label], maxMultiplier, "label %q", label)
		assert.Equal(t, 2, lifecycles(sinks[label]), "label %q", label)
	}
}

// Test the full-size value from the default run list
func TestVerifier_Run_LargeValue(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping 1024-value verification in short mode")
	}

	v, err := NewVerifier(nil)
	require.NoError(t, err)

	report, err := v.Run(context.Background(), []int{1024})
	require.NoError(t, err)
	require.Len(t, report.Results, 1)

	row := report.Results[0]
	assert.True(t, row.Match)
	assert.Positive(t, row.Formula.Count)
	assert.Equal(t, row.Formula.Count, row.DP.Count)
	assert.Equal(t, row.Formula.Count, row.PairSum.Count)
}
