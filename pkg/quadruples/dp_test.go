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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingSink captures sink notifications for assertions.
type recordingSink struct {
	total    int
	begins   int
	advances int
	ends     int
}

func (s *recordingSink) Begin(total int) { s.begins++; s.total = total }
func (s *recordingSink) Advance(n int)   { s.advances += n }
func (s *recordingSink) End()            { s.ends++ }

// Test hand-verifiable counts
func TestDPCounter_ConcreteCases(t *testing.T) {
	tests := []struct {
		name       string
		targetSum  int
		upperBound int
		expected   int64
	}{
		{"minimum band edge", 10, 4, 1},
		{"single quadruple mid band", 11, 5, 1},
		{"two quadruples", 12, 6, 2},
		{"three quadruples", 14, 6, 3},
		{"maximum band edge", 34, 10, 1},
		{"minimum sum large universe", 10, 10, 1},
	}

	dp := NewDPCounter(nil)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			count, err := dp.Count(context.Background(), tt.targetSum, tt.upperBound)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, count)
		})
	}
}

// Test the zero short-circuit outside [10, 4M-6]
func TestDPCounter_ShortCircuit(t *testing.T) {
	dp := NewDPCounter(nil)

	cases := []struct {
		targetSum  int
		upperBound int
	}{
		{9, 10},    // below minimum sum
		{35, 10},   // above 4*10-6
		{10, 3},    // universe too small for any quadruple
		{0, 0},     // empty request
		{1000, 20}, // far above band
	}
	for _, c := range cases {
		count, err := dp.Count(context.Background(), c.targetSum, c.upperBound)
		require.NoError(t, err, "N=%d M=%d", c.targetSum, c.upperBound)
		assert.Equal(t, int64(0), count, "N=%d M=%d", c.targetSum, c.upperBound)
	}
}

// Test contract violations
func TestDPCounter_InvalidInputs(t *testing.T) {
	dp := NewDPCounter(nil)

	t.Run("negative target sum", func(t *testing.T) {
		_, err := dp.Count(context.Background(), -1, 10)
		assert.ErrorIs(t, err, ErrNegativeInput)
	})

	t.Run("negative upper bound", func(t *testing.T) {
		_, err := dp.Count(context.Background(), 10, -4)
		assert.ErrorIs(t, err, ErrNegativeInput)
	})

	t.Run("upper bound beyond cap", func(t *testing.T) {
		_, err := dp.Count(context.Background(), 100, MaxUpperBound+1)
		assert.ErrorIs(t, err, ErrUpperBoundTooLarge)
	})
}

// Test against direct enumeration over a dense small grid
func TestDPCounter_MatchesBruteForce(t *testing.T) {
	dp := NewDPCounter(nil)

	for upperBound := 4; upperBound <= 14; upperBound++ {
		for targetSum := 0; targetSum <= 4*upperBound; targetSum++ {
			count, err := dp.Count(context.Background(), targetSum, upperBound)
			require.NoError(t, err, "N=%d M=%d", targetSum, upperBound)

			expected := bruteForceCount(targetSum, upperBound)
			assert.Equal(t, expected, count, "N=%d M=%d", targetSum, upperBound)
		}
	}
}

// Test that counts rise then fall across the band for a fixed universe
func TestDPCounter_Unimodal(t *testing.T) {
	dp := NewDPCounter(nil)

	for _, upperBound := range []int{8, 12, 30} {
		prev := int64(-1)
		decreased := false
		for targetSum := MinTargetSum; targetSum <= 4*upperBound-6; targetSum++ {
			count, err := dp.Count(context.Background(), targetSum, upperBound)
			require.NoError(t, err, "N=%d M=%d", targetSum, upperBound)
			require.GreaterOrEqual(t, count, int64(0), "N=%d M=%d", targetSum, upperBound)

			if prev >= 0 {
				if count < prev {
					decreased = true
				}
				if count > prev && decreased {
					t.Fatalf("count not unimodal at N=%d M=%d: %d after a decrease", targetSum, upperBound, count)
				}
			}
			prev = count
		}
		assert.True(t, decreased, "M=%d: counts never fell back to the band edge", upperBound)
	}
}

// Test progress notifications and their zero effect on the count
func TestDPCounter_ProgressSink(t *testing.T) {
	sink := &recordingSink{}
	withSink := NewDPCounter(&EngineConfig{Progress: sink})
	plain := NewDPCounter(nil)

	observed, err := withSink.Count(context.Background(), 40, 20)
	require.NoError(t, err)
	silent, err := plain.Count(context.Background(), 40, 20)
	require.NoError(t, err)

	assert.Equal(t, silent, observed, "sink must not change the count")
	assert.Equal(t, 1, sink.begins)
	assert.Equal(t, 20, sink.total, "one Advance per candidate value")
	assert.Equal(t, 20, sink.advances)
	assert.Equal(t, 1, sink.ends)
}

// Test that the short-circuit path never touches the sink
func TestDPCounter_ProgressSinkShortCircuit(t *testing.T) {
	sink := &recordingSink{}
	dp := NewDPCounter(&EngineConfig{Progress: sink})

	count, err := dp.Count(context.Background(), 9, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
	assert.Zero(t, sink.begins)
	assert.Zero(t, sink.advances)
	assert.Zero(t, sink.ends)
}

func BenchmarkDPCounter(b *testing.B) {
	dp := NewDPCounter(nil)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = dp.Count(ctx, 2048, 1024)
	}
}
