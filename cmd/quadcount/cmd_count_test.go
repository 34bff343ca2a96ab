// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/AleutianAI/quadcount/pkg/quadruples"
	"github.com/AleutianAI/quadcount/pkg/ux"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// captureStdout redirects stdout around f and returns what was written.
func captureStdout(t *testing.T, f func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = old }()

	f()

	w.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read pipe: %v", err)
	}
	return buf.String()
}

// withMachineMode switches ux into machine output for the test.
func withMachineMode(t *testing.T) {
	t.Helper()
	prev := ux.CurrentMode()
	ux.SetMode(ux.ModeMachine)
	t.Cleanup(func() { ux.SetMode(prev) })
}

// setQuery sets the count command's flag globals for the test.
func setQuery(t *testing.T, target, upper int) {
	t.Helper()
	prevTarget, prevUpper := countTarget, countUpper
	countTarget, countUpper = target, upper
	t.Cleanup(func() { countTarget, countUpper = prevTarget, prevUpper })
}

// withExitCode saves and restores the process exit code global.
func withExitCode(t *testing.T) {
	t.Helper()
	prev := exitCode
	exitCode = 0
	t.Cleanup(func() { exitCode = prev })
}

// =============================================================================
// COUNT EXECUTION TESTS
// =============================================================================

func TestCountOnce_KnownQueries(t *testing.T) {
	withMachineMode(t)

	tests := []struct {
		name   string
		target int
		upper  int
		want   int64
	}{
		{"minimal universe", 10, 4, 1},
		{"wide universe same answer", 10, 101, 1},
		{"two quadruples", 13, 6, 2},
		{"below smallest sum", 9, 101, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setQuery(t, tt.target, tt.upper)

			for _, engine := range []quadruples.Engine{quadruples.EngineDP, quadruples.EnginePairSum} {
				res, err := countOnce(context.Background(), engine)
				if err != nil {
					t.Fatalf("countOnce(%s) error: %v", engine, err)
				}
				if res.Count != tt.want {
					t.Errorf("countOnce(%s) N=%d M=%d = %d, want %d",
						engine, tt.target, tt.upper, res.Count, tt.want)
				}
			}
		})
	}
}

func TestCountOnce_InvalidQuery(t *testing.T) {
	withMachineMode(t)
	setQuery(t, 10, quadruples.MaxUpperBound+1)

	_, err := countOnce(context.Background(), quadruples.EngineDP)
	if err == nil {
		t.Fatal("countOnce should reject an over-cap upper bound")
	}
	if !errors.Is(err, quadruples.ErrUpperBoundTooLarge) {
		t.Errorf("error = %v, want ErrUpperBoundTooLarge", err)
	}
	if !strings.Contains(err.Error(), "dp") {
		t.Errorf("error should name the engine, got %v", err)
	}
}

// =============================================================================
// RENDER TESTS
// =============================================================================

func TestRenderCount_Machine(t *testing.T) {
	withMachineMode(t)
	setQuery(t, 10, 4)

	out := captureStdout(t, func() {
		renderCount(quadruples.EngineDP, quadruples.EngineResult{Count: 1})
	})
	if out != "1\n" {
		t.Errorf("machine output = %q, want %q", out, "1\n")
	}
}

func TestRenderBoth_Machine(t *testing.T) {
	withMachineMode(t)
	withExitCode(t)

	out := captureStdout(t, func() {
		renderBoth(
			quadruples.EngineResult{Count: 7},
			quadruples.EngineResult{Count: 7},
		)
	})

	if !strings.Contains(out, "dp\t7") {
		t.Errorf("output should have a dp line, got %q", out)
	}
	if !strings.Contains(out, "pair_sum\t7") {
		t.Errorf("output should have a pair_sum line, got %q", out)
	}
	if !strings.Contains(out, "OK:") {
		t.Errorf("agreement should print an OK line, got %q", out)
	}
	if exitCode != 0 {
		t.Errorf("exitCode = %d, want 0 on agreement", exitCode)
	}
}

func TestRenderBoth_MismatchSetsExitCode(t *testing.T) {
	withMachineMode(t)
	withExitCode(t)

	out := captureStdout(t, func() {
		renderBoth(
			quadruples.EngineResult{Count: 7},
			quadruples.EngineResult{Count: 8},
		)
	})

	if exitCode != 1 {
		t.Errorf("exitCode = %d, want 1 on mismatch", exitCode)
	}
	if !strings.Contains(out, "dp\t7") || !strings.Contains(out, "pair_sum\t8") {
		t.Errorf("both counts should still print, got %q", out)
	}
}
