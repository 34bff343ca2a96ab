// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package util

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/AleutianAI/quadcount/pkg/quadruples"
)

// =============================================================================
// Line Sink Configuration
// =============================================================================

// LineSinkConfig configures single-line progress rendering.
//
// # Description
//
// Controls the label, repaint rate, and output destination of a LineSink.
// Zero values are replaced with the defaults from DefaultLineSinkConfig.
//
// # Example
//
//	config := LineSinkConfig{
//	    Label:       "dp n=1024",
//	    MinInterval: 50 * time.Millisecond,
//	}
//
// # Limitations
//
//   - Writer must support carriage returns for in-place repainting
type LineSinkConfig struct {
	// Label is the text displayed before the bar.
	Label string

	// Writer is where output is written.
	// Default: os.Stderr
	Writer io.Writer

	// MinInterval is the minimum time between repaints. Advance calls
	// inside the window update state but skip rendering.
	// Default: 100ms
	MinInterval time.Duration

	// Width is the bar width in cells.
	// Default: 30
	Width int
}

// DefaultLineSinkConfig returns sensible defaults.
//
// # Description
//
// Returns a configuration with a 30-cell bar, 100ms repaint interval,
// writing to stderr. Suitable for most CLI use cases.
//
// # Outputs
//
//   - LineSinkConfig: Configuration with default values
//
// # Assumptions
//
//   - os.Stderr is available for writing
func DefaultLineSinkConfig() LineSinkConfig {
	return LineSinkConfig{
		Writer:      os.Stderr,
		MinInterval: 100 * time.Millisecond,
		Width:       30,
	}
}

// =============================================================================
// Line Sink
// =============================================================================

// LineSink renders engine progress as a single repainted terminal line.
//
// # Description
//
// LineSink implements quadruples.ProgressSink for terminals that want
// feedback without the full-screen program: it repaints one line in place
// with a bar, a percentage, and an iteration count, then erases itself
// when the sweep ends.
//
// # Thread Safety
//
// Safe for concurrent use. Engines running in parallel may share one sink;
// their Advance calls interleave on the shared counters.
//
// # Example
//
//	sink := NewLineSink(LineSinkConfig{Label: "dp n=1024"})
//	cfg := &quadruples.EngineConfig{Progress: sink}
//	counter := quadruples.NewDPCounter(cfg)
//
// # Limitations
//
//   - One line only; concurrent sinks writing to the same Writer garble it
//   - Repaints are throttled, so the bar may lag the engine slightly
//
// # Assumptions
//
//   - Begin is called before Advance, End after the final Advance
type LineSink struct {
	config LineSinkConfig

	total      int
	done       int
	ended      bool
	lastRender time.Time
	mu         sync.Mutex
}

// Compile-time interface check
var _ quadruples.ProgressSink = (*LineSink)(nil)

// NewLineSink creates a line sink with the given configuration.
//
// # Description
//
// Creates a sink ready to be handed to an engine. Nothing is written
// until the engine calls Begin. Zero values in config are replaced with
// defaults.
//
// # Inputs
//
//   - config: Configuration for rendering behavior
//
// # Outputs
//
//   - *LineSink: New sink (nothing rendered yet)
//
// # Example
//
//	sink := NewLineSink(LineSinkConfig{Label: "pair_sum n=888"})
func NewLineSink(config LineSinkConfig) *LineSink {
	if config.Writer == nil {
		config.Writer = os.Stderr
	}
	if config.MinInterval <= 0 {
		config.MinInterval = 100 * time.Millisecond
	}
	if config.Width <= 0 {
		config.Width = 30
	}
	return &LineSink{config: config}
}

// Begin records the expected number of Advance calls and paints the
// empty bar.
func (s *LineSink) Begin(total int) {
	s.mu.Lock()
	s.total = total
	s.done = 0
	s.ended = false
	s.mu.Unlock()

	s.render(true)
}

// Advance adds n completed iterations and repaints if the throttle
// window has passed.
func (s *LineSink) Advance(n int) {
	s.mu.Lock()
	s.done += n
	if s.total > 0 && s.done > s.total {
		s.done = s.total
	}
	finished := s.total > 0 && s.done == s.total
	s.mu.Unlock()

	s.render(finished)
}

// End erases the progress line. Idempotent; extra calls are no-ops.
func (s *LineSink) End() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true

	if _, err := fmt.Fprint(s.config.Writer, "\r\033[K"); err != nil {
		slog.Warn("failed to clear progress line", "error", err)
	}
}

// render repaints the line. Throttled unless force is set, so tight
// engine loops do not spend their time in terminal writes. The write
// happens under the mutex; sinks shared across engines must not
// interleave bytes on the writer.
func (s *LineSink) render(force bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	now := time.Now()
	if !force && now.Sub(s.lastRender) < s.config.MinInterval {
		return
	}
	s.lastRender = now

	line := fmt.Sprintf("\r%s %s %3.0f%% (%d/%d)",
		s.config.Label, bar(s.done, s.total, s.config.Width),
		percent(s.done, s.total)*100, s.done, s.total)
	if _, err := fmt.Fprint(s.config.Writer, line); err != nil {
		slog.Warn("failed to render progress line", "error", err)
	}
}

// bar builds the filled/empty cell string for the current position.
func bar(done, total, width int) string {
	filled := int(percent(done, total) * float64(width))
	if filled > width {
		filled = width
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// percent returns completion in [0, 1]. A zero total counts as complete
// so an empty sweep never renders a stuck bar.
func percent(done, total int) float64 {
	if total <= 0 {
		return 1
	}
	p := float64(done) / float64(total)
	if p > 1 {
		return 1
	}
	return p
}

// =============================================================================
// Sink Factories
// =============================================================================

// RunBarFactory returns a SinkFactory that renders only the run-level row.
//
// # Description
//
// A plain terminal has one repaintable line, so this factory keeps the
// run-level bar (one tick per verified value) and silences the engine
// sweeps underneath it. The full-screen program handles the multi-row
// case; this is the fallback for everything else.
//
// # Inputs
//
//   - w: Output destination. Nil means os.Stderr.
//
// # Outputs
//
//   - quadruples.SinkFactory: Factory returning a LineSink for the run
//     slot and nil for every engine slot
//
// # Example
//
//	cfg := &quadruples.VerifierConfig{
//	    Parallelism: 1,
//	    Progress:    util.RunBarFactory(os.Stderr),
//	}
//
// # Limitations
//
//   - Engine-level sweeps produce no feedback under this factory
func RunBarFactory(w io.Writer) quadruples.SinkFactory {
	return func(label string, slot int) quadruples.ProgressSink {
		if slot != quadruples.SlotRun {
			return nil
		}
		config := DefaultLineSinkConfig()
		config.Label = label
		if w != nil {
			config.Writer = w
		}
		return NewLineSink(config)
	}
}
