// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/AleutianAI/quadcount/pkg/quadruples"
	"github.com/AleutianAI/quadcount/pkg/ux"
)

// =============================================================================
// Messages
// =============================================================================

// sweepBeginMsg announces a new sweep on a display row.
type sweepBeginMsg struct {
	slot  int
	label string
	total int
}

// sweepTickMsg carries the absolute completed count for a row.
type sweepTickMsg struct {
	slot int
	done int
}

// sweepEndMsg marks a row's sweep finished.
type sweepEndMsg struct {
	slot int
}

// runDoneMsg signals the verification goroutine has returned.
type runDoneMsg struct{}

// =============================================================================
// Model
// =============================================================================

const (
	// labelWidth pads row labels so the bars line up.
	labelWidth = 18

	// maxBarWidth caps bar growth on wide terminals.
	maxBarWidth = 48
)

// barRow is the display state of one progress slot.
type barRow struct {
	label  string
	total  int
	done   int
	active bool
	bar    progress.Model
}

// progressModel is the bubbletea model for the multi-bar verification
// display: one run-level bar plus one bar per concurrent engine sweep.
//
// # Thread Safety
//
// The model is only touched inside the bubbletea event loop. Engine
// goroutines communicate through Program.Send, never by mutating the
// model directly.
type progressModel struct {
	rows  map[int]*barRow
	order []int // slots in display order

	width      int
	cancel     context.CancelFunc
	cancelling bool
	quitting   bool
}

func newProgressModel(cancel context.CancelFunc) progressModel {
	return progressModel{
		rows:   make(map[int]*barRow),
		cancel: cancel,
	}
}

// Init implements tea.Model.
func (m progressModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		for _, row := range m.rows {
			row.bar.Width = m.barWidth()
		}

	case sweepBeginMsg:
		row, ok := m.rows[msg.slot]
		if !ok {
			bar := progress.New(
				progress.WithGradient(string(ux.ColorTealDeep), string(ux.ColorTealBright)),
				progress.WithWidth(m.barWidth()),
			)
			row = &barRow{bar: bar}
			m.rows[msg.slot] = row
			m.order = append(m.order, msg.slot)
			sort.Ints(m.order)
		}
		row.label = msg.label
		row.total = msg.total
		row.done = 0
		row.active = true

	case sweepTickMsg:
		if row, ok := m.rows[msg.slot]; ok {
			row.done = msg.done
			if row.total > 0 && row.done > row.total {
				row.done = row.total
			}
		}

	case sweepEndMsg:
		if row, ok := m.rows[msg.slot]; ok {
			row.active = false
			row.done = row.total
		}

	case runDoneMsg:
		m.quitting = true
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			// Ask the run to stop; the display stays up until the
			// verifier returns so no goroutine is orphaned.
			if !m.cancelling {
				m.cancelling = true
				if m.cancel != nil {
					m.cancel()
				}
			}
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m progressModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(ux.Styles.Title.Render("quadcount verify"))
	b.WriteString("\n\n")

	for _, slot := range m.order {
		row := m.rows[slot]
		b.WriteString(m.renderRow(row))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if m.cancelling {
		b.WriteString(ux.Styles.Warning.Render("cancelling, waiting for the current value to finish"))
	} else {
		b.WriteString(ux.Styles.Muted.Render("q to cancel"))
	}
	b.WriteString("\n")

	return b.String()
}

// renderRow draws one label, bar, and count triple.
func (m progressModel) renderRow(row *barRow) string {
	label := row.label
	if len(label) > labelWidth {
		label = label[:labelWidth-1] + "…"
	}

	pct := 0.0
	if row.total > 0 {
		pct = float64(row.done) / float64(row.total)
	} else if !row.active {
		pct = 1.0
	}

	counts := fmt.Sprintf("(%d/%d)", row.done, row.total)
	if !row.active {
		counts = string(ux.IconSuccess) + " " + counts
	}

	return fmt.Sprintf("%-*s %s %s",
		labelWidth, label, row.bar.ViewAs(pct), ux.Styles.Muted.Render(counts))
}

// barWidth sizes bars to the terminal, leaving room for label and counts.
func (m progressModel) barWidth() int {
	if m.width == 0 {
		return maxBarWidth
	}
	w := m.width - labelWidth - 20
	if w < 10 {
		w = 10
	}
	if w > maxBarWidth {
		w = maxBarWidth
	}
	return w
}

// =============================================================================
// Program Sink
// =============================================================================

// repaintRate caps how many tick messages per second each sink pushes
// into the event loop. Engine inner loops advance far faster than a
// terminal can paint.
var repaintRate = rate.Limit(30)

// programSink adapts quadruples.ProgressSink onto a running bubbletea
// program. Engines call it from their own goroutines; bubbletea's Send
// is the thread-safe seam in between.
type programSink struct {
	p       *tea.Program
	slot    int
	label   string
	limiter *rate.Limiter

	mu    sync.Mutex
	total int
	done  int
}

var _ quadruples.ProgressSink = (*programSink)(nil)

// Begin implements quadruples.ProgressSink.
func (s *programSink) Begin(total int) {
	s.mu.Lock()
	s.total = total
	s.done = 0
	s.mu.Unlock()

	s.p.Send(sweepBeginMsg{slot: s.slot, label: s.label, total: total})
}

// Advance implements quadruples.ProgressSink. Ticks are rate-limited;
// the final tick always goes through so bars end full.
func (s *programSink) Advance(n int) {
	s.mu.Lock()
	s.done += n
	if s.total > 0 && s.done > s.total {
		s.done = s.total
	}
	done := s.done
	finished := s.total > 0 && s.done == s.total
	s.mu.Unlock()

	if finished || s.limiter.Allow() {
		s.p.Send(sweepTickMsg{slot: s.slot, done: done})
	}
}

// End implements quadruples.ProgressSink.
func (s *programSink) End() {
	s.p.Send(sweepEndMsg{slot: s.slot})
}

// newProgramSinkFactory builds sinks bound to the program, one per
// engine invocation.
func newProgramSinkFactory(p *tea.Program) quadruples.SinkFactory {
	return func(label string, slot int) quadruples.ProgressSink {
		return &programSink{
			p:       p,
			slot:    slot,
			label:   label,
			limiter: rate.NewLimiter(repaintRate, 1),
		}
	}
}

// =============================================================================
// Runner
// =============================================================================

// runVerifyTUI drives a verification run behind the full-screen progress
// display. The verifier runs in its own goroutine and reports through
// program messages; the display exits when the run does. Cancellation
// flows the other way: a keypress cancels the run's context and the
// display waits for the verifier to unwind.
func runVerifyTUI(ctx context.Context, values []int, parallelism int) (*quadruples.Report, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(cancel), tea.WithOutput(os.Stderr))

	var (
		report *quadruples.Report
		runErr error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer p.Send(runDoneMsg{})

		verifier, err := quadruples.NewVerifier(&quadruples.VerifierConfig{
			Parallelism: parallelism,
			Progress:    newProgramSinkFactory(p),
		})
		if err != nil {
			runErr = err
			return
		}
		report, runErr = verifier.Run(ctx, values)
	}()

	if _, err := p.Run(); err != nil {
		// The terminal failed underneath us; the run may still finish.
		slog.Warn("progress display failed", "error", err)
	}
	<-done

	return report, runErr
}
