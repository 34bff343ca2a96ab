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

// ProgressSink observes an engine sweep. Engines call Begin once with the
// number of outer-loop iterations, Advance once per completed iteration,
// and End exactly once when the sweep finishes.
//
// Sinks are pure observers: a sink must never influence the returned count,
// and engines never call a sink on the short-circuit path (a request outside
// the band produces no sweep to observe). Implementations are called from
// the engine's goroutine and must be cheap; expensive rendering belongs
// behind the sink (throttling, message passing), not in it.
type ProgressSink interface {
	// Begin announces the total number of Advance calls to expect.
	Begin(total int)

	// Advance reports n completed outer-loop iterations, normally 1.
	Advance(n int)

	// End marks the sweep complete. Always called when Begin was, even if
	// the surrounding context was cancelled mid-sweep.
	End()
}

// SinkFactory builds a ProgressSink for one engine invocation. The label
// describes the work ("dp n=1024"); the slot is a display-row hint so
// multi-bar UIs can keep a stable row per engine. A nil factory, or a
// factory returning nil, disables progress for that invocation.
type SinkFactory func(label string, slot int) ProgressSink

// Display-slot hints passed to a SinkFactory. A verification run drives one
// run-level sink and, below it, one sink per engine sweep; parallel runs
// offset the engine slot per worker.
const (
	SlotRun    = 0 // run-level progress across the value list
	SlotEngine = 1 // first engine-sweep row
)

// NopSink is a ProgressSink that discards all notifications.
type NopSink struct{}

// Begin implements ProgressSink.
func (NopSink) Begin(total int) {}

// Advance implements ProgressSink.
func (NopSink) Advance(n int) {}

// End implements ProgressSink.
func (NopSink) End() {}

// beginSweep normalizes a possibly-nil sink so engine loops can notify
// without nil checks at every iteration.
func beginSweep(sink ProgressSink, total int) ProgressSink {
	if sink == nil {
		return NopSink{}
	}
	sink.Begin(total)
	return sink
}
