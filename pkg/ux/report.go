// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package ux

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/dustin/go-humanize"

	"github.com/AleutianAI/quadcount/pkg/quadruples"
)

// FormatCount renders a count with thousands separators. Counts at large
// upper bounds run into the hundreds of quadrillions; raw digits are
// unreadable.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}

// FormatDuration renders a duration at a precision matched to its scale.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Microsecond:
		return fmt.Sprintf("%dns", d.Nanoseconds())
	case d < time.Millisecond:
		return fmt.Sprintf("%.1fµs", float64(d.Nanoseconds())/1e3)
	case d < time.Second:
		return fmt.Sprintf("%.1fms", float64(d.Microseconds())/1e3)
	default:
		return fmt.Sprintf("%.2fs", d.Seconds())
	}
}

// engineCell renders one engine's count and elapsed time for a table cell.
func engineCell(r quadruples.EngineResult) string {
	return fmt.Sprintf("%s (%s)", FormatCount(r.Count), FormatDuration(r.Elapsed))
}

// RenderVerifyTable renders the per-value verification results.
//
// Rich and minimal modes get a bordered table with a status column;
// machine mode gets tab-separated lines with a header row, one row per
// value, suitable for awk and friends.
func RenderVerifyTable(results []quadruples.VerifyResult) string {
	if len(results) == 0 {
		return ""
	}

	if CurrentMode() == ModeMachine {
		var b strings.Builder
		b.WriteString("n\tformula\tdp\tpair_sum\tmatch\n")
		for _, r := range results {
			fmt.Fprintf(&b, "%d\t%d\t%d\t%d\t%t\n",
				r.N, r.Formula.Count, r.DP.Count, r.PairSum.Count, r.Match)
		}
		return b.String()
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(Styles.TableBorder).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return Styles.TableHeader
			}
			if col == 0 {
				if results[row].Match {
					return Styles.TableCell.Foreground(ColorSuccess)
				}
				return Styles.TableCell.Foreground(ColorError)
			}
			return Styles.TableCell
		}).
		Headers("", "N", "FORMULA", "DP", "PAIR-SUM")

	for _, r := range results {
		status := string(IconSuccess)
		if !r.Match {
			status = string(IconError)
		}
		t.Row(status,
			humanize.Comma(int64(r.N)),
			engineCell(r.Formula),
			engineCell(r.DP),
			engineCell(r.PairSum),
		)
	}

	return t.String()
}

// RenderMismatchPanel renders a panel detailing every value whose engines
// disagreed. Returns the empty string when all engines agreed.
func RenderMismatchPanel(report *quadruples.Report) string {
	if report == nil || report.AllMatch() {
		return ""
	}

	rows := make(map[int]quadruples.VerifyResult, len(report.Results))
	for _, r := range report.Results {
		rows[r.N] = r
	}

	if CurrentMode() == ModeMachine {
		var b strings.Builder
		for _, n := range report.Mismatches {
			r := rows[n]
			fmt.Fprintf(&b, "MISMATCH: n=%d formula=%d dp=%d pair_sum=%d\n",
				n, r.Formula.Count, r.DP.Count, r.PairSum.Count)
		}
		return b.String()
	}

	var lines []string
	for _, n := range report.Mismatches {
		r := rows[n]
		lines = append(lines, fmt.Sprintf("n=%d  formula=%s  dp=%s  pair_sum=%s",
			n,
			FormatCount(r.Formula.Count),
			FormatCount(r.DP.Count),
			FormatCount(r.PairSum.Count),
		))
	}

	title := Styles.Error.Bold(true).Render(fmt.Sprintf("ENGINE MISMATCH (%d)", len(report.Mismatches)))
	return Styles.ErrorBox.Render(title + "\n" + strings.Join(lines, "\n"))
}

// RenderRunSummary renders the one-line outcome of a verification run.
func RenderRunSummary(report *quadruples.Report) string {
	if report == nil {
		return ""
	}

	total := len(report.Results)
	mismatched := len(report.Mismatches)
	matched := total - mismatched

	if CurrentMode() == ModeMachine {
		return fmt.Sprintf("SUMMARY: matched=%d mismatched=%d total=%d elapsed=%s run_id=%s",
			matched, mismatched, total, FormatDuration(report.Elapsed), report.RunID)
	}

	mismatchStyle := Styles.Muted
	if mismatched > 0 {
		mismatchStyle = Styles.Error
	}

	return fmt.Sprintf("%s %s  %s %s  %s %s  %s",
		Styles.Success.Render(fmt.Sprintf("%d", matched)), Styles.Muted.Render("matched"),
		mismatchStyle.Render(fmt.Sprintf("%d", mismatched)), Styles.Muted.Render("mismatched"),
		Styles.Bold.Render(fmt.Sprintf("%d", total)), Styles.Muted.Render("total"),
		Styles.Muted.Render("in "+FormatDuration(report.Elapsed)),
	)
}
