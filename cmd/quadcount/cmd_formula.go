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
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/quadcount/pkg/quadruples"
	"github.com/AleutianAI/quadcount/pkg/ux"
)

// runFormula answers the divisible-by-n query with the closed form alone.
func runFormula(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()

	if !cmd.Flags().Changed("n") {
		ux.Error("formula requires --n")
		exitCode = 1
		return
	}

	counter := quadruples.NewFormulaCounter()
	count, elapsed, err := quadruples.Timed(func() (int64, error) {
		return counter.Count(ctx, formulaN)
	})
	if err != nil {
		ux.Error(err.Error())
		exitCode = 1
		return
	}

	if ux.CurrentMode() == ux.ModeMachine {
		fmt.Printf("%d\n", count)
		return
	}
	ux.Box("formula engine", fmt.Sprintf(
		"%s quadruples in 1..%d with sum divisible by %d\ncomputed in %s",
		ux.FormatCount(count), formulaN, formulaN,
		ux.FormatDuration(elapsed)))
}
