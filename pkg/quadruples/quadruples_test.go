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
	"testing"

	"github.com/stretchr/testify/assert"
)

// Test the achievable band
func TestRequest_InBand(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"band minimum", Request{TargetSum: 10, UpperBound: 4}, true},
		{"band maximum", Request{TargetSum: 34, UpperBound: 10}, true},
		{"below minimum sum", Request{TargetSum: 9, UpperBound: 100}, false},
		{"above maximum sum", Request{TargetSum: 35, UpperBound: 10}, false},
		{"universe too small", Request{TargetSum: 10, UpperBound: 3}, false},
		{"empty universe", Request{TargetSum: 0, UpperBound: 0}, false},
		{"interior", Request{TargetSum: 20, UpperBound: 9}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.InBand())
		})
	}
}

// Test the caller contract
func TestRequest_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, Request{TargetSum: 10, UpperBound: 4}.Validate())
		assert.NoError(t, Request{TargetSum: 0, UpperBound: 0}.Validate())
	})

	t.Run("negative target sum", func(t *testing.T) {
		err := Request{TargetSum: -1, UpperBound: 4}.Validate()
		assert.ErrorIs(t, err, ErrNegativeInput)
	})

	t.Run("negative upper bound", func(t *testing.T) {
		err := Request{TargetSum: 10, UpperBound: -1}.Validate()
		assert.ErrorIs(t, err, ErrNegativeInput)
	})

	t.Run("upper bound beyond cap", func(t *testing.T) {
		err := Request{TargetSum: 10, UpperBound: MaxUpperBound + 1}.Validate()
		assert.ErrorIs(t, err, ErrUpperBoundTooLarge)
	})
}

// Test engine names used in metrics and progress labels
func TestEngine_String(t *testing.T) {
	assert.Equal(t, "dp", EngineDP.String())
	assert.Equal(t, "pair_sum", EnginePairSum.String())
	assert.Equal(t, "formula", EngineFormula.String())
	assert.Equal(t, "unknown", Engine(99).String())
}
