// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validation provides input validation for user-provided values.
//
// This package validates the upper-bound lists users pass on the command
// line or through config files before they reach the counting engines.
// Engines validate again on their own; rejecting malformed input here
// gives users a flag-level error instead of a mid-run one.
package validation

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// valueListPattern matches a comma-separated list of decimal integers.
// Allows whitespace around commas so "5, 101, 1024" parses.
// Max 7 digits per value: anything longer exceeds every legal upper bound.
var valueListPattern = regexp.MustCompile(`^\d{1,7}(?:\s*,\s*\d{1,7})*$`)

// ValidateValue checks a single upper bound.
//
// Valid values:
//   - at least 1 (a zero or negative universe has nothing to count)
//   - at most max (the engine cap)
//
// Returns an error if the value is out of range.
func ValidateValue(n, max int) error {
	if n < 1 {
		return fmt.Errorf("value must be positive, got %d", n)
	}
	if n > max {
		return fmt.Errorf("value %d exceeds maximum %d", n, max)
	}
	return nil
}

// ValidateValues checks a list of upper bounds.
// Returns an error listing all out-of-range values if any fail validation.
func ValidateValues(values []int, max int) error {
	if len(values) == 0 {
		return fmt.Errorf("value list cannot be empty")
	}

	var invalid []int
	for _, n := range values {
		if err := ValidateValue(n, max); err != nil {
			invalid = append(invalid, n)
		}
	}

	if len(invalid) > 0 {
		return fmt.Errorf("invalid values (must be 1..%d): %v", max, invalid)
	}
	return nil
}

// ParseValues parses a comma-separated list of upper bounds.
// Returns the parsed values in input order, or an error if the list is
// malformed.
//
// Example:
//
//	values, err := validation.ParseValues("5, 101, 1024")
//	if err != nil {
//	    return fmt.Errorf("invalid --values: %w", err)
//	}
//	// values == []int{5, 101, 1024}
func ParseValues(s string) ([]int, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil, fmt.Errorf("value list cannot be empty")
	}

	if !valueListPattern.MatchString(trimmed) {
		return nil, fmt.Errorf("invalid value list format: %q (must be comma-separated positive integers)", s)
	}

	parts := strings.Split(trimmed, ",")
	values := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", part, err)
		}
		values = append(values, n)
	}

	return values, nil
}
