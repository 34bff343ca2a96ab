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

import "time"

// Timed invokes fn and returns its result together with the wall-clock time
// the call took. The result and error pass through untouched; time.Since
// uses the monotonic clock, so the measurement is immune to wall-clock
// adjustments.
//
// Example:
//
//	count, elapsed, err := quadruples.Timed(func() (int64, error) {
//	    return dp.Count(ctx, 1024, 512)
//	})
func Timed[T any](fn func() (T, error)) (T, time.Duration, error) {
	start := time.Now()
	v, err := fn()
	return v, time.Since(start), err
}
