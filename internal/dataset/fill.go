// Copyright 2024 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dataset

import "math"

// FillNearest fills NaN values in xs with the nearest non-NaN value,
// preferring the closest earlier value and falling back to the
// closest later value. xs must already be ordered by the group's sort
// key (year, for per-country-and-sex series). The input is not
// modified; if xs contains no NaNs it is returned as is.
//
// A sequence with no observed value at all is returned unchanged: all
// NaN in, all NaN out.
func FillNearest(xs []float64) []float64 {
	anyNaN := false
	for _, x := range xs {
		if math.IsNaN(x) {
			anyNaN = true
			break
		}
	}
	if !anyNaN {
		return xs
	}

	out := make([]float64, len(xs))
	copy(out, xs)

	// Carry forward.
	last := math.NaN()
	for i, x := range out {
		if math.IsNaN(x) {
			out[i] = last
		} else {
			last = x
		}
	}

	// Carry backward for the leading gap.
	next := math.NaN()
	for i := len(out) - 1; i >= 0; i-- {
		if math.IsNaN(out[i]) {
			out[i] = next
		} else {
			next = out[i]
		}
	}
	return out
}
