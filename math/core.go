// math/core.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Degrees converts an angle expressed in radians to degrees
func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians
func Radians(d float64) float64 {
	return d / 180 * gomath.Pi
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

func Lerp(x, a, b float64) float64 {
	return (1-x)*a + x*b
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !gomath.IsNaN(v) && !gomath.IsInf(v, 0)
}

// Round rounds v to the given number of decimal places.
func Round(v float64, places int) float64 {
	s := gomath.Pow(10, float64(places))
	return gomath.Round(v*s) / s
}
