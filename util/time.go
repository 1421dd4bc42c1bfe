// util/time.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"time"
)

// TimeInterval represents a time interval with start and end times
type TimeInterval [2]time.Time

// Start returns the start time of the interval
func (ti TimeInterval) Start() time.Time {
	return ti[0]
}

// End returns the end time of the interval
func (ti TimeInterval) End() time.Time {
	return ti[1]
}

// Duration returns the duration of the interval
func (ti TimeInterval) Duration() time.Duration {
	return ti[1].Sub(ti[0])
}

// IsZero reports whether either endpoint of the interval is unset.
func (ti TimeInterval) IsZero() bool {
	return ti[0].IsZero() || ti[1].IsZero()
}

// Contains checks if the interval contains the given time
func (ti TimeInterval) Contains(t time.Time) bool {
	return !t.Before(ti[0]) && !t.After(ti[1])
}

// Overlaps reports whether the two closed intervals share at least one
// instant.
func (ti TimeInterval) Overlaps(o TimeInterval) bool {
	return !ti[1].Before(o[0]) && !o[1].Before(ti[0])
}

// Intersect returns the overlapping portion of two intervals; the
// returned bool is false if they do not overlap.
func (ti TimeInterval) Intersect(o TimeInterval) (TimeInterval, bool) {
	if !ti.Overlaps(o) {
		return TimeInterval{}, false
	}
	start, end := ti[0], ti[1]
	if o[0].After(start) {
		start = o[0]
	}
	if o[1].Before(end) {
		end = o[1]
	}
	return TimeInterval{start, end}, true
}
