// event/fuel.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package event

import (
	"fmt"
	"log/slog"
	gomath "math"

	"github.com/mmp/fdsafety/series"
)

// scanLowEndingFuel averages fuel quantity over the trailing window that
// ends at the last line with both a fuel and a time sample, and reports
// a single event if that average is below the airframe's threshold.
func (s *Scanner) scanLowEndingFuel(f *series.Flight) ([]Event, error) {
	if s.Def.Threshold == nil {
		return nil, fmt.Errorf("%s: %w for airframe %q", s.Def.Name, ErrMissingThreshold, f.Airframe)
	}
	threshold := *s.Def.Threshold

	fuel, epoch := f.Double(series.TotalFuel), f.Epoch()
	valid := func(i int) bool { return fuel.Valid(i) && epoch.Valid(i) }

	last := -1
	for i := min(fuel.Len(), epoch.Len()) - 1; i >= 0; i-- {
		if valid(i) {
			last = i
			break
		}
	}
	if last == -1 {
		return nil, nil
	}

	end := epoch.At(last)
	sum, n, first := 0.0, 0, last
	for i := last; i >= 0; i-- {
		if !epoch.Valid(i) {
			continue
		}
		if end-epoch.At(i) > s.Def.WindowSeconds {
			break
		}
		if fuel.Valid(i) {
			sum += fuel.At(i)
			n++
			first = i
		}
	}

	avg := sum / float64(n)
	s.Log.Debug("ending fuel", slog.Int64("flight", f.ID), slog.Float64("average", avg),
		slog.Float64("threshold", threshold))
	if gomath.IsNaN(avg) || avg >= threshold {
		return nil, nil
	}

	return []Event{s.makeEvent(f, span{start: first, end: last, severity: avg})}, nil
}
