// event/fuel_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package event

import (
	"errors"
	gomath "math"
	"testing"

	"github.com/mmp/fdsafety/series"
)

func TestLowEndingFuel(t *testing.T) {
	nan := gomath.NaN()
	// 40 samples at 1 Hz; the trailing 16 lines (24..39) span 15 seconds.
	fuel := func(tail float64) []float64 {
		f := make([]float64, 40)
		for i := range f {
			if i < 24 {
				f[i] = 30
			} else {
				f[i] = tail
			}
		}
		f[39] = nan // last line has no fuel sample
		return f
	}

	tests := []struct {
		name     string
		airframe string
		fuel     []float64
		events   int
		tail     float64
	}{
		{name: "Low", airframe: Cessna172, fuel: fuel(6), events: 1, tail: 6},
		{name: "AboveThreshold", airframe: Cessna172, fuel: fuel(9), events: 0},
		{name: "HigherThreshold", airframe: PA44, fuel: fuel(9), events: 1, tail: 9},
	}

	table := DefaultTable()
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			defs := table.For(test.airframe)
			i := defIndex(defs, LowEndingFuelID)
			f := makeFlight(t, test.airframe, map[string][]float64{series.TotalFuel: test.fuel})

			events, err := NewScanner(&defs[i], nil).Scan(f)
			if err != nil {
				t.Fatal(err)
			}
			if len(events) != test.events {
				t.Fatalf("expected %d events, got %v", test.events, events)
			}
			if test.events == 1 {
				e := events[0]
				if e.EndLine != 38 || e.StartLine != 23 {
					t.Errorf("expected lines 23-38, got %d-%d", e.StartLine, e.EndLine)
				}
				// Line 23 still reads 30 gallons.
				want := (30 + 15*test.tail) / 16
				if gomath.Abs(e.Severity-want) > 1e-9 {
					t.Errorf("expected severity %f, got %f", want, e.Severity)
				}
			}
		})
	}
}

func TestLowEndingFuelMissingThreshold(t *testing.T) {
	defs := DefaultTable().For("Diamond DA40")
	i := defIndex(defs, LowEndingFuelID)
	f := makeFlight(t, "Diamond DA40", map[string][]float64{series.TotalFuel: {1, 1, 1}})

	_, err := NewScanner(&defs[i], nil).Scan(f)
	if !errors.Is(err, ErrMissingThreshold) {
		t.Errorf("expected ErrMissingThreshold, got %v", err)
	}
}

func defIndex(defs []Definition, id int) int {
	for i, d := range defs {
		if d.ID == id {
			return i
		}
	}
	panic("definition not found")
}
