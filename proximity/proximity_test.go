// proximity/proximity_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package proximity

import (
	"errors"
	gomath "math"
	"testing"
	"time"

	"github.com/mmp/fdsafety/event"
	"github.com/mmp/fdsafety/math"
	"github.com/mmp/fdsafety/series"
)

var t0 = time.Date(2023, 6, 10, 15, 0, 0, 0, time.UTC)

const (
	baseLat = 40.0
	baseLon = -75.0
)

// eastFt returns the longitude offset in degrees of a point d feet east
// of baseLat, baseLon.
func eastFt(d float64) float64 {
	ftPerDeg := math.KmToFeet * math.EarthRadiusKm * gomath.Cos(math.Radians(baseLat)) * gomath.Pi / 180
	return d / ftPerDeg
}

type sample struct {
	lat, lon, msl, agl float64
}

// makeFlight builds a 1 Hz flight of n samples whose first sample is
// startSec seconds after t0. pos is given seconds since t0.
func makeFlight(t *testing.T, id int64, startSec, n int, pos func(sec int) sample) *series.Flight {
	t.Helper()

	f := series.NewFlight(id, "Cessna 172S")
	lat, lon := make([]float64, n), make([]float64, n)
	msl, agl := make([]float64, n), make([]float64, n)
	ias := make([]float64, n)
	utc := make([]string, n)
	for i := range n {
		sec := startSec + i
		s := pos(sec)
		lat[i], lon[i], msl[i], agl[i], ias[i] = s.lat, s.lon, s.msl, s.agl, 100
		utc[i] = t0.Add(time.Duration(sec) * time.Second).Format("2006-01-02 15:04:05Z")
	}
	f.AddDouble(series.NewDoubleSeries(series.Latitude, lat))
	f.AddDouble(series.NewDoubleSeries(series.Longitude, lon))
	f.AddDouble(series.NewDoubleSeries(series.AltMSL, msl))
	f.AddDouble(series.NewDoubleSeries(series.AltAGL, agl))
	f.AddDouble(series.NewDoubleSeries(series.IAS, ias))
	f.AddString(series.NewStringSeries(series.UTCDateTime, utc))
	return f
}

func trajectory(t *testing.T, f *series.Flight) *Trajectory {
	t.Helper()
	tr, ok := NewTrajectory(f)
	if !ok {
		t.Fatalf("flight %d: no trajectory", f.ID)
	}
	return tr
}

// separationAt is the lateral separation in feet of the converging
// scenario: 2000 ft until second 40, closing to 200 ft at second 79,
// then opening back to 2000 ft by second 119.
func separationAt(sec int) float64 {
	switch {
	case sec < 40:
		return 2000
	case sec <= 79:
		return 2000 - 1800*float64(sec-40)/39
	case sec <= 119:
		return 200 + 1800*float64(sec-79)/40
	default:
		return 2000
	}
}

func convergingPair(t *testing.T, agl float64, startB int) (*Trajectory, *Trajectory) {
	t.Helper()
	a := makeFlight(t, 1, 0, 130, func(int) sample {
		return sample{baseLat, baseLon, 3000, agl}
	})
	b := makeFlight(t, 2, startB, 130-startB, func(sec int) sample {
		return sample{baseLat, baseLon + eastFt(separationAt(sec)), 3000, agl}
	})
	return trajectory(t, a), trajectory(t, b)
}

func TestConvergingFlights(t *testing.T) {
	for _, startB := range []int{0, 3} {
		a, b := convergingPair(t, 2000, startB)
		s := NewScanner(nil)

		if !s.Candidate(a, b) {
			t.Fatalf("expected b to be a candidate for a")
		}
		events := s.Scan(a, b)
		if len(events) != 2 {
			t.Fatalf("startB %d: expected one event pair, got %d: %v", startB, len(events), events)
		}

		ea, eb := events[0], events[1]
		if gomath.Abs(ea.Severity-200) > 1 {
			t.Errorf("expected severity near 200 ft, got %f", ea.Severity)
		}
		// Close from second 62 through second 96.
		if ea.StartLine != 62 || ea.EndLine != 96 {
			t.Errorf("flight a: expected lines 62-96, got %d-%d", ea.StartLine, ea.EndLine)
		}
		if eb.StartLine != 62-startB || eb.EndLine != 96-startB {
			t.Errorf("flight b: expected lines %d-%d, got %d-%d", 62-startB, 96-startB, eb.StartLine, eb.EndLine)
		}
		if !ea.StartTime.Equal(t0.Add(62*time.Second)) || !ea.StartTime.Equal(eb.StartTime) ||
			!ea.EndTime.Equal(eb.EndTime) {
			t.Errorf("unexpected times %v-%v / %v-%v", ea.StartTime, ea.EndTime, eb.StartTime, eb.EndTime)
		}

		// The window extends five seconds each side: 45 samples.
		if len(ea.RateOfClosure) != 44 {
			t.Fatalf("expected 44 rate-of-closure samples, got %d", len(ea.RateOfClosure))
		}
		if r := ea.RateOfClosure[0]; gomath.Abs(r-1800.0/39) > 0.5 {
			t.Errorf("expected closing rate near %f, got %f", 1800.0/39, r)
		}
		if r := ea.RateOfClosure[43]; gomath.Abs(r+45) > 0.5 {
			t.Errorf("expected separating rate near -45, got %f", r)
		}
	}
}

func TestProximitySymmetry(t *testing.T) {
	a, b := convergingPair(t, 500, 0)
	events := NewScanner(nil).Scan(a, b)
	if len(events) != 2 {
		t.Fatalf("expected one event pair, got %d", len(events))
	}

	ea, eb := events[0], events[1]
	if ea.FlightID != eb.OtherFlightID || eb.FlightID != ea.OtherFlightID || ea.FlightID == eb.FlightID {
		t.Errorf("flight ids not swapped: %+v / %+v", ea, eb)
	}
	if ea.Severity != eb.Severity {
		t.Errorf("severity differs: %f vs %f", ea.Severity, eb.Severity)
	}
	if ea.DefinitionID != DefinitionID || eb.DefinitionID != DefinitionID {
		t.Errorf("unexpected definition ids")
	}
	for _, name := range []string{event.LateralDistance, event.VerticalDistance} {
		va, oka := ea.MetadataValue(name)
		vb, okb := eb.MetadataValue(name)
		if !oka || !okb || va != vb {
			t.Errorf("%s: %f (%v) vs %f (%v)", name, va, oka, vb, okb)
		}
	}
	if lat, _ := ea.MetadataValue(event.LateralDistance); gomath.Abs(lat-ea.Severity) > 1e-6 {
		t.Errorf("lateral distance %f should equal severity %f at equal altitude", lat, ea.Severity)
	}
}

func TestNearGroundIgnored(t *testing.T) {
	a, b := convergingPair(t, 20, 0)
	if events := NewScanner(nil).Scan(a, b); len(events) != 0 {
		t.Errorf("expected no events below minimum AGL, got %v", events)
	}
}

func TestCandidate(t *testing.T) {
	s := NewScanner(nil)
	a, b := convergingPair(t, 2000, 0)

	if s.Candidate(b, a) || s.Candidate(a, a) {
		t.Errorf("pairs must only be considered from the lower id")
	}

	// 0.005 degrees north of a: the raw boxes are apart but within the
	// buffer on both sides.
	near := trajectory(t, makeFlight(t, 3, 0, 60, func(int) sample {
		return sample{baseLat + 0.005, baseLon, 3000, 2000}
	}))
	if !s.Candidate(a, near) {
		t.Errorf("expected buffered boxes to overlap")
	}
	far := trajectory(t, makeFlight(t, 4, 0, 60, func(int) sample {
		return sample{baseLat + 0.01, baseLon, 3000, 2000}
	}))
	if s.Candidate(a, far) {
		t.Errorf("expected distant flight to be filtered")
	}

	if got := s.ScanCandidates(a, []*Trajectory{b, near, far}); len(got) != 2 {
		t.Errorf("expected one event pair from candidates, got %d", len(got))
	}
}

func TestNewTrajectoryMissingColumn(t *testing.T) {
	f := makeFlight(t, 9, 0, 40, func(int) sample { return sample{baseLat, baseLon, 3000, 2000} })
	delete(f.Doubles, series.AltAGL)
	if _, ok := NewTrajectory(f); ok {
		t.Errorf("expected flight without AGL to be skipped")
	}
}

func TestShortClosureWindow(t *testing.T) {
	// Close for the first five seconds, then far apart.
	pos := func(sec int) sample {
		if sec < 5 {
			return sample{baseLat, baseLon + eastFt(100+20*float64(sec)), 3000, 2000}
		}
		return sample{baseLat, baseLon + eastFt(5000), 3000, 2000}
	}
	a := trajectory(t, makeFlight(t, 1, 0, 60, func(int) sample { return sample{baseLat, baseLon, 3000, 2000} }))
	b := trajectory(t, makeFlight(t, 2, 0, 60, pos))

	s := NewScanner(nil)
	s.StartLine = 0
	encs := s.Encounters(a, b)
	if len(encs) != 1 || encs[0].Start1 != 0 || encs[0].End1 != 4 {
		t.Fatalf("unexpected encounters %+v", encs)
	}

	roc, err := RateOfClosure(a, b, encs[0], 5)
	var cwe *ClosureWindowError
	if !errors.Is(err, ErrShortClosureWindow) || !errors.As(err, &cwe) {
		t.Fatalf("expected ClosureWindowError, got %v", err)
	}
	if cwe.Before != 0 || cwe.After != 5 {
		t.Errorf("expected 0 before and 5 after, got %+v", cwe)
	}
	// Lines 0 through 9.
	if len(roc) != 9 {
		t.Fatalf("expected 9 samples, got %d", len(roc))
	}
	if gomath.Abs(roc[0]+20) > 0.1 {
		t.Errorf("expected separating at 20 ft/s, got %f", roc[0])
	}

	// Scan still emits the pair and keeps the truncated series.
	events := s.Scan(a, b)
	if len(events) != 2 || len(events[0].RateOfClosure) != 9 {
		t.Errorf("expected pair with truncated rate of closure, got %v", events)
	}
}

// makeSampledFlight builds a flight whose k'th sample is stamped secs[k]
// seconds after t0.
func makeSampledFlight(t *testing.T, id int64, secs []int, pos func(k int) sample) *series.Flight {
	t.Helper()

	n := len(secs)
	f := series.NewFlight(id, "Cessna 172S")
	lat, lon := make([]float64, n), make([]float64, n)
	msl, agl := make([]float64, n), make([]float64, n)
	utc := make([]string, n)
	for k, sec := range secs {
		s := pos(k)
		lat[k], lon[k], msl[k], agl[k] = s.lat, s.lon, s.msl, s.agl
		utc[k] = t0.Add(time.Duration(sec) * time.Second).Format("2006-01-02 15:04:05Z")
	}
	f.AddDouble(series.NewDoubleSeries(series.Latitude, lat))
	f.AddDouble(series.NewDoubleSeries(series.Longitude, lon))
	f.AddDouble(series.NewDoubleSeries(series.AltMSL, msl))
	f.AddDouble(series.NewDoubleSeries(series.AltAGL, agl))
	f.AddString(series.NewStringSeries(series.UTCDateTime, utc))
	return f
}

func TestRateOfClosureTimestamps(t *testing.T) {
	const n = 40
	sep := func(k int) float64 { return 300 + 10*gomath.Abs(float64(k-20)) }

	tests := []struct {
		name string
		sec  func(k int) int
	}{
		{"1 Hz", func(k int) int { return k }},
		// Two samples per second with one-second timestamps.
		{"shared seconds", func(k int) int { return k / 2 }},
		{"gap", func(k int) int {
			if k < 20 {
				return k
			}
			return k + 30
		}},
	}
	for _, test := range tests {
		secs := make([]int, n)
		for k := range secs {
			secs[k] = test.sec(k)
		}
		a := trajectory(t, makeSampledFlight(t, 1, secs, func(int) sample {
			return sample{baseLat, baseLon, 3000, 2000}
		}))
		b := trajectory(t, makeSampledFlight(t, 2, secs, func(k int) sample {
			return sample{baseLat, baseLon + eastFt(sep(k)), 3000, 2000}
		}))

		enc := Encounter{Start1: 5, End1: n - 6, Start2: 5, End2: n - 6}
		roc, err := RateOfClosure(a, b, enc, 5)
		if err != nil {
			t.Fatalf("%s: %v", test.name, err)
		}
		if len(roc) != n-1 {
			t.Fatalf("%s: expected %d samples, got %d", test.name, n-1, len(roc))
		}
		for k, r := range roc {
			if gomath.IsNaN(r) || gomath.IsInf(r, 0) {
				t.Errorf("%s: sample %d not finite: %f", test.name, k, r)
			} else if want := sep(k) - sep(k+1); gomath.Abs(r-want) > 0.5 {
				t.Errorf("%s: sample %d: expected %f, got %f", test.name, k, want, r)
			}
		}
	}
}

func TestAddUnique(t *testing.T) {
	e := event.Event{FlightID: 1, OtherFlightID: 2, DefinitionID: DefinitionID,
		StartTime: t0, EndTime: t0.Add(10 * time.Second), Severity: 300}

	events := AddUnique(nil, e)
	events = AddUnique(events, e)
	if len(events) != 1 {
		t.Fatalf("expected duplicate to be dropped, got %d events", len(events))
	}

	// Same key with a different severity is still a duplicate.
	dup := e
	dup.Severity = 100
	if got := AddUnique(events, dup); len(got) != 1 || got[0].Severity != 300 {
		t.Errorf("expected list to be unchanged, got %v", got)
	}

	other := e
	other.EndTime = e.EndTime.Add(time.Second)
	if got := AddUnique(events, other); len(got) != 2 {
		t.Errorf("expected distinct event to be added, got %d", len(got))
	}
	swapped := e
	swapped.FlightID, swapped.OtherFlightID = 2, 1
	if got := AddUnique(events, swapped); len(got) != 2 {
		t.Errorf("expected the other flight's event to be added, got %d", len(got))
	}
}
