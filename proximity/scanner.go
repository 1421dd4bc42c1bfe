// proximity/scanner.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package proximity

import (
	"errors"
	"log/slog"
	"slices"

	"github.com/mmp/fdsafety/event"
	"github.com/mmp/fdsafety/log"
	"github.com/mmp/fdsafety/math"
)

// DefinitionID is the definition id given to proximity events.
const DefinitionID = -1

// Scanner compares pairs of trajectories. The zero value is not useful;
// use NewScanner.
type Scanner struct {
	// StartLine samples are skipped at the start of each flight.
	StartLine   int
	StartBuffer int
	StopBuffer  int
	// Samples are close if their 3D separation is below MaxDistanceFt
	// and both aircraft are at least MinAGLFt above the ground.
	MaxDistanceFt float64
	MinAGLFt      float64
	// BoxBufferDeg expands each flight's bounding box before the
	// overlap prefilter.
	BoxBufferDeg float64
	// ClosureShift is the number of samples the rate-of-closure window
	// extends beyond each side of an encounter.
	ClosureShift int

	Log *log.Logger
}

func NewScanner(lg *log.Logger) *Scanner {
	return &Scanner{
		StartLine:     event.DefaultStartLine,
		StartBuffer:   1,
		StopBuffer:    30,
		MaxDistanceFt: 1000,
		MinAGLFt:      50,
		BoxBufferDeg:  0.003,
		ClosureShift:  5,
		Log:           lg,
	}
}

// Encounter is a confirmed span of close samples between two flights.
// Lines with suffix 1 index the first flight and 2 the second.
type Encounter struct {
	Start1, End1  int
	Start2, End2  int
	MinDistanceFt float64
	LateralFt     float64
	VerticalFt    float64
}

// Candidate reports whether b should be compared against a. Each pair
// is considered only once, from the flight with the lower id.
func (s *Scanner) Candidate(a, b *Trajectory) bool {
	if a == nil || b == nil || b.ID <= a.ID {
		return false
	}
	return math.Overlaps(a.Bounds.Expand(s.BoxBufferDeg), b.Bounds.Expand(s.BoxBufferDeg))
}

// Encounters walks both trajectories in time order and returns the
// confirmed spans during which they were close.
func (s *Scanner) Encounters(a, b *Trajectory) []Encounter {
	h := event.Hysteresis{StartBuffer: s.StartBuffer, StopBuffer: s.StopBuffer}
	var cur Encounter
	var encounters []Encounter

	i, j := max(s.StartLine, 0), max(s.StartLine, 0)
	na, nb := a.Len(), b.Len()
	for i < na && j < nb {
		ta, oka := a.epochAt(i)
		tb, okb := b.epochAt(j)
		if !oka || (okb && ta < tb) {
			i++
			continue
		}
		if !okb || tb < ta {
			j++
			continue
		}

		dist, lateral, vertical := math.Distance3DFt(a.Lat[i], a.Lon[i], a.AltMSL[i], b.Lat[j], b.Lon[j], b.AltMSL[j])
		near := dist < s.MaxDistanceFt && a.AltAGL[i] >= s.MinAGLFt && b.AltAGL[j] >= s.MinAGLFt

		switch h.Observe(near) {
		case event.Opened:
			cur = Encounter{Start1: i, End1: i, Start2: j, End2: j,
				MinDistanceFt: dist, LateralFt: lateral, VerticalFt: vertical}
		case event.Extended:
			cur.End1, cur.End2 = i, j
			if dist < cur.MinDistanceFt {
				cur.MinDistanceFt, cur.LateralFt, cur.VerticalFt = dist, lateral, vertical
			}
		case event.Closed:
			encounters = append(encounters, cur)
		}
		i++
		j++
	}
	if h.Flush() {
		encounters = append(encounters, cur)
	}
	return encounters
}

// Scan returns a linked pair of events for each encounter between a and
// b: one owned by each flight and referencing the other.
func (s *Scanner) Scan(a, b *Trajectory) []event.Event {
	var events []event.Event
	for _, enc := range s.Encounters(a, b) {
		roc, err := RateOfClosure(a, b, enc, s.ClosureShift)
		if err != nil {
			var cwe *ClosureWindowError
			if errors.As(err, &cwe) {
				s.Log.Warn("rate of closure window truncated", slog.Int64("flight", a.ID),
					slog.Int64("other_flight", b.ID), slog.Int("want", cwe.Want),
					slog.Int("before", cwe.Before), slog.Int("after", cwe.After))
			} else {
				s.Log.Warn("rate of closure", slog.Any("error", err))
			}
		}

		ea := event.Event{
			FlightID:      a.ID,
			OtherFlightID: b.ID,
			DefinitionID:  DefinitionID,
			StartLine:     enc.Start1,
			EndLine:       enc.End1,
			StartTime:     a.Time(enc.Start1),
			EndTime:       a.Time(enc.End1),
			Severity:      enc.MinDistanceFt,
			RateOfClosure: roc,
		}
		eb := event.Event{
			FlightID:      b.ID,
			OtherFlightID: a.ID,
			DefinitionID:  DefinitionID,
			StartLine:     enc.Start2,
			EndLine:       enc.End2,
			StartTime:     b.Time(enc.Start2),
			EndTime:       b.Time(enc.End2),
			Severity:      enc.MinDistanceFt,
			RateOfClosure: slices.Clone(roc),
		}
		for _, e := range []*event.Event{&ea, &eb} {
			e.AddMetadata(event.LateralDistance, enc.LateralFt)
			e.AddMetadata(event.VerticalDistance, enc.VerticalFt)
		}

		s.Log.Info("proximity event", slog.Int64("flight", a.ID), slog.Int64("other_flight", b.ID),
			slog.Float64("distance_ft", enc.MinDistanceFt), slog.Float64("speed", a.Speed(enc.Start1)))

		events = AddUnique(events, ea)
		events = AddUnique(events, eb)
	}
	return events
}

// ScanCandidates compares t against each of the candidate flights that
// pass the prefilter and returns the deduplicated events.
func (s *Scanner) ScanCandidates(t *Trajectory, candidates []*Trajectory) []event.Event {
	var events []event.Event
	for _, c := range candidates {
		if !s.Candidate(t, c) {
			continue
		}
		for _, e := range s.Scan(t, c) {
			events = AddUnique(events, e)
		}
	}
	return events
}

// separation returns the 3D distance between line i of a and line j of
// b; it is NaN if either position is missing.
func separation(a, b *Trajectory, i, j int) float64 {
	d, _, _ := math.Distance3DFt(a.Lat[i], a.Lon[i], a.AltMSL[i], b.Lat[j], b.Lon[j], b.AltMSL[j])
	return d
}
