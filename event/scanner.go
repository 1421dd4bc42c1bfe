// event/scanner.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package event

import (
	"fmt"
	"log/slog"

	"github.com/mmp/fdsafety/log"
	"github.com/mmp/fdsafety/series"
)

// DefaultStartLine is the number of leading samples skipped while the
// recorder initializes.
const DefaultStartLine = 30

// Scanner runs one Definition over one flight at a time. It holds no
// state between calls to Scan.
type Scanner struct {
	Def       *Definition
	StartLine int
	Log       *log.Logger
}

func NewScanner(def *Definition, lg *log.Logger) *Scanner {
	return &Scanner{Def: def, StartLine: DefaultStartLine, Log: lg}
}

// Scan returns the events of the scanner's definition in f, in
// increasing start-line order. If f lacks a required column, the
// returned error wraps ErrMissingColumn and no events are returned.
func (s *Scanner) Scan(f *series.Flight) ([]Event, error) {
	doubles, strs := s.Def.RequiredColumns()
	if err := f.Require(doubles, strs); err != nil {
		return nil, fmt.Errorf("%s: %w", s.Def.Name, err)
	}

	switch s.Def.Kind {
	case KindHysteresis:
		return s.scanHysteresis(f)
	case KindLowEndingFuel:
		return s.scanLowEndingFuel(f)
	default:
		return nil, fmt.Errorf("%s: %w %q", s.Def.Name, ErrUnknownKind, s.Def.Kind)
	}
}

// span tracks the extent and running severity of an open event.
type span struct {
	start, end int
	severity   float64
}

func (s *Scanner) scanHysteresis(f *series.Flight) ([]Event, error) {
	pred, err := s.Def.Condition.Compile(f)
	if err != nil {
		return nil, err
	}
	sev, err := s.Def.Severity.compile(f)
	if err != nil {
		return nil, err
	}

	h := Hysteresis{StartBuffer: s.Def.StartBuffer, StopBuffer: s.Def.StopBuffer}
	var cur span
	var events []Event
	discarded := 0

	for line := max(s.StartLine, 0); line < f.Len(); line++ {
		switch h.Observe(pred(line)) {
		case Opened:
			cur = span{start: line, end: line, severity: sev.init(line)}
		case Extended:
			cur.end = line
			cur.severity = sev.update(cur.severity, line)
		case Closed:
			events = append(events, s.makeEvent(f, cur))
		case Discarded:
			discarded++
		}
	}
	if h.Flush() {
		events = append(events, s.makeEvent(f, cur))
	}

	s.Log.Debug("scanned flight", slog.Int64("flight", f.ID), slog.String("definition", s.Def.Name),
		slog.Int("events", len(events)), slog.Int("discarded", discarded))
	return events, nil
}

func (s *Scanner) makeEvent(f *series.Flight, sp span) Event {
	return Event{
		FlightID:     f.ID,
		DefinitionID: s.Def.ID,
		StartLine:    sp.start,
		EndLine:      sp.end,
		StartTime:    f.Time(sp.start),
		EndTime:      f.Time(sp.end),
		Severity:     sp.severity,
	}
}
