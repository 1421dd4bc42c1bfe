// event/event.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package event detects exceedance events in recorded flights using a
// start/stop buffered hysteresis over data-driven conditions.
package event

import (
	"fmt"
	"time"
)

// Event is a detected span of a flight. OtherFlightID is zero except for
// events that involve a second aircraft.
type Event struct {
	ID            int64
	FlightID      int64
	OtherFlightID int64
	DefinitionID  int
	StartLine     int
	EndLine       int
	StartTime     time.Time
	EndTime       time.Time
	Severity      float64
	Metadata      []Metadata
	RateOfClosure []float64
}

// Metadata is a named value attached to an event after detection.
type Metadata struct {
	Name  string
	Value float64
}

// Metadata names used for proximity events.
const (
	LateralDistance  = "lateral_distance"
	VerticalDistance = "vertical_distance"
)

func (e *Event) AddMetadata(name string, value float64) {
	e.Metadata = append(e.Metadata, Metadata{Name: name, Value: value})
}

// MetadataValue returns the named metadata value, if present.
func (e *Event) MetadataValue(name string) (float64, bool) {
	for _, m := range e.Metadata {
		if m.Name == name {
			return m.Value, true
		}
	}
	return 0, false
}

func (e Event) Duration() time.Duration {
	return e.EndTime.Sub(e.StartTime)
}

func (e Event) String() string {
	s := fmt.Sprintf("flight %d def %d lines %d-%d [%s, %s] severity %.2f", e.FlightID, e.DefinitionID,
		e.StartLine, e.EndLine, e.StartTime.Format(time.RFC3339), e.EndTime.Format(time.RFC3339), e.Severity)
	if e.OtherFlightID != 0 {
		s += fmt.Sprintf(" other %d", e.OtherFlightID)
	}
	return s
}
