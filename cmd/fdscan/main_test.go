// cmd/fdscan/main_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/mmp/fdsafety/event"
	"github.com/mmp/fdsafety/scan"
)

func TestPrintSummaryAirframeDefinitions(t *testing.T) {
	r := scan.NewRunner(event.DefaultTable(), nil)
	s := &scan.Summary{
		Flights: 1,
		Events: []event.Event{
			{FlightID: 1, DefinitionID: event.LowAirspeedOnApproachID},
			{FlightID: 1, DefinitionID: event.PitchID},
			{FlightID: 1, DefinitionID: event.PitchID},
		},
	}

	var buf bytes.Buffer
	if err := printSummary(&buf, s, r); err != nil {
		t.Fatal(err)
	}

	var out struct {
		Events       int            `json:"events"`
		ByDefinition map[string]int `json:"events_by_definition"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("%s: %v", buf.String(), err)
	}
	if out.Events != 3 {
		t.Errorf("expected 3 events, got %d", out.Events)
	}
	if n := out.ByDefinition["Low Airspeed on Approach"]; n != 1 {
		t.Errorf("expected 1 low airspeed event, got %d in %s", n, buf.String())
	}
	if n := out.ByDefinition["Pitch"]; n != 2 {
		t.Errorf("expected 2 pitch events, got %d", n)
	}
	if _, ok := out.ByDefinition["Proximity"]; !ok {
		t.Errorf("expected proximity count in %s", buf.String())
	}
}
