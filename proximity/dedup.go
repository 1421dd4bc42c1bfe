// proximity/dedup.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package proximity

import (
	"slices"

	"github.com/mmp/fdsafety/event"
)

// AddUnique appends e to events unless an event for the same flight,
// other flight and start and end times is already present.
func AddUnique(events []event.Event, e event.Event) []event.Event {
	dup := slices.ContainsFunc(events, func(o event.Event) bool {
		return o.FlightID == e.FlightID && o.OtherFlightID == e.OtherFlightID &&
			o.StartTime.Equal(e.StartTime) && o.EndTime.Equal(e.EndTime)
	})
	if dup {
		return events
	}
	return append(events, e)
}
