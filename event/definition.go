// event/definition.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package event

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/mmp/fdsafety/series"

	"github.com/brunoga/deep"
)

// Kind selects the detection algorithm for a Definition.
type Kind string

const (
	KindHysteresis    Kind = "hysteresis"
	KindLowEndingFuel Kind = "low_ending_fuel"
)

// AnyAirframe is the airframe of definitions that apply to every flight.
const AnyAirframe = ""

// Definition describes one kind of event. For KindLowEndingFuel,
// Condition and Severity are unused; Threshold gives the fuel quantity
// below which the trailing WindowSeconds average triggers an event.
type Definition struct {
	ID            int          `json:"id"`
	Name          string       `json:"name"`
	Airframe      string       `json:"airframe,omitempty"`
	Kind          Kind         `json:"kind"`
	StartBuffer   int          `json:"start_buffer"`
	StopBuffer    int          `json:"stop_buffer"`
	Condition     Condition    `json:"condition"`
	Severity      SeverityRule `json:"severity"`
	Threshold     *float64     `json:"threshold,omitempty"`
	WindowSeconds float64      `json:"window_seconds,omitempty"`
}

// RequiredColumns returns the numeric and string columns a flight must
// have for the definition to be evaluated.
func (d *Definition) RequiredColumns() (doubles, strs []string) {
	switch d.Kind {
	case KindLowEndingFuel:
		doubles = []string{series.TotalFuel}
	default:
		doubles = append(d.Condition.Columns(), d.Severity.Columns...)
		slices.Sort(doubles)
		doubles = slices.Compact(doubles)
	}
	return doubles, []string{series.UTCDateTime}
}

func (d *Definition) Validate() error {
	switch d.Kind {
	case KindHysteresis:
		if d.StartBuffer < 1 || d.StopBuffer < 1 {
			return fmt.Errorf("%s: buffers must be positive (start %d, stop %d)", d.Name, d.StartBuffer, d.StopBuffer)
		}
		if err := d.Condition.Validate(); err != nil {
			return fmt.Errorf("%s: %w", d.Name, err)
		}
		if err := d.Severity.Validate(); err != nil {
			return fmt.Errorf("%s: %w", d.Name, err)
		}
	case KindLowEndingFuel:
		if d.WindowSeconds <= 0 {
			return fmt.Errorf("%s: window must be positive", d.Name)
		}
	default:
		return fmt.Errorf("%s: %w %q", d.Name, ErrUnknownKind, d.Kind)
	}
	return nil
}

// Key identifies a definition within a Table.
type Key struct {
	Airframe string
	Name     string
}

// Table holds event definitions keyed by airframe and name.
type Table map[Key]Definition

func NewTable(defs ...Definition) (Table, error) {
	t := make(Table)
	for _, d := range defs {
		if err := t.Add(d); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (t Table) Add(d Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}
	k := Key{Airframe: d.Airframe, Name: d.Name}
	if _, ok := t[k]; ok {
		return fmt.Errorf("%w: %q for airframe %q", ErrDuplicateDefinition, d.Name, d.Airframe)
	}
	t[k] = d
	return nil
}

// For returns the definitions that apply to the given airframe: those
// specific to it plus generic ones it does not override, sorted by ID.
func (t Table) For(airframe string) []Definition {
	var defs []Definition
	for k, d := range t {
		if k.Airframe == airframe {
			defs = append(defs, d)
		} else if k.Airframe == AnyAirframe {
			if _, ok := t[Key{Airframe: airframe, Name: k.Name}]; !ok {
				defs = append(defs, d)
			}
		}
	}
	slices.SortFunc(defs, func(a, b Definition) int {
		return cmp.Or(cmp.Compare(a.ID, b.ID), cmp.Compare(a.Airframe, b.Airframe))
	})
	return defs
}

// Names returns the name of every definition in the table, generic or
// airframe-specific, by ID.
func (t Table) Names() map[int]string {
	names := make(map[int]string)
	for _, d := range t {
		names[d.ID] = d.Name
	}
	return names
}

// Override adjusts the thresholds or buffers of an existing definition.
// Unset fields are left alone.
type Override struct {
	Airframe    string        `json:"airframe,omitempty"`
	Name        string        `json:"name"`
	StartBuffer *int          `json:"start_buffer,omitempty"`
	StopBuffer  *int          `json:"stop_buffer,omitempty"`
	Condition   *Condition    `json:"condition,omitempty"`
	Severity    *SeverityRule `json:"severity,omitempty"`
	Threshold   *float64      `json:"threshold,omitempty"`
}

// Apply returns a copy of the table with the overrides applied; t itself
// is not modified.
func (t Table) Apply(overrides []Override) (Table, error) {
	nt := deep.MustCopy(t)

	for _, o := range overrides {
		k := Key{Airframe: o.Airframe, Name: o.Name}
		d, ok := nt[k]
		if !ok {
			return nil, fmt.Errorf("%w: %q for airframe %q", ErrUnknownDefinition, o.Name, o.Airframe)
		}
		if o.StartBuffer != nil {
			d.StartBuffer = *o.StartBuffer
		}
		if o.StopBuffer != nil {
			d.StopBuffer = *o.StopBuffer
		}
		if o.Condition != nil {
			d.Condition = *o.Condition
		}
		if o.Severity != nil {
			d.Severity = *o.Severity
		}
		if o.Threshold != nil {
			th := *o.Threshold
			d.Threshold = &th
		}
		if err := d.Validate(); err != nil {
			return nil, err
		}
		nt[k] = d
	}
	return nt, nil
}

func threshold(v float64) *float64 {
	return &v
}

// Airframe names as recorded by the ingestion pipeline.
const (
	Cessna172 = "Cessna 172S"
	PA28      = "PA-28-181"
	PA44      = "PA-44-180"
	SR20      = "Cirrus SR20"
)

// Definition IDs of the built-in table.
const (
	PitchID = iota + 1
	RollID
	VerticalAccelerationID
	LateralAccelerationID
	CombinedAccelerationID
	HighCHTID
	LowOilPressureID
	VSIOnFinalID
	LowAirspeedOnApproachID
	VNEExceededID
	HighAltitudeID
	LowEndingFuelID
)

// DefaultTable returns the built-in event definitions. The literal limits
// are carried over from the legacy detectors and still need review by a
// domain expert; deployments should adjust them with Apply.
func DefaultTable() Table {
	defs := []Definition{
		{
			ID: PitchID, Name: "Pitch", Kind: KindHysteresis,
			StartBuffer: 1, StopBuffer: 14,
			Condition: Any(Rule(series.Pitch, GT, 30), Rule(series.Pitch, LT, -30)),
			Severity:  SeverityRule{Kind: MaxAbs, Columns: []string{series.Pitch}},
		},
		{
			ID: RollID, Name: "Roll", Kind: KindHysteresis,
			StartBuffer: 1, StopBuffer: 14,
			Condition: Rule(series.Roll, AbsGT, 60),
			Severity:  SeverityRule{Kind: MaxAbs, Columns: []string{series.Roll}},
		},
		{
			ID: VerticalAccelerationID, Name: "Vertical Acceleration", Kind: KindHysteresis,
			StartBuffer: 1, StopBuffer: 5,
			Condition: Any(Rule(series.NormAc, GE, 2.2), Rule(series.NormAc, LE, -0.95)),
			Severity:  SeverityRule{Kind: MaxAbs, Columns: []string{series.NormAc}},
		},
		{
			ID: LateralAccelerationID, Name: "Lateral Acceleration", Kind: KindHysteresis,
			StartBuffer: 1, StopBuffer: 5,
			Condition: Rule(series.LatAc, AbsGT, 0.3),
			Severity:  SeverityRule{Kind: MaxAbs, Columns: []string{series.LatAc}},
		},
		{
			ID: CombinedAccelerationID, Name: "Combined Acceleration", Kind: KindHysteresis,
			StartBuffer: 1, StopBuffer: 5,
			Condition: Any(Rule(series.NormAc, GE, 2.5), Rule(series.LatAc, AbsGT, 0.5)),
			Severity:  SeverityRule{Kind: Euclidean, Columns: []string{series.NormAc, series.LatAc}},
		},
		{
			ID: HighCHTID, Name: "High CHT", Kind: KindHysteresis,
			StartBuffer: 5, StopBuffer: 15,
			Condition: Rule(series.E1CHT1, GT, 500),
			Severity:  SeverityRule{Kind: Max, Columns: []string{series.E1CHT1}},
		},
		{
			ID: LowOilPressureID, Name: "Low Oil Pressure", Kind: KindHysteresis,
			StartBuffer: 5, StopBuffer: 15,
			Condition: All(Rule(series.E1OilP, LT, 20), Rule(series.E1RPM, GT, 100)),
			Severity:  SeverityRule{Kind: Min, Columns: []string{series.E1OilP}},
		},
		{
			ID: VSIOnFinalID, Name: "VSI on Final", Kind: KindHysteresis,
			StartBuffer: 3, StopBuffer: 10,
			Condition: All(Rule(series.VSpd, LT, -1500), Rule(series.AltAGL, LE, 1000), Rule(series.AltAGL, GE, 50)),
			Severity:  SeverityRule{Kind: MaxAbs, Columns: []string{series.VSpd}},
		},
		{
			ID: VNEExceededID, Name: "Vne Exceeded", Kind: KindHysteresis,
			StartBuffer: 1, StopBuffer: 10,
			Condition: Rule(series.IAS, GT, 163),
			Severity:  SeverityRule{Kind: Max, Columns: []string{series.IAS}},
		},
		{
			ID: HighAltitudeID, Name: "High Altitude", Kind: KindHysteresis,
			StartBuffer: 10, StopBuffer: 30,
			Condition: Rule(series.AltMSL, GT, 12800),
			Severity:  SeverityRule{Kind: Max, Columns: []string{series.AltMSL}},
		},
		{
			ID: LowEndingFuelID, Name: "Low Ending Fuel", Kind: KindLowEndingFuel,
			WindowSeconds: 15,
		},
	}

	lowAirspeed := func(airframe string, vref float64) Definition {
		return Definition{
			ID: LowAirspeedOnApproachID, Name: "Low Airspeed on Approach", Airframe: airframe, Kind: KindHysteresis,
			StartBuffer: 3, StopBuffer: 10,
			Condition: All(Rule(series.IAS, LT, vref), Rule(series.AltAGL, GE, 100), Rule(series.AltAGL, LE, 500),
				Rule(series.VSpd, LT, -200)),
			Severity: SeverityRule{Kind: MaxDeviation, Columns: []string{series.IAS}, Reference: vref},
		}
	}
	fuel := func(airframe string, gal float64) Definition {
		return Definition{
			ID: LowEndingFuelID, Name: "Low Ending Fuel", Airframe: airframe, Kind: KindLowEndingFuel,
			Threshold: threshold(gal), WindowSeconds: 15,
		}
	}

	defs = append(defs,
		lowAirspeed(Cessna172, 57), lowAirspeed(PA28, 56), lowAirspeed(PA44, 66), lowAirspeed(SR20, 71),
		fuel(Cessna172, 8.25), fuel(PA28, 8.25), fuel(PA44, 17.56), fuel(SR20, 8.0),
		Definition{
			ID: VNEExceededID, Name: "Vne Exceeded", Airframe: PA28, Kind: KindHysteresis,
			StartBuffer: 1, StopBuffer: 10,
			Condition: Rule(series.IAS, GT, 154),
			Severity:  SeverityRule{Kind: Max, Columns: []string{series.IAS}},
		},
		Definition{
			ID: VNEExceededID, Name: "Vne Exceeded", Airframe: SR20, Kind: KindHysteresis,
			StartBuffer: 1, StopBuffer: 10,
			Condition: Rule(series.IAS, GT, 200),
			Severity:  SeverityRule{Kind: Max, Columns: []string{series.IAS}},
		})

	t, err := NewTable(defs...)
	if err != nil {
		panic(err)
	}
	return t
}
