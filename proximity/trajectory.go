// proximity/trajectory.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package proximity finds periods where two recorded flights were within
// a three-dimensional separation envelope of each other.
package proximity

import (
	gomath "math"
	"time"

	"github.com/mmp/fdsafety/math"
	"github.com/mmp/fdsafety/series"
	"github.com/mmp/fdsafety/util"
)

// Trajectory is the per-flight working state for proximity scans.
type Trajectory struct {
	ID     int64
	Lat    []float64
	Lon    []float64
	AltMSL []float64
	AltAGL []float64
	// IAS is nil if the flight has no airspeed column.
	IAS   []float64
	UTC   []string
	Epoch []float64

	// Bounds holds longitude in [0] and latitude in [1].
	Bounds   math.Extent2D
	MinAlt   float64
	MaxAlt   float64
	Interval util.TimeInterval
}

// RequiredColumns lists the numeric columns a flight needs for proximity
// analysis; UTCDateTime is also required.
var RequiredColumns = []string{series.Latitude, series.Longitude, series.AltMSL, series.AltAGL}

// NewTrajectory extracts the proximity working state from f. It returns
// false if f lacks a required column or has no valid position, altitude
// or time samples; such flights are skipped rather than reported.
func NewTrajectory(f *series.Flight) (*Trajectory, bool) {
	if f.Require(RequiredColumns, []string{series.UTCDateTime}) != nil {
		return nil, false
	}

	t := &Trajectory{
		ID:       f.ID,
		Lat:      f.Double(series.Latitude).Data,
		Lon:      f.Double(series.Longitude).Data,
		AltMSL:   f.Double(series.AltMSL).Data,
		AltAGL:   f.Double(series.AltAGL).Data,
		UTC:      f.String(series.UTCDateTime).Data,
		Epoch:    f.Epoch().Data,
		Bounds:   math.EmptyExtent2D(),
		MinAlt:   gomath.Inf(1),
		MaxAlt:   gomath.Inf(-1),
		Interval: f.Interval(),
	}
	if ias := f.Double(series.IAS); ias != nil {
		t.IAS = ias.Data
	}

	for i := range t.Lat {
		if i < len(t.Lon) && math.ValidLatLong(t.Lat[i], t.Lon[i]) {
			t.Bounds = math.Union(t.Bounds, [2]float64{t.Lon[i], t.Lat[i]})
		}
	}
	for _, alt := range t.AltMSL {
		if !gomath.IsNaN(alt) {
			t.MinAlt = min(t.MinAlt, alt)
			t.MaxAlt = max(t.MaxAlt, alt)
		}
	}

	if t.Bounds.IsEmpty() || t.MinAlt > t.MaxAlt || t.Interval.IsZero() {
		return nil, false
	}
	return t, true
}

// Len returns the number of lines that have every per-sample value.
func (t *Trajectory) Len() int {
	return min(len(t.Lat), len(t.Lon), len(t.AltMSL), len(t.AltAGL), len(t.Epoch))
}

// epochAt returns the sample's epoch seconds, or false if it is missing.
// A zero epoch is treated as missing.
func (t *Trajectory) epochAt(i int) (float64, bool) {
	e := t.Epoch[i]
	return e, !gomath.IsNaN(e) && e != 0
}

// Time returns the UTC time of line i.
func (t *Trajectory) Time(i int) time.Time {
	if i < len(t.UTC) {
		if tm, ok := series.ParseUTC(t.UTC[i]); ok {
			return tm
		}
	}
	if e, ok := t.epochAt(i); ok {
		return time.Unix(int64(e), 0).UTC()
	}
	return time.Time{}
}

// Speed returns the indicated airspeed at line i, or NaN if unknown.
func (t *Trajectory) Speed(i int) float64 {
	if i < len(t.IAS) {
		return t.IAS[i]
	}
	return gomath.NaN()
}
