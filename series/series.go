// series/series.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package series holds the per-column time series that make up one
// recorded flight. Line numbers are shared by every column of a flight.
package series

import (
	gomath "math"
)

// Column names produced by the ingestion pipeline.
const (
	Latitude    = "Latitude"
	Longitude   = "Longitude"
	AltMSL      = "AltMSL"
	AltAGL      = "AltAGL"
	IAS         = "IAS"
	Pitch       = "Pitch"
	Roll        = "Roll"
	NormAc      = "NormAc"
	LatAc       = "LatAc"
	VSpd        = "VSpd"
	E1CHT1      = "E1 CHT1"
	E1OilP      = "E1 OilP"
	E1RPM       = "E1 RPM"
	TotalFuel   = "Total Fuel"
	UTCDateTime = "UTC Date Time"
	UTCEpoch    = "UTC Epoch"

	NearestAirport  = "NearestAirport"
	AirportDistance = "AirportDistance"
	NearestRunway   = "NearestRunway"
	RunwayDistance  = "RunwayDistance"
)

// DoubleSeries is a numeric column; NaN marks a missing sample.
type DoubleSeries struct {
	Name string
	Data []float64
}

func NewDoubleSeries(name string, data []float64) *DoubleSeries {
	return &DoubleSeries{Name: name, Data: data}
}

func (s *DoubleSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Data)
}

// At returns the sample at line i, or NaN if i is out of range.
func (s *DoubleSeries) At(i int) float64 {
	if s == nil || i < 0 || i >= len(s.Data) {
		return gomath.NaN()
	}
	return s.Data[i]
}

func (s *DoubleSeries) Valid(i int) bool {
	return !gomath.IsNaN(s.At(i))
}

func (s *DoubleSeries) ValidCount() int {
	n := 0
	for _, v := range s.Data {
		if !gomath.IsNaN(v) {
			n++
		}
	}
	return n
}

// Min returns the smallest valid sample and false if there are none.
func (s *DoubleSeries) Min() (float64, bool) {
	m, ok := gomath.Inf(1), false
	for _, v := range s.Data {
		if !gomath.IsNaN(v) && v < m {
			m, ok = v, true
		}
	}
	return m, ok
}

func (s *DoubleSeries) Max() (float64, bool) {
	m, ok := gomath.Inf(-1), false
	for _, v := range s.Data {
		if !gomath.IsNaN(v) && v > m {
			m, ok = v, true
		}
	}
	return m, ok
}

// Avg returns the mean of the valid samples, or NaN if there are none.
func (s *DoubleSeries) Avg() float64 {
	sum, n := 0.0, 0
	for _, v := range s.Data {
		if !gomath.IsNaN(v) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return gomath.NaN()
	}
	return sum / float64(n)
}

// LastValidIndex returns the index of the last non-NaN sample or -1.
func (s *DoubleSeries) LastValidIndex() int {
	for i := s.Len() - 1; i >= 0; i-- {
		if !gomath.IsNaN(s.Data[i]) {
			return i
		}
	}
	return -1
}

// StringSeries is a string column; "" marks a missing sample.
type StringSeries struct {
	Name string
	Data []string
}

func NewStringSeries(name string, data []string) *StringSeries {
	return &StringSeries{Name: name, Data: data}
}

func (s *StringSeries) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Data)
}

func (s *StringSeries) At(i int) string {
	if s == nil || i < 0 || i >= len(s.Data) {
		return ""
	}
	return s.Data[i]
}
