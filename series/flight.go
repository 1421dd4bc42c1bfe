// series/flight.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package series

import (
	gomath "math"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/mmp/fdsafety/util"
)

// Flight is one recorded flight: a set of numeric and string columns
// sharing line numbers.
type Flight struct {
	ID       int64
	FleetID  int64
	Airframe string
	Doubles  map[string]*DoubleSeries
	Strings  map[string]*StringSeries

	epochOnce sync.Once
	epoch     *DoubleSeries
}

func NewFlight(id int64, airframe string) *Flight {
	return &Flight{
		ID:       id,
		Airframe: airframe,
		Doubles:  make(map[string]*DoubleSeries),
		Strings:  make(map[string]*StringSeries),
	}
}

func (f *Flight) AddDouble(s *DoubleSeries) {
	f.Doubles[s.Name] = s
}

func (f *Flight) AddString(s *StringSeries) {
	f.Strings[s.Name] = s
}

// Double returns the named numeric column or nil.
func (f *Flight) Double(name string) *DoubleSeries {
	return f.Doubles[name]
}

func (f *Flight) String(name string) *StringSeries {
	return f.Strings[name]
}

// Len returns the number of lines; it is the longest column if the
// ingestion pipeline produced uneven columns.
func (f *Flight) Len() int {
	n := 0
	for _, s := range f.Doubles {
		n = max(n, s.Len())
	}
	for _, s := range f.Strings {
		n = max(n, s.Len())
	}
	return n
}

// Require checks that every named column is present, returning a
// *MissingColumnError naming all that are absent.
func (f *Flight) Require(doubles, strs []string) error {
	var missing []string
	for _, name := range doubles {
		if _, ok := f.Doubles[name]; !ok {
			missing = append(missing, name)
		}
	}
	for _, name := range strs {
		if _, ok := f.Strings[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return &MissingColumnError{FlightID: f.ID, Columns: slices.Compact(missing)}
	}
	return nil
}

// Epoch returns the flight's UTC epoch-seconds column. A recorded
// UTCEpoch column is used directly; otherwise it is derived from
// UTCDateTime. The result is computed once and nil if neither exists.
func (f *Flight) Epoch() *DoubleSeries {
	f.epochOnce.Do(func() {
		if s, ok := f.Doubles[UTCEpoch]; ok {
			f.epoch = s
		} else if s, ok := f.Strings[UTCDateTime]; ok {
			f.epoch = EpochSeconds(s)
		}
	})
	return f.epoch
}

// Time returns the UTC timestamp of line i, or the zero time if it is
// unknown.
func (f *Flight) Time(i int) time.Time {
	if s, ok := f.Strings[UTCDateTime]; ok {
		if t, ok := ParseUTC(s.At(i)); ok {
			return t
		}
	}
	if e := f.Epoch(); e.Valid(i) {
		sec, frac := gomath.Modf(e.At(i))
		return time.Unix(int64(sec), int64(frac*1e9)).UTC()
	}
	return time.Time{}
}

// Interval returns the span between the first and last valid epoch
// samples; it is zero if the flight has no timing information.
func (f *Flight) Interval() util.TimeInterval {
	e := f.Epoch()
	first := -1
	for i := 0; i < e.Len(); i++ {
		if e.Valid(i) {
			first = i
			break
		}
	}
	last := e.LastValidIndex()
	if first == -1 || last == -1 {
		return util.TimeInterval{}
	}
	return util.TimeInterval{f.Time(first), f.Time(last)}
}

var utcLayouts = []string{
	"2006-01-02 15:04:05Z",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	"2006-01-02 15:04:05",
}

// ParseUTC parses a recorder timestamp in any of the supported layouts.
func ParseUTC(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range utcLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// EpochSeconds converts a UTC timestamp column to seconds since the Unix
// epoch. Unparseable samples become NaN.
func EpochSeconds(utc *StringSeries) *DoubleSeries {
	data := make([]float64, utc.Len())
	for i := range data {
		if t, ok := ParseUTC(utc.At(i)); ok {
			data[i] = float64(t.Unix())
		} else {
			data[i] = gomath.NaN()
		}
	}
	return NewDoubleSeries(UTCEpoch, data)
}
