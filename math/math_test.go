// math/math_test.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
	"testing"
)

func TestHaversine(t *testing.T) {
	// One degree of latitude on a 6371km sphere.
	oneDeg := 2 * gomath.Pi * EarthRadiusKm / 360

	for _, c := range []struct {
		lat1, lon1, lat2, lon2 float64
		km                     float64
	}{
		{0, 0, 0, 0, 0},
		{40, -75, 41, -75, oneDeg},
		{0, 10, 0, 11, oneDeg}, // along the equator
		{-10, 20, -11, 20, oneDeg},
	} {
		d := HaversineKm(c.lat1, c.lon1, c.lat2, c.lon2)
		if Abs(d-c.km) > 1e-6 {
			t.Errorf("HaversineKm(%v, %v, %v, %v) = %v, expected %v", c.lat1, c.lon1, c.lat2, c.lon2, d, c.km)
		}
		if ft := HaversineFt(c.lat1, c.lon1, c.lat2, c.lon2); Abs(ft-d*KmToFeet) > 1e-6 {
			t.Errorf("HaversineFt = %v, expected %v", ft, d*KmToFeet)
		}
		if m := HaversineM(c.lat1, c.lon1, c.lat2, c.lon2); Abs(m-d*1000) > 1e-6 {
			t.Errorf("HaversineM = %v, expected %v", m, d*1000)
		}
	}

	// Symmetry
	a := HaversineFt(40.1, -75.2, 40.3, -74.9)
	b := HaversineFt(40.3, -74.9, 40.1, -75.2)
	if Abs(a-b) > 1e-9 {
		t.Errorf("distance not symmetric: %v vs %v", a, b)
	}
}

func TestDistance3D(t *testing.T) {
	d, lat, vert := Distance3DFt(40, -75, 1000, 40, -75, 1300)
	if lat != 0 || vert != 300 || d != 300 {
		t.Errorf("got (%v, %v, %v), expected (300, 0, 300)", d, lat, vert)
	}

	d, lat, vert = Distance3DFt(40, -75, 1000, 40.001, -75, 1000)
	if vert != 0 || d != lat || lat < 360 || lat > 370 {
		t.Errorf("got (%v, %v, %v), expected ~365ft lateral only", d, lat, vert)
	}
}

func TestValidLatLong(t *testing.T) {
	for _, c := range []struct {
		lat, lon float64
		ok       bool
	}{
		{0, 0, true},
		{90, 180, true},
		{-90, -180, true},
		{90.01, 0, false},
		{0, -180.5, false},
		{gomath.NaN(), 0, false},
		{0, gomath.Inf(1), false},
	} {
		if v := ValidLatLong(c.lat, c.lon); v != c.ok {
			t.Errorf("ValidLatLong(%v, %v) = %v, expected %v", c.lat, c.lon, v, c.ok)
		}
	}
}

func TestExtent(t *testing.T) {
	e := Extent2DFromP2LLs([]Point2LL{{-75, 40}, {-74.5, 40.2}, {-74.8, 39.9}})
	if e.P0 != [2]float64{-75, 39.9} || e.P1 != [2]float64{-74.5, 40.2} {
		t.Errorf("unexpected extent %+v", e)
	}

	other := Extent2D{P0: [2]float64{-74.499, 40.201}, P1: [2]float64{-74, 41}}
	if Overlaps(e, other) {
		t.Errorf("extents should not overlap")
	}
	if !Overlaps(e.Expand(0.003), other) {
		t.Errorf("expanded extents should overlap")
	}
	if !EmptyExtent2D().IsEmpty() || e.IsEmpty() {
		t.Errorf("IsEmpty mismatch")
	}
}

func TestPointSegmentDistance(t *testing.T) {
	for _, c := range []struct {
		p, v, w [2]float64
		d       float64
	}{
		{[2]float64{0, 1}, [2]float64{-1, 0}, [2]float64{1, 0}, 1},  // perpendicular
		{[2]float64{3, 4}, [2]float64{-1, 0}, [2]float64{0, 0}, 5},  // clamped to endpoint
		{[2]float64{2, 0}, [2]float64{1, 1}, [2]float64{1, 1}, gomath.Sqrt2}, // degenerate segment
		{[2]float64{0.5, 0}, [2]float64{0, 0}, [2]float64{1, 0}, 0}, // on segment
	} {
		if d := PointSegmentDistance(c.p, c.v, c.w); Abs(d-c.d) > 1e-9 {
			t.Errorf("PointSegmentDistance(%v, %v, %v) = %v, expected %v", c.p, c.v, c.w, d, c.d)
		}
	}
}

func TestPointSegmentDistanceFt(t *testing.T) {
	// A north-south segment; a point due east of its middle.
	v, w := Point2LL{-75, 40}, Point2LL{-75, 40.01}
	p := Point2LL{-74.99, 40.005}
	d := PointSegmentDistanceFt(p, v, w)
	expected := DistanceFt(p, Point2LL{-75, 40.005})
	if Abs(d-expected) > 1 {
		t.Errorf("got %v, expected %v", d, expected)
	}

	// Past the end of the segment: distance to the endpoint.
	p = Point2LL{-75, 40.02}
	if d := PointSegmentDistanceFt(p, v, w); Abs(d-DistanceFt(p, w)) > 1e-6 {
		t.Errorf("got %v, expected %v", d, DistanceFt(p, w))
	}
}

func TestRound(t *testing.T) {
	for _, c := range []struct{ v, r float64 }{
		{40.123, 40.12}, {40.125001, 40.13}, {-73.456, -73.46}, {-0.001, 0},
	} {
		if r := Round(c.v, 2); Abs(r-c.r) > 1e-12 {
			t.Errorf("Round(%v) = %v, expected %v", c.v, r, c.r)
		}
	}
}
