// math/latlong.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
)

const (
	// EarthRadiusKm is the mean radius used by the spherical-Earth
	// distance approximations.
	EarthRadiusKm = 6371.0

	FeetPerMeter = 3.28084
	KmToFeet     = 1000 * FeetPerMeter

	NauticalMilesToFeet = 6076.12
)

///////////////////////////////////////////////////////////////////////////
// Point2LL

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float64

func (p Point2LL) Longitude() float64 {
	return p[0]
}

func (p Point2LL) Latitude() float64 {
	return p[1]
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// Valid reports whether the point is finite and within the valid
// latitude/longitude ranges.
func (p Point2LL) Valid() bool {
	return ValidLatLong(p[1], p[0])
}

func ValidLatLong(lat, lon float64) bool {
	return IsFinite(lat) && IsFinite(lon) && Abs(lat) <= 90 && Abs(lon) <= 180
}

// HaversineKm returns the great-circle distance in kilometers between two
// latitude/longitude pairs, using a spherical Earth.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	phi1, phi2 := Radians(lat1), Radians(lat2)
	dphi, dlambda := Radians(lat2-lat1), Radians(lon2-lon1)

	x := Sqr(gomath.Sin(dphi/2)) + gomath.Cos(phi1)*gomath.Cos(phi2)*Sqr(gomath.Sin(dlambda/2))
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	return EarthRadiusKm * c
}

func HaversineM(lat1, lon1, lat2, lon2 float64) float64 {
	return 1000 * HaversineKm(lat1, lon1, lat2, lon2)
}

func HaversineFt(lat1, lon1, lat2, lon2 float64) float64 {
	return KmToFeet * HaversineKm(lat1, lon1, lat2, lon2)
}

// DistanceFt returns the great-circle distance between two points in feet.
func DistanceFt(a, b Point2LL) float64 {
	return HaversineFt(a[1], a[0], b[1], b[0])
}

// NMDistance2LL returns the distance in nautical miles between two
// provided lat-long coordinates.
func NMDistance2LL(a Point2LL, b Point2LL) float64 {
	return DistanceFt(a, b) / NauticalMilesToFeet
}

// Distance3DFt returns the straight-line separation of two aircraft given
// their positions and MSL altitudes (in feet), along with its lateral and
// vertical components.
func Distance3DFt(lat1, lon1, alt1, lat2, lon2, alt2 float64) (dist, lateral, vertical float64) {
	lateral = HaversineFt(lat1, lon1, lat2, lon2)
	vertical = Abs(alt1 - alt2)
	dist = gomath.Sqrt(lateral*lateral + vertical*vertical)
	return
}
