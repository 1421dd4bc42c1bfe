// geo/airport.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"github.com/mmp/fdsafety/math"
)

type Airport struct {
	IATA       string
	SiteNumber string
	Type       string
	Latitude   float64
	Longitude  float64
	GeoHash    string
	Runways    []Runway
}

// Runway is a named runway of an airport. Its centerline runs from
// (Lat1, Lon1) to (Lat2, Lon2) if HasCoordinates is set.
type Runway struct {
	SiteNumber     string
	Name           string
	HasCoordinates bool
	Lat1, Lon1     float64
	Lat2, Lon2     float64
}

func (ap *Airport) Location() math.Point2LL {
	return math.Point2LL{ap.Longitude, ap.Latitude}
}

// DistanceFt returns the great-circle distance from the airport's
// reference point to the given point.
func (ap *Airport) DistanceFt(lat, lon float64) float64 {
	return math.HaversineFt(ap.Latitude, ap.Longitude, lat, lon)
}

func (rwy *Runway) Ends() (math.Point2LL, math.Point2LL) {
	return math.Point2LL{rwy.Lon1, rwy.Lat1}, math.Point2LL{rwy.Lon2, rwy.Lat2}
}

// DistanceFt returns the shortest distance from the point to the
// runway's centerline.
func (rwy *Runway) DistanceFt(lat, lon float64) float64 {
	p1, p2 := rwy.Ends()
	return math.PointSegmentDistanceFt(math.Point2LL{lon, lat}, p1, p2)
}

// NearestRunway returns the runway whose centerline is closest to the
// point, if one is within maxFt. Runways without coordinates are never
// returned.
func (ap *Airport) NearestRunway(lat, lon, maxFt float64) (*Runway, float64, bool) {
	if !math.ValidLatLong(lat, lon) {
		return nil, 0, false
	}

	var best *Runway
	bestDist := maxFt
	for i := range ap.Runways {
		rwy := &ap.Runways[i]
		if !rwy.HasCoordinates {
			continue
		}
		if d := rwy.DistanceFt(lat, lon); d < bestDist {
			best, bestDist = rwy, d
		}
	}
	return best, bestDist, best != nil
}
