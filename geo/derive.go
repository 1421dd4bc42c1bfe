// geo/derive.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	gomath "math"

	"github.com/mmp/fdsafety/series"
)

// DeriveNearest adds the NearestAirport, AirportDistance, NearestRunway
// and RunwayDistance columns to f. Samples with no airport within
// maxAirportFt, or no runway of that airport within maxRunwayFt, get ""
// and NaN.
func DeriveNearest(idx *Index, f *series.Flight, maxAirportFt, maxRunwayFt float64) error {
	if err := f.Require([]string{series.Latitude, series.Longitude}, nil); err != nil {
		return err
	}
	lat, lon := f.Double(series.Latitude), f.Double(series.Longitude)

	n := lat.Len()
	apNames, rwyNames := make([]string, n), make([]string, n)
	apDist, rwyDist := make([]float64, n), make([]float64, n)
	for i := range n {
		apDist[i], rwyDist[i] = gomath.NaN(), gomath.NaN()

		ap, d, ok := idx.NearestAirport(lat.At(i), lon.At(i), maxAirportFt)
		if !ok {
			continue
		}
		apNames[i], apDist[i] = ap.IATA, d

		if rwy, d, ok := ap.NearestRunway(lat.At(i), lon.At(i), maxRunwayFt); ok {
			rwyNames[i], rwyDist[i] = rwy.Name, d
		}
	}

	f.AddString(series.NewStringSeries(series.NearestAirport, apNames))
	f.AddDouble(series.NewDoubleSeries(series.AirportDistance, apDist))
	f.AddString(series.NewStringSeries(series.NearestRunway, rwyNames))
	f.AddDouble(series.NewDoubleSeries(series.RunwayDistance, rwyDist))
	return nil
}
