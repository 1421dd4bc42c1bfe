// geo/geohash.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package geo indexes airports and runways for nearest-neighbor queries.
package geo

import (
	"fmt"
	gomath "math"
)

// CenterIndex is the position of the query point's own hash in the slice
// returned by NearbyGeoHashes.
const CenterIndex = 4

// cell returns the point's coordinates in hundredths of a degree.
func cell(lat, lon float64) (int, int) {
	return int(gomath.Round(lat * 100)), int(gomath.Round(lon * 100))
}

func cellHash(ilat, ilon int) string {
	return fmt.Sprintf("%+.2f%+.2f", float64(ilat)/100, float64(ilon)/100)
}

// GeoHash returns the bucket key of a point: its latitude and longitude
// each rounded to two decimal places and written with explicit signs,
// e.g. "+40.64-73.78".
func GeoHash(lat, lon float64) string {
	return cellHash(cell(lat, lon))
}

// NearbyGeoHashes returns the point's hash and the hashes of the eight
// buckets surrounding it, ordered by latitude and then longitude, so
// that the point's own hash is at CenterIndex.
func NearbyGeoHashes(lat, lon float64) []string {
	ilat, ilon := cell(lat, lon)
	hashes := make([]string, 0, 9)
	for dlat := -1; dlat <= 1; dlat++ {
		for dlon := -1; dlon <= 1; dlon++ {
			hashes = append(hashes, cellHash(ilat+dlat, ilon+dlon))
		}
	}
	return hashes
}
