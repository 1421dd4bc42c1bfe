// terrain/key.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package terrain provides ground elevation from SRTM HGT tiles.
package terrain

import (
	"fmt"
	gomath "math"
	"path"

	"github.com/mmp/fdsafety/math"
)

// TileKey identifies a 1x1 degree tile by its southwest corner.
type TileKey struct {
	Lat int
	Lon int
}

func validCoordinate(lat, lon float64) error {
	if !math.ValidLatLong(lat, lon) {
		return fmt.Errorf("(%f, %f): %w", lat, lon, ErrInvalidCoordinate)
	}
	return nil
}

// KeyFor returns the key of the tile containing the given point. Points
// on the north pole or the antimeridian belong to the tile below or to
// the west, respectively.
func KeyFor(lat, lon float64) (TileKey, error) {
	if err := validCoordinate(lat, lon); err != nil {
		return TileKey{}, err
	}
	return TileKey{
		Lat: min(int(gomath.Floor(lat)), 89),
		Lon: min(int(gomath.Floor(lon)), 179),
	}, nil
}

// Directory returns the name of the directory holding the tile: a band
// letter for each 4 degrees of latitude away from the equator, prefixed
// with 'S' in the southern hemisphere, followed by the 6-degree
// longitude zone number.
//
// Southern bands are counted from the first tile south of the equator,
// band = (-lat-1)/4, so S01 through S04 are in SA and S05 through S08 in
// SB. This is not 'A'+floor(|lat|/4), which would put S04 in SB.
func (k TileKey) Directory() string {
	band := k.Lat / 4
	prefix := ""
	if k.Lat < 0 {
		band = (-k.Lat - 1) / 4
		prefix = "S"
	}
	zone := (k.Lon+180)/6 + 1
	return fmt.Sprintf("%s%c%d", prefix, 'A'+band, zone)
}

// Filename returns the tile's file name, e.g. N40W075.hgt.
func (k TileKey) Filename() string {
	ns, lat := 'N', k.Lat
	if lat < 0 {
		ns, lat = 'S', -lat
	}
	ew, lon := 'E', k.Lon
	if lon < 0 {
		ew, lon = 'W', -lon
	}
	return fmt.Sprintf("%c%02d%c%03d.hgt", ns, lat, ew, lon)
}

// Path returns the slash-separated path of the tile relative to the
// root of a tile source.
func (k TileKey) Path() string {
	return path.Join(k.Directory(), k.Filename())
}

func (k TileKey) String() string {
	return k.Filename()
}
