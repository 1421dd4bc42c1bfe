// terrain/tile.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/mmp/fdsafety/math"
)

const (
	// TileSize is the number of samples along each side of a tile;
	// adjacent tiles share their edge samples.
	TileSize  = 1201
	tileBytes = TileSize * TileSize * 2
)

// Tile holds one tile's elevations in meters, stored row-major from
// north to south and west to east.
type Tile struct {
	Key  TileKey
	Elev []int16
}

// ParseTile reads an HGT tile: TileSize*TileSize big-endian signed
// 16-bit samples and nothing else.
func ParseTile(key TileKey, r io.Reader) (*Tile, error) {
	b, err := io.ReadAll(io.LimitReader(r, tileBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	if len(b) != tileBytes {
		return nil, fmt.Errorf("%s: %w: %d bytes", key, ErrCorruptTile, len(b))
	}

	t := &Tile{Key: key, Elev: make([]int16, TileSize*TileSize)}
	for i := range t.Elev {
		t.Elev[i] = int16(binary.BigEndian.Uint16(b[2*i:]))
	}
	return t, nil
}

func (t *Tile) at(row, col int) float64 {
	return float64(t.Elev[row*TileSize+col])
}

// Elevation returns the bilinearly-interpolated elevation in meters at
// the given point, which must lie within the tile.
func (t *Tile) Elevation(lat, lon float64) float64 {
	const n = TileSize - 1

	rowf := (float64(t.Key.Lat+1) - lat) * n
	colf := (lon - float64(t.Key.Lon)) * n
	rowf, colf = math.Clamp(rowf, 0, n), math.Clamp(colf, 0, n)

	row0, col0 := int(rowf), int(colf)
	row1, col1 := min(row0+1, n), min(col0+1, n)
	x, y := colf-float64(col0), rowf-float64(row0)

	e00, e10 := t.at(row0, col0), t.at(row0, col1)
	e01, e11 := t.at(row1, col0), t.at(row1, col1)
	return e00*(1-x)*(1-y) + e10*x*(1-y) + e01*(1-x)*y + e11*x*y
}

// ElevationFt returns Elevation in feet.
func (t *Tile) ElevationFt(lat, lon float64) float64 {
	return t.Elevation(lat, lon) * math.FeetPerMeter
}

// Encode writes the tile in HGT format.
func (t *Tile) Encode(w io.Writer) error {
	return binary.Write(w, binary.BigEndian, t.Elev)
}
