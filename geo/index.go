// geo/index.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"errors"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/mmp/fdsafety/log"
	"github.com/mmp/fdsafety/math"
	"github.com/mmp/fdsafety/util"
)

var ErrInvalidReferenceData = errors.New("invalid airport/runway reference data")

// Index holds airports bucketed by GeoHash. It is read-only once built
// and safe for concurrent use.
type Index struct {
	airports []*Airport
	buckets  map[string][]*Airport
	byIATA   map[string]*Airport
}

func newIndex(airports []*Airport) *Index {
	idx := &Index{
		airports: airports,
		buckets:  make(map[string][]*Airport),
		byIATA:   make(map[string]*Airport),
	}
	for _, ap := range airports {
		ap.GeoHash = GeoHash(ap.Latitude, ap.Longitude)
		idx.buckets[ap.GeoHash] = append(idx.buckets[ap.GeoHash], ap)
		if ap.IATA != "" {
			idx.byIATA[strings.ToUpper(ap.IATA)] = ap
		}
	}
	return idx
}

func (idx *Index) Len() int {
	return len(idx.airports)
}

// Airport returns the airport with the given IATA code.
func (idx *Index) Airport(iata string) (*Airport, bool) {
	ap, ok := idx.byIATA[strings.ToUpper(iata)]
	return ap, ok
}

// Airports returns all airports sorted by site number.
func (idx *Index) Airports() []*Airport {
	aps := slices.Clone(idx.airports)
	slices.SortFunc(aps, func(a, b *Airport) int { return strings.Compare(a.SiteNumber, b.SiteNumber) })
	return aps
}

// NearestAirport returns the closest airport within maxFt of the point.
// Only the point's GeoHash bucket and its eight neighbors are searched,
// so airports further than about 0.01 degrees away may be missed even
// if they are within maxFt.
func (idx *Index) NearestAirport(lat, lon, maxFt float64) (*Airport, float64, bool) {
	if !math.ValidLatLong(lat, lon) {
		return nil, 0, false
	}

	var best *Airport
	bestDist := maxFt
	for _, h := range NearbyGeoHashes(lat, lon) {
		for _, ap := range idx.buckets[h] {
			if d := ap.DistanceFt(lat, lon); d < bestDist {
				best, bestDist = ap, d
			}
		}
	}
	return best, bestDist, best != nil
}

// snapshot is the serialized form of an Index.
type snapshot struct {
	Airports []*Airport
}

// Save writes the index as zstd-compressed msgpack.
func (idx *Index) Save(w io.Writer) error {
	return util.EncodeObject(w, snapshot{Airports: idx.airports})
}

func ReadIndex(r io.Reader) (*Index, error) {
	var snap snapshot
	if err := util.DecodeObject(r, &snap); err != nil {
		return nil, err
	}
	return newIndex(snap.Airports), nil
}

// LoadCached returns the index from the snapshot at cachePath if it is
// newer than both CSV files and otherwise loads the CSV files and
// refreshes the snapshot. An empty cachePath disables caching.
func LoadCached(airportsPath, runwaysPath, cachePath string, lg *log.Logger) (*Index, error) {
	if cachePath == "" {
		return Load(airportsPath, runwaysPath, lg)
	}

	var newest time.Time
	for _, p := range []string{airportsPath, runwaysPath} {
		fi, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if fi.ModTime().After(newest) {
			newest = fi.ModTime()
		}
	}

	var snap snapshot
	if mt, err := util.CacheRetrieveObject(cachePath, &snap); err == nil && mt.After(newest) {
		lg.Info("loaded airport index from cache", "path", cachePath, "airports", len(snap.Airports))
		return newIndex(snap.Airports), nil
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		lg.Warn("unable to read airport index cache", "path", cachePath, "error", err)
	}

	idx, err := Load(airportsPath, runwaysPath, lg)
	if err != nil {
		return nil, err
	}
	if err := util.CacheStoreObject(cachePath, snapshot{Airports: idx.airports}); err != nil {
		lg.Warn("unable to write airport index cache", "path", cachePath, "error", err)
	}
	return idx, nil
}
