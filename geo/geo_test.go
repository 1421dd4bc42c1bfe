// geo/geo_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"bytes"
	"errors"
	gomath "math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mmp/fdsafety/math"
	"github.com/mmp/fdsafety/series"
)

func TestGeoHash(t *testing.T) {
	tests := []struct {
		lat, lon float64
		hash     string
	}{
		{40.6413, -73.7781, "+40.64-73.78"},
		{-33.9399, 151.1753, "-33.94+151.18"},
		{0.001, -0.004, "+0.00+0.00"},
		{-0.001, 0.001, "+0.00+0.00"},
		{12.346, 0, "+12.35+0.00"},
	}
	for _, test := range tests {
		if h := GeoHash(test.lat, test.lon); h != test.hash {
			t.Errorf("(%f, %f): expected %q, got %q", test.lat, test.lon, test.hash, h)
		}
	}

	// Negative zero never appears.
	if h := GeoHash(-0.001, -0.001); h != "+0.00+0.00" {
		t.Errorf("expected +0.00+0.00, got %q", h)
	}
}

func TestNearbyGeoHashes(t *testing.T) {
	for _, p := range [][2]float64{{40.6413, -73.7781}, {0.004, -0.004}, {-45.005, 170.995}, {89.99, -179.99}} {
		hashes := NearbyGeoHashes(p[0], p[1])
		if len(hashes) != 9 {
			t.Fatalf("%v: expected 9 hashes, got %d", p, len(hashes))
		}
		if hashes[CenterIndex] != GeoHash(p[0], p[1]) {
			t.Errorf("%v: expected %q at center, got %q", p, GeoHash(p[0], p[1]), hashes[CenterIndex])
		}
		seen := make(map[string]bool)
		for _, h := range hashes {
			if seen[h] {
				t.Errorf("%v: duplicate hash %q", p, h)
			}
			seen[h] = true
		}
	}

	hashes := NearbyGeoHashes(40.64, -73.78)
	if hashes[0] != "+40.63-73.79" || hashes[8] != "+40.65-73.77" {
		t.Errorf("unexpected corner hashes %v", hashes)
	}
}

const airportsCSV = `index,iata,site_number,type,latitude,longitude
1,JFK,15793.*A,AIRPORT,40.6398,-73.7789
2,LGA,15794.*A,AIRPORT,40.7772,-73.8726
3,,16001.*H,HELIPORT,40.6410,-73.7790
`

const runwaysCSV = `index,site_number,name,lat1,lon1,lat2,lon2
1,15793.*A,04L/22R,40.6223,-73.7856,40.6456,-73.7642
2,15793.*A,13R/31L,40.6480,-73.8160,40.6300,-73.7710
3,15793.*A,04R/22L,,,,
4,15794.*A,04/22,40.7693,-73.8848,40.7844,-73.8694
5,16001.*H,H1
`

func loadTestIndex(t *testing.T) *Index {
	t.Helper()
	idx, err := LoadReaders(strings.NewReader(airportsCSV), strings.NewReader(runwaysCSV), nil)
	if err != nil {
		t.Fatal(err)
	}
	return idx
}

func TestLoad(t *testing.T) {
	idx := loadTestIndex(t)
	if idx.Len() != 3 {
		t.Fatalf("expected 3 airports, got %d", idx.Len())
	}

	jfk, ok := idx.Airport("jfk")
	if !ok {
		t.Fatalf("JFK not found")
	}
	if len(jfk.Runways) != 3 || jfk.GeoHash != "+40.64-73.78" {
		t.Errorf("unexpected JFK %+v", jfk)
	}
	if jfk.Runways[2].HasCoordinates || !jfk.Runways[0].HasCoordinates {
		t.Errorf("runway coordinate flags wrong: %+v", jfk.Runways)
	}
	for _, ap := range idx.Airports() {
		for _, rwy := range ap.Runways {
			if rwy.SiteNumber != ap.SiteNumber {
				t.Errorf("runway %s site %s does not match airport %s", rwy.Name, rwy.SiteNumber, ap.SiteNumber)
			}
		}
	}

	// No header row.
	noHeader := strings.SplitN(airportsCSV, "\n", 2)[1]
	if idx, err := LoadReaders(strings.NewReader(noHeader), strings.NewReader(""), nil); err != nil || idx.Len() != 3 {
		t.Errorf("headerless load: %v", err)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name, airports, runways string
	}{
		{"DuplicateSite", "1,JFK,1.A,AIRPORT,40,-73\n2,LGA,1.A,AIRPORT,41,-73\n", ""},
		{"DuplicateIATA", "1,JFK,1.A,AIRPORT,40,-73\n2,JFK,2.A,AIRPORT,41,-73\n", ""},
		{"BadLatitude", "1,JFK,1.A,AIRPORT,97,-73\n", ""},
		{"Unparseable", "1,JFK,1.A,AIRPORT,north,-73\n", ""},
		{"OrphanRunway", "1,JFK,1.A,AIRPORT,40,-73\n", "1,2.A,04/22\n"},
		{"ShortRunway", "1,JFK,1.A,AIRPORT,40,-73\n", "1,1.A,04/22,40,-73\n"},
		{"BadRunwayEnd", "1,JFK,1.A,AIRPORT,40,-73\n", "1,1.A,04/22,40,-73,40,-273\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := LoadReaders(strings.NewReader(test.airports), strings.NewReader(test.runways), nil)
			if !errors.Is(err, ErrInvalidReferenceData) {
				t.Errorf("expected ErrInvalidReferenceData, got %v", err)
			}
		})
	}
}

func TestNearestAirport(t *testing.T) {
	idx := loadTestIndex(t)

	ap, d, ok := idx.NearestAirport(40.6400, -73.7785, 10000)
	if !ok || ap.SiteNumber != "15793.*A" {
		t.Fatalf("expected JFK, got %+v", ap)
	}
	if d <= 0 || d > 200 {
		t.Errorf("unexpected distance %f", d)
	}

	// The heliport is closest to this point.
	if ap, _, ok := idx.NearestAirport(40.6410, -73.7791, 10000); !ok || ap.Type != "HELIPORT" {
		t.Errorf("expected heliport, got %+v", ap)
	}

	if _, _, ok := idx.NearestAirport(40.6400, -73.7785, 10); ok {
		t.Errorf("expected no airport within 10 ft")
	}
	// LGA is well within 100000 ft but outside the neighboring buckets.
	if ap, _, ok := idx.NearestAirport(40.70, -73.80, 100000); ok {
		t.Errorf("expected search to be limited to nearby buckets, got %s", ap.IATA)
	}
	if _, _, ok := idx.NearestAirport(gomath.NaN(), 0, 10000); ok {
		t.Errorf("expected no result for invalid point")
	}
}

func TestNearestRunway(t *testing.T) {
	idx := loadTestIndex(t)
	jfk, _ := idx.Airport("JFK")

	// A point on the 04L/22R centerline.
	lat, lon := (40.6223+40.6456)/2, (-73.7856+-73.7642)/2
	rwy, d, ok := jfk.NearestRunway(lat, lon, 1000)
	if !ok || rwy.Name != "04L/22R" {
		t.Fatalf("expected 04L/22R, got %+v", rwy)
	}
	if d > 1 {
		t.Errorf("expected point on centerline, got %f ft", d)
	}

	// Beyond the 04L end: distance is to the endpoint.
	rwy, d, ok = jfk.NearestRunway(40.6100, -73.7970, 10000)
	if !ok || rwy.Name != "04L/22R" {
		t.Fatalf("expected 04L/22R, got %+v", rwy)
	}
	if want := math.HaversineFt(40.6100, -73.7970, 40.6223, -73.7856); gomath.Abs(d-want) > 1e-3 {
		t.Errorf("expected distance to runway end %f, got %f", want, d)
	}

	if _, _, ok := jfk.NearestRunway(lat, lon, 0); ok {
		t.Errorf("expected nothing within 0 ft")
	}

	heli, _, _ := idx.NearestAirport(40.6410, -73.7790, 100)
	if _, _, ok := heli.NearestRunway(40.6410, -73.7790, 1e6); ok {
		t.Errorf("coordinate-less runway returned")
	}
}

func TestSnapshot(t *testing.T) {
	idx := loadTestIndex(t)

	var buf bytes.Buffer
	if err := idx.Save(&buf); err != nil {
		t.Fatal(err)
	}
	idx2, err := ReadIndex(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if idx2.Len() != idx.Len() {
		t.Fatalf("expected %d airports, got %d", idx.Len(), idx2.Len())
	}
	if ap, _, ok := idx2.NearestAirport(40.6400, -73.7785, 10000); !ok || len(ap.Runways) != 3 {
		t.Errorf("snapshot lost airports or runways: %+v", ap)
	}
}

func TestLoadCached(t *testing.T) {
	dir := t.TempDir()
	apPath, rwyPath := filepath.Join(dir, "airports.csv"), filepath.Join(dir, "runways.csv")
	cachePath := filepath.Join(dir, "cache", "geo.msgpack.zst")
	if err := os.WriteFile(apPath, []byte(airportsCSV), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(rwyPath, []byte(runwaysCSV), 0644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-time.Hour)
	for _, p := range []string{apPath, rwyPath} {
		if err := os.Chtimes(p, old, old); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := LoadCached(apPath, rwyPath, cachePath, nil); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cachePath); err != nil {
		t.Fatalf("cache not written: %v", err)
	}

	// The snapshot is used while it is newer than the CSV files, even if
	// they no longer parse.
	if err := os.WriteFile(apPath, []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.Chtimes(apPath, old, old); err != nil {
		t.Fatal(err)
	}
	idx, err := LoadCached(apPath, rwyPath, cachePath, nil)
	if err != nil || idx.Len() != 3 {
		t.Errorf("expected cached index, got %v", err)
	}
}

func TestDeriveNearest(t *testing.T) {
	idx := loadTestIndex(t)

	f := series.NewFlight(1, "Cessna 172S")
	f.AddDouble(series.NewDoubleSeries(series.Latitude, []float64{(40.6223 + 40.6456) / 2, 10, gomath.NaN()}))
	f.AddDouble(series.NewDoubleSeries(series.Longitude, []float64{(-73.7856 + -73.7642) / 2, 10, 0}))

	if err := DeriveNearest(idx, f, 10000, 1000); err != nil {
		t.Fatal(err)
	}
	if got := f.String(series.NearestAirport).Data; got[0] != "JFK" || got[1] != "" || got[2] != "" {
		t.Errorf("unexpected nearest airports %v", got)
	}
	if got := f.String(series.NearestRunway).At(0); got != "04L/22R" {
		t.Errorf("expected 04L/22R, got %q", got)
	}
	if d := f.Double(series.RunwayDistance); d.At(0) > 1 || !gomath.IsNaN(d.At(1)) {
		t.Errorf("unexpected runway distances %v", d.Data)
	}
	if d := f.Double(series.AirportDistance); gomath.IsNaN(d.At(0)) || !gomath.IsNaN(d.At(2)) {
		t.Errorf("unexpected airport distances %v", d.Data)
	}
}
