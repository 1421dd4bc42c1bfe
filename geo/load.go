// geo/load.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/mmp/fdsafety/log"
	"github.com/mmp/fdsafety/math"
	"github.com/mmp/fdsafety/util"
)

// Load reads the airport and runway CSV files and builds an Index.
func Load(airportsPath, runwaysPath string, lg *log.Logger) (*Index, error) {
	af, err := os.Open(airportsPath)
	if err != nil {
		return nil, err
	}
	defer af.Close()

	rf, err := os.Open(runwaysPath)
	if err != nil {
		return nil, err
	}
	defer rf.Close()

	return LoadReaders(af, rf, lg)
}

// LoadReaders builds an Index from airport records (index, IATA code,
// site number, type, latitude, longitude) and runway records (index,
// site number, name, and optionally latitude and longitude of both
// ends). A header row is skipped if present. Any malformed or
// inconsistent record fails the whole load.
func LoadReaders(airports, runways io.Reader, lg *log.Logger) (*Index, error) {
	var e util.ErrorLogger

	bySite := make(map[string]*Airport)
	iatas := make(map[string]string)
	var aps []*Airport

	e.Push("airports")
	readCSV(airports, &e, func(rec []string) {
		if len(rec) < 6 {
			e.ErrorString("expected 6 fields, got %d", len(rec))
			return
		}
		ap := &Airport{
			IATA:       strings.TrimSpace(rec[1]),
			SiteNumber: strings.TrimSpace(rec[2]),
			Type:       strings.TrimSpace(rec[3]),
		}
		ap.Latitude, ap.Longitude = parseLatLong(&e, rec[4], rec[5])

		if ap.SiteNumber == "" {
			e.ErrorString("missing site number")
			return
		}
		if _, ok := bySite[ap.SiteNumber]; ok {
			e.ErrorString("%s: duplicate site number", ap.SiteNumber)
			return
		}
		if ap.IATA != "" {
			if other, ok := iatas[ap.IATA]; ok {
				e.ErrorString("%s: IATA code %q also used by %s", ap.SiteNumber, ap.IATA, other)
			}
			iatas[ap.IATA] = ap.SiteNumber
		}
		bySite[ap.SiteNumber] = ap
		aps = append(aps, ap)
	})
	e.Pop()

	nrunways := 0
	e.Push("runways")
	readCSV(runways, &e, func(rec []string) {
		if len(rec) != 3 && len(rec) != 7 {
			e.ErrorString("expected 3 or 7 fields, got %d", len(rec))
			return
		}
		rwy := Runway{
			SiteNumber: strings.TrimSpace(rec[1]),
			Name:       strings.TrimSpace(rec[2]),
		}
		if len(rec) == 7 && !allBlank(rec[3:]) {
			rwy.HasCoordinates = true
			rwy.Lat1, rwy.Lon1 = parseLatLong(&e, rec[3], rec[4])
			rwy.Lat2, rwy.Lon2 = parseLatLong(&e, rec[5], rec[6])
		}

		ap, ok := bySite[rwy.SiteNumber]
		if !ok {
			e.ErrorString("runway %s: no airport with site number %q", rwy.Name, rwy.SiteNumber)
			return
		}
		ap.Runways = append(ap.Runways, rwy)
		nrunways++
	})
	e.Pop()

	if e.HaveErrors() {
		e.PrintErrors(lg)
		return nil, fmt.Errorf("%w: %d errors, first: %s", ErrInvalidReferenceData, e.Count(),
			strings.SplitN(e.String(), "\n", 2)[0])
	}

	lg.Info("loaded airports", slog.Int("airports", len(aps)), slog.Int("runways", nrunways))
	return newIndex(aps), nil
}

// readCSV calls callback for each record after the optional header row,
// which is recognized by a first field that is not an integer.
func readCSV(r io.Reader, e *util.ErrorLogger, callback func([]string)) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	for line := 1; ; line++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return
		} else if err != nil {
			e.Error(err)
			return
		}

		if line == 1 {
			if _, err := strconv.Atoi(strings.TrimSpace(rec[0])); err != nil {
				continue
			}
		}

		e.Push(fmt.Sprintf("line %d", line))
		callback(rec)
		e.Pop()
	}
}

func parseLatLong(e *util.ErrorLogger, slat, slon string) (float64, float64) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(slat), 64)
	if err != nil {
		e.ErrorString("%q: invalid latitude", slat)
		return 0, 0
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(slon), 64)
	if err != nil {
		e.ErrorString("%q: invalid longitude", slon)
		return 0, 0
	}
	if !math.ValidLatLong(lat, lon) {
		e.ErrorString("(%f, %f): coordinates out of range", lat, lon)
	}
	return lat, lon
}

func allBlank(s []string) bool {
	for _, v := range s {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
