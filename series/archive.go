// series/archive.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package series

import (
	"fmt"
	"io"
	"os"

	"github.com/mmp/fdsafety/util"
)

// ArchiveSuffix is the filename suffix of serialized flights.
const ArchiveSuffix = ".flight.msgpack.zst"

// archivedFlight is the on-disk representation of a Flight.
type archivedFlight struct {
	ID       int64
	FleetID  int64
	Airframe string
	Doubles  []DoubleSeries
	Strings  []StringSeries
}

// WriteArchive writes f as zstd-compressed msgpack.
func WriteArchive(w io.Writer, f *Flight) error {
	af := archivedFlight{ID: f.ID, FleetID: f.FleetID, Airframe: f.Airframe}
	for _, s := range f.Doubles {
		af.Doubles = append(af.Doubles, *s)
	}
	for _, s := range f.Strings {
		af.Strings = append(af.Strings, *s)
	}
	return util.EncodeObject(w, af)
}

func ReadArchive(r io.Reader) (*Flight, error) {
	var af archivedFlight
	if err := util.DecodeObject(r, &af); err != nil {
		return nil, err
	}
	if len(af.Doubles) == 0 && len(af.Strings) == 0 {
		return nil, fmt.Errorf("flight %d: %w", af.ID, ErrEmptyArchive)
	}

	f := NewFlight(af.ID, af.Airframe)
	f.FleetID = af.FleetID
	for i := range af.Doubles {
		f.AddDouble(&af.Doubles[i])
	}
	for i := range af.Strings {
		f.AddString(&af.Strings[i])
	}
	return f, nil
}

// LoadArchive reads a flight archive from the given file.
func LoadArchive(path string) (*Flight, error) {
	fr, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fr.Close()

	f, err := ReadArchive(fr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, nil
}
