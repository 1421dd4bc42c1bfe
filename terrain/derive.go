// terrain/derive.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"context"
	"errors"
	"log/slog"
	gomath "math"

	"github.com/mmp/fdsafety/series"
)

// DeriveAGL adds an AltAGL column to f computed from its position and
// AltMSL columns. Samples whose position is invalid or whose terrain is
// unavailable are NaN. A corrupt tile or cancellation is returned as an
// error and leaves f unchanged.
func DeriveAGL(ctx context.Context, e *Engine, f *series.Flight) error {
	if err := f.Require([]string{series.Latitude, series.Longitude, series.AltMSL}, nil); err != nil {
		return err
	}
	lat, lon, msl := f.Double(series.Latitude), f.Double(series.Longitude), f.Double(series.AltMSL)

	agl := make([]float64, msl.Len())
	unavailable := 0
	for i := range agl {
		v, err := e.AGL(ctx, lat.At(i), lon.At(i), msl.At(i))
		switch {
		case err == nil:
			agl[i] = v
		case errors.Is(err, ErrInvalidCoordinate):
			agl[i] = gomath.NaN()
		case errors.Is(err, ErrTerrainUnavailable):
			agl[i] = gomath.NaN()
			unavailable++
		default:
			return err
		}
	}

	if unavailable > 0 {
		e.lg.Warn("terrain unavailable for samples", slog.Int64("flight", f.ID), slog.Int("samples", unavailable))
	}
	f.AddDouble(series.NewDoubleSeries(series.AltAGL, agl))
	return nil
}
