// terrain/engine.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	gomath "math"
	"sync/atomic"
	"time"

	"github.com/mmp/fdsafety/log"

	"github.com/hashicorp/golang-lru/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultMaxTiles = 64
	DefaultMissTTL  = 10 * time.Minute
)

type Options struct {
	// MaxTiles bounds the number of tiles held in memory; the least
	// recently used tile is evicted beyond it.
	MaxTiles int
	// MissTTL is how long a missing tile is remembered before the
	// source is asked for it again.
	MissTTL time.Duration
	Log     *log.Logger
}

// Engine converts positions to ground elevation. It is safe for
// concurrent use and loads each tile from its Source at most once while
// the tile remains cached.
type Engine struct {
	src     Source
	tiles   *lru.Cache[TileKey, *Tile]
	missing *expirable.LRU[TileKey, error]
	group   singleflight.Group
	lg      *log.Logger
	loads   atomic.Int64
}

func NewEngine(src Source, opts Options) (*Engine, error) {
	if opts.MaxTiles <= 0 {
		opts.MaxTiles = DefaultMaxTiles
	}
	if opts.MissTTL <= 0 {
		opts.MissTTL = DefaultMissTTL
	}

	tiles, err := lru.NewWithEvict(opts.MaxTiles, func(k TileKey, _ *Tile) {
		opts.Log.Debug("evicted terrain tile", slog.String("tile", k.String()))
	})
	if err != nil {
		return nil, err
	}

	return &Engine{
		src:     src,
		tiles:   tiles,
		missing: expirable.NewLRU[TileKey, error](4*opts.MaxTiles, nil, opts.MissTTL),
		lg:      opts.Log,
	}, nil
}

// Loads returns the number of tiles read from the source so far.
func (e *Engine) Loads() int64 {
	return e.loads.Load()
}

// Cached returns the number of tiles currently in memory.
func (e *Engine) Cached() int {
	return e.tiles.Len()
}

// Tile returns the tile containing the given point.
func (e *Engine) Tile(ctx context.Context, lat, lon float64) (*Tile, error) {
	key, err := KeyFor(lat, lon)
	if err != nil {
		return nil, err
	}
	return e.tile(ctx, key)
}

func (e *Engine) tile(ctx context.Context, key TileKey) (*Tile, error) {
	if t, ok := e.tiles.Get(key); ok {
		return t, nil
	}
	if err, ok := e.missing.Get(key); ok {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	v, err, _ := e.group.Do(key.String(), func() (any, error) {
		if t, ok := e.tiles.Peek(key); ok {
			return t, nil
		}

		t, err := e.load(ctx, key)
		if err != nil {
			if errors.Is(err, ErrTerrainUnavailable) {
				e.missing.Add(key, err)
			}
			return nil, err
		}
		e.tiles.Add(key, t)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tile), nil
}

// load reads the tile from the source, trying the plain HGT file first
// and then a zstd-compressed one.
func (e *Engine) load(ctx context.Context, key TileKey) (*Tile, error) {
	start := time.Now()
	path := key.Path()

	r, err := e.src.Open(ctx, path)
	compressed := false
	if errors.Is(err, fs.ErrNotExist) {
		r, err = e.src.Open(ctx, path+".zst")
		compressed = true
	}
	if err != nil {
		if cerr := ctx.Err(); cerr != nil {
			return nil, cerr
		}
		e.lg.Warn("terrain tile unavailable", slog.String("path", path), slog.Any("error", err))
		return nil, fmt.Errorf("%s: %w: %v", key, ErrTerrainUnavailable, err)
	}
	defer r.Close()

	var t *Tile
	if compressed {
		zr, zerr := zstd.NewReader(r)
		if zerr != nil {
			return nil, fmt.Errorf("%s: %w: %v", key, ErrTerrainUnavailable, zerr)
		}
		defer zr.Close()
		t, err = ParseTile(key, zr)
	} else {
		t, err = ParseTile(key, r)
	}
	if err != nil {
		if errors.Is(err, ErrCorruptTile) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrTerrainUnavailable, err)
	}

	e.loads.Add(1)
	e.lg.Info("loaded terrain tile", slog.String("path", path), slog.Bool("zstd", compressed),
		slog.Duration("elapsed", time.Since(start)))
	return t, nil
}

// Elevation returns the ground elevation in feet at the given point.
func (e *Engine) Elevation(ctx context.Context, lat, lon float64) (float64, error) {
	t, err := e.Tile(ctx, lat, lon)
	if err != nil {
		return gomath.NaN(), err
	}
	return t.ElevationFt(lat, lon), nil
}

// AGL returns the height in feet above the ground of a point at the
// given MSL altitude in feet. It is never negative.
func (e *Engine) AGL(ctx context.Context, lat, lon, msl float64) (float64, error) {
	if gomath.IsNaN(msl) || gomath.IsInf(msl, 0) {
		return gomath.NaN(), fmt.Errorf("altitude %f: %w", msl, ErrInvalidCoordinate)
	}
	elev, err := e.Elevation(ctx, lat, lon)
	if err != nil {
		return gomath.NaN(), err
	}
	return max(0, msl-elev), nil
}
