// scan/runner.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package scan

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/mmp/fdsafety/event"
	"github.com/mmp/fdsafety/geo"
	"github.com/mmp/fdsafety/log"
	"github.com/mmp/fdsafety/proximity"
	"github.com/mmp/fdsafety/series"
	"github.com/mmp/fdsafety/store"
	"github.com/mmp/fdsafety/terrain"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxAirportFt = 5 * 6076.12
	DefaultMaxRunwayFt  = 2000
)

// Runner scans a batch of flights for exceedance and proximity events.
// Terrain, Geo and Store are optional.
type Runner struct {
	Table     event.Table
	Terrain   *terrain.Engine
	Geo       *geo.Index
	Store     store.Store
	// Proximity defaults to proximity.NewScanner if nil.
	Proximity *proximity.Scanner
	// Workers bounds the number of concurrent jobs; zero means
	// GOMAXPROCS.
	Workers int
	Log     *log.Logger

	MaxAirportFt float64
	MaxRunwayFt  float64
}

func NewRunner(table event.Table, lg *log.Logger) *Runner {
	return &Runner{
		Table:        table,
		Proximity:    proximity.NewScanner(lg),
		Log:          lg,
		MaxAirportFt: DefaultMaxAirportFt,
		MaxRunwayFt:  DefaultMaxRunwayFt,
	}
}

// Failure records a job that could not complete. Definition is empty
// for failures while preparing a flight.
type Failure struct {
	FlightID   int64
	Definition string
	Err        error
}

type Summary struct {
	Flights        int
	Jobs           int
	PairsCompared  int
	Events         []event.Event
	ProximityCount int
	Stored         int
	Failures       []Failure
	Elapsed        time.Duration
}

// EventCounts returns the number of events per definition id.
func (s *Summary) EventCounts() map[int]int {
	m := make(map[int]int)
	for _, e := range s.Events {
		m[e.DefinitionID]++
	}
	return m
}

// collector gathers job results from concurrent workers.
type collector struct {
	mu        sync.Mutex
	events    []event.Event
	proximity []event.Event
	failures  []Failure
	jobs      int
	pairs     int
}

func (c *collector) fail(f Failure) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures = append(c.failures, f)
}

// Run scans flights and, if a store is configured, persists the events
// found. Failures of individual jobs are recorded in the returned
// Summary; only cancellation of ctx, a corrupt terrain tile or a store
// error is returned.
func (r *Runner) Run(ctx context.Context, flights []*series.Flight) (*Summary, error) {
	start := time.Now()
	var c collector

	if err := r.prepare(ctx, flights, &c); err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers())

	for _, f := range flights {
		for _, def := range r.Table.For(f.Airframe) {
			c.jobs++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				events, err := event.NewScanner(&def, r.Log).Scan(f)
				if err != nil {
					r.reportFailure(&c, Failure{FlightID: f.ID, Definition: def.Name, Err: err})
					return nil
				}
				c.mu.Lock()
				c.events = append(c.events, events...)
				c.mu.Unlock()
				return nil
			})
		}
	}

	prox := r.Proximity
	if prox == nil {
		prox = proximity.NewScanner(r.Log)
	}
	trajectories := r.trajectories(flights)
	for i, a := range trajectories {
		for _, b := range trajectories[i+1:] {
			if !a.Interval.Overlaps(b.Interval) || !prox.Candidate(a, b) {
				continue
			}
			c.jobs++
			c.pairs++
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				events := prox.Scan(a, b)
				c.mu.Lock()
				for _, e := range events {
					c.proximity = proximity.AddUnique(c.proximity, e)
				}
				c.mu.Unlock()
				return nil
			})
		}
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s := &Summary{
		Flights:        len(flights),
		Jobs:           c.jobs,
		PairsCompared:  c.pairs,
		Events:         append(c.events, c.proximity...),
		ProximityCount: len(c.proximity),
		Failures:       c.failures,
	}
	slices.SortFunc(s.Events, func(a, b event.Event) int {
		return cmp.Or(cmp.Compare(a.FlightID, b.FlightID), cmp.Compare(a.StartLine, b.StartLine),
			cmp.Compare(a.DefinitionID, b.DefinitionID), cmp.Compare(a.OtherFlightID, b.OtherFlightID))
	})
	slices.SortFunc(s.Failures, func(a, b Failure) int {
		return cmp.Or(cmp.Compare(a.FlightID, b.FlightID), cmp.Compare(a.Definition, b.Definition))
	})

	if r.Store != nil && len(s.Events) > 0 {
		n, err := r.Store.InsertEvents(ctx, s.Events)
		if err != nil {
			return nil, err
		}
		s.Stored = n
	}

	s.Elapsed = time.Since(start)
	r.Log.Info("scan complete", slog.Int("flights", s.Flights), slog.Int("jobs", s.Jobs),
		slog.Int("events", len(s.Events)), slog.Int("proximity", s.ProximityCount),
		slog.Int("failures", len(s.Failures)), slog.Duration("elapsed", s.Elapsed))
	return s, nil
}

// prepare derives the AGL and nearest-airport columns of each flight.
// A flight that can't be prepared is still scanned; the definitions
// that need the missing columns fail individually.
func (r *Runner) prepare(ctx context.Context, flights []*series.Flight, c *collector) error {
	if r.Terrain == nil && r.Geo == nil {
		return nil
	}

	var g errgroup.Group
	g.SetLimit(r.workers())
	for _, f := range flights {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if r.Terrain != nil && f.Double(series.AltAGL) == nil {
				if err := terrain.DeriveAGL(ctx, r.Terrain, f); err != nil {
					if ctx.Err() != nil {
						return ctx.Err()
					}
					// Bad terrain data invalidates every later lookup.
					if errors.Is(err, terrain.ErrCorruptTile) {
						return err
					}
					r.reportFailure(c, Failure{FlightID: f.ID, Err: err})
				}
			}
			if r.Geo != nil {
				if err := geo.DeriveNearest(r.Geo, f, r.MaxAirportFt, r.MaxRunwayFt); err != nil {
					r.reportFailure(c, Failure{FlightID: f.ID, Err: err})
				}
			}
			return nil
		})
	}
	return g.Wait()
}

// trajectories returns the proximity state of each flight that has the
// needed columns, ordered by flight id.
func (r *Runner) trajectories(flights []*series.Flight) []*proximity.Trajectory {
	var t []*proximity.Trajectory
	for _, f := range flights {
		if tr, ok := proximity.NewTrajectory(f); ok {
			t = append(t, tr)
		} else {
			r.Log.Debug("flight skipped for proximity", slog.Int64("flight", f.ID))
		}
	}
	slices.SortFunc(t, func(a, b *proximity.Trajectory) int { return cmp.Compare(a.ID, b.ID) })
	return t
}

func (r *Runner) reportFailure(c *collector, f Failure) {
	args := []any{slog.Int64("flight", f.FlightID), slog.String("definition", f.Definition), slog.Any("error", f.Err)}
	if errors.Is(f.Err, event.ErrMissingColumn) || errors.Is(f.Err, event.ErrMissingThreshold) {
		r.Log.Warn("scan skipped", args...)
	} else {
		r.Log.Error("scan failed", args...)
	}
	c.fail(f)
}

func (r *Runner) workers() int {
	if r.Workers > 0 {
		return r.Workers
	}
	return runtime.GOMAXPROCS(0)
}
