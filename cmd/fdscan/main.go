// cmd/fdscan/main.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// fdscan scans recorded flights for exceedance and proximity events.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"maps"
	"os"
	"os/signal"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/mmp/fdsafety/event"
	"github.com/mmp/fdsafety/geo"
	"github.com/mmp/fdsafety/log"
	"github.com/mmp/fdsafety/scan"
	"github.com/mmp/fdsafety/series"
	"github.com/mmp/fdsafety/store"
	"github.com/mmp/fdsafety/terrain"
	"github.com/mmp/fdsafety/util"

	"github.com/goforj/godump"
	"github.com/iancoleman/orderedmap"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"golang.org/x/sync/errgroup"
)

var (
	logLevel    = flag.String("loglevel", "info", "Logging level: debug, info, warn, error")
	logDir      = flag.String("logdir", "", "Log file directory")
	airports    = flag.String("airports", "", "Airports CSV file")
	runways     = flag.String("runways", "", "Runways CSV file")
	indexCache  = flag.String("index-cache", "", "Cache file for the airport index")
	terrainDir  = flag.String("terrain", "", "Local directory of SRTM HGT tiles")
	terrainGCS  = flag.String("terrain-gcs", "", "GCS bucket[/prefix] of SRTM HGT tiles")
	terrainS3   = flag.String("terrain-s3", "", "S3 bucket[/prefix] of SRTM HGT tiles")
	s3Region    = flag.String("s3-region", "", "S3 region")
	s3Endpoint  = flag.String("s3-endpoint", "", "S3-compatible endpoint URL")
	maxTiles    = flag.Int("maxtiles", 0, "Maximum terrain tiles held in memory (0: based on available memory)")
	dbPath      = flag.String("db", "", "SQLite database for events")
	dsn         = flag.String("dsn", "", "PostgreSQL connection string for events")
	nWorkers    = flag.Int("nworkers", 0, "Number of worker goroutines (0: number of CPUs)")
	definitions = flag.String("definitions", "", "JSON file of event definition overrides")
	dump        = flag.Bool("dump", false, "Dump the events found to stdout")
)

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: fdscan [flags] <archive or directory>...\nwhere [flags] may be:\n")
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	lg := log.New(*logLevel, *logDir)
	defer lg.CatchAndReportCrash()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, lg); err != nil {
		lg.Error("fdscan", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "fdscan: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, lg *log.Logger) error {
	table, err := loadTable(*definitions)
	if err != nil {
		return err
	}

	r := scan.NewRunner(table, lg)
	r.Workers = workers(lg)

	if *airports != "" || *runways != "" {
		if r.Geo, err = geo.LoadCached(*airports, *runways, *indexCache, lg); err != nil {
			return err
		}
	}

	src, closeSrc, err := terrainSource(ctx)
	if err != nil {
		return err
	}
	defer closeSrc()
	if src != nil {
		if r.Terrain, err = terrain.NewEngine(src, terrain.Options{MaxTiles: tileBudget(lg), Log: lg}); err != nil {
			return err
		}
	}

	switch {
	case *dbPath != "" && *dsn != "":
		return errors.New("only one of -db and -dsn may be given")
	case *dbPath != "":
		r.Store, err = store.Open("sqlite", *dbPath)
	case *dsn != "":
		r.Store, err = store.Open("postgres", *dsn)
	}
	if err != nil {
		return err
	}
	if r.Store != nil {
		defer r.Store.Close()
	}

	flights, err := loadFlights(ctx, flag.Args(), r.Workers, lg)
	if err != nil {
		return err
	}

	s, err := r.Run(ctx, flights)
	if err != nil {
		return err
	}

	if *dump {
		godump.Dump(s.Events)
	}
	return printSummary(os.Stdout, s, r)
}

func loadTable(path string) (event.Table, error) {
	table := event.DefaultTable()
	if path == "" {
		return table, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var overrides []event.Override
	if err := util.UnmarshalJSON(f, &overrides); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return table.Apply(overrides)
}

// splitBucket splits "bucket/prefix" into its two parts.
func splitBucket(s string) (string, string) {
	bucket, prefix, _ := strings.Cut(s, "/")
	return bucket, prefix
}

func terrainSource(ctx context.Context) (terrain.Source, func(), error) {
	nop := func() {}
	n := 0
	for _, s := range []string{*terrainDir, *terrainGCS, *terrainS3} {
		if s != "" {
			n++
		}
	}
	if n > 1 {
		return nil, nop, errors.New("only one of -terrain, -terrain-gcs and -terrain-s3 may be given")
	}

	switch {
	case *terrainDir != "":
		return terrain.DirSource(*terrainDir), nop, nil
	case *terrainGCS != "":
		bucket, prefix := splitBucket(*terrainGCS)
		g, err := terrain.NewGCSSource(ctx, bucket, prefix)
		if err != nil {
			return nil, nop, err
		}
		return g, func() { g.Close() }, nil
	case *terrainS3 != "":
		bucket, prefix := splitBucket(*terrainS3)
		s, err := terrain.NewS3Source(ctx, terrain.S3Options{
			Bucket: bucket, Prefix: prefix, Region: *s3Region, Endpoint: *s3Endpoint,
		})
		return s, nop, err
	default:
		return nil, nop, nil
	}
}

func workers(lg *log.Logger) int {
	if *nWorkers > 0 {
		return *nWorkers
	}
	n, err := cpu.Counts(true)
	if err != nil || n < 1 {
		lg.Warn("unable to get CPU count", slog.Any("error", err))
		return 4
	}
	return n
}

// tileBudget returns the terrain cache size, using at most an eighth of
// the available memory when -maxtiles isn't given.
func tileBudget(lg *log.Logger) int {
	if *maxTiles > 0 {
		return *maxTiles
	}
	vm, err := mem.VirtualMemory()
	if err != nil {
		lg.Warn("unable to get available memory", slog.Any("error", err))
		return terrain.DefaultMaxTiles
	}
	const tileBytes = terrain.TileSize * terrain.TileSize * 2
	n := int(vm.Available / 8 / tileBytes)
	return max(16, min(n, 1024))
}

// loadFlights reads the archives named by args; directories are searched
// for archive files. Archives that can't be read are logged and skipped.
func loadFlights(ctx context.Context, args []string, nworkers int, lg *log.Logger) ([]*series.Flight, error) {
	var paths []string
	for _, arg := range args {
		err := filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && (path == arg || strings.HasSuffix(path, series.ArchiveSuffix)) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	var mu sync.Mutex
	var flights []*series.Flight
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(nworkers)
	for _, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			f, err := series.LoadArchive(path)
			if err != nil {
				lg.Error("unable to load flight", slog.String("path", path), slog.Any("error", err))
				return nil
			}
			mu.Lock()
			flights = append(flights, f)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	lg.Info("loaded flights", slog.Int("flights", len(flights)), slog.Int("archives", len(paths)))
	return flights, nil
}

func printSummary(w io.Writer, s *scan.Summary, r *scan.Runner) error {
	counts := s.EventCounts()
	names := r.Table.Names()
	byDef := orderedmap.New()
	for _, id := range slices.Sorted(maps.Keys(names)) {
		byDef.Set(names[id], counts[id])
	}
	byDef.Set("Proximity", s.ProximityCount)

	failures := orderedmap.New()
	for _, f := range s.Failures {
		name := f.Definition
		if name == "" {
			name = "prepare"
		}
		failures.Set(strconv.FormatInt(f.FlightID, 10)+"/"+name, f.Err.Error())
	}

	o := orderedmap.New()
	o.Set("flights", s.Flights)
	o.Set("jobs", s.Jobs)
	o.Set("pairs_compared", s.PairsCompared)
	o.Set("events", len(s.Events))
	o.Set("events_by_definition", byDef)
	o.Set("stored", s.Stored)
	o.Set("failures", failures)
	if r.Terrain != nil {
		o.Set("terrain_tiles_loaded", r.Terrain.Loads())
	}
	o.Set("elapsed", s.Elapsed.String())

	b, err := json.MarshalIndent(o, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
