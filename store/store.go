// store/store.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

// Package store persists detected events to a relational database.
package store

import (
	"context"
	"fmt"

	"github.com/mmp/fdsafety/event"
)

// Store is a sink for detected events.
type Store interface {
	// InsertEvents writes the events, their metadata and rate of closure
	// in a single transaction and sets each event's ID. It returns the
	// number of events written.
	InsertEvents(ctx context.Context, events []event.Event) (int, error)
	// EventsForFlight returns the stored events owned by the flight,
	// ordered by start line.
	EventsForFlight(ctx context.Context, flightID int64) ([]event.Event, error)
	Close() error
}

// Open opens the database with the given driver ("sqlite" or
// "postgres"), creating the schema if it does not already exist. For
// SQLite, dsn is a file path; for PostgreSQL it is a connection string.
func Open(driver, dsn string) (Store, error) {
	var s Store
	var err error
	switch driver {
	case "sqlite":
		s, err = OpenSQLite(dsn)
	case "postgres", "pgx":
		s, err = OpenPostgres(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", driver)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
