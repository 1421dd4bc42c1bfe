// store/db.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mmp/fdsafety/event"

	"github.com/vmihailenco/msgpack/v5"
)

// dbStore implements Store on top of database/sql for any Dialect.
type dbStore struct {
	conn    *sql.DB
	dialect Dialect
}

func openDB(d Dialect, dsn string) (*dbStore, error) {
	conn, err := sql.Open(d.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	db := &dbStore{conn: conn, dialect: d}
	if err := db.createSchema(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *dbStore) createSchema() error {
	for _, stmt := range db.dialect.SchemaSQL() {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("creating schema: %w", err)
		}
	}
	return nil
}

func (db *dbStore) Close() error {
	return db.conn.Close()
}

// Conn returns the underlying database connection.
func (db *dbStore) Conn() *sql.DB {
	return db.conn
}

const timeLayout = time.RFC3339Nano

func (db *dbStore) InsertEvents(ctx context.Context, events []event.Event) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	evStmt, err := tx.PrepareContext(ctx, insertEventSQL(db.dialect))
	if err != nil {
		return 0, fmt.Errorf("preparing insert statement: %w", err)
	}
	defer evStmt.Close()

	mdStmt, err := tx.PrepareContext(ctx, insertMetadataSQL(db.dialect))
	if err != nil {
		return 0, fmt.Errorf("preparing metadata statement: %w", err)
	}
	defer mdStmt.Close()

	ids := make([]int64, len(events))
	for i, e := range events {
		var roc []byte
		if e.RateOfClosure != nil {
			if roc, err = msgpack.Marshal(e.RateOfClosure); err != nil {
				return 0, fmt.Errorf("encoding rate of closure: %w", err)
			}
		}

		row := evStmt.QueryRowContext(ctx, e.FlightID, e.OtherFlightID, e.DefinitionID, e.StartLine, e.EndLine,
			e.StartTime.UTC().Format(timeLayout), e.EndTime.UTC().Format(timeLayout), e.Severity, roc)
		if err := row.Scan(&ids[i]); err != nil {
			return 0, fmt.Errorf("inserting event %d: %w", i+1, err)
		}

		for _, md := range e.Metadata {
			if _, err := mdStmt.ExecContext(ctx, ids[i], md.Name, md.Value); err != nil {
				return 0, fmt.Errorf("inserting metadata for event %d: %w", i+1, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}

	for i := range events {
		events[i].ID = ids[i]
	}
	return len(events), nil
}

func (db *dbStore) EventsForFlight(ctx context.Context, flightID int64) ([]event.Event, error) {
	p := db.dialect.Placeholder(1)
	rows, err := db.conn.QueryContext(ctx, `SELECT id, flight_id, other_flight_id, definition_id, start_line, end_line,
		start_time, end_time, severity, rate_of_closure FROM events WHERE flight_id = `+p+
		` ORDER BY start_line, other_flight_id, id`, flightID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var events []event.Event
	index := make(map[int64]int)
	for rows.Next() {
		var e event.Event
		var start, end string
		var roc []byte
		if err := rows.Scan(&e.ID, &e.FlightID, &e.OtherFlightID, &e.DefinitionID, &e.StartLine, &e.EndLine,
			&start, &end, &e.Severity, &roc); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if e.StartTime, err = time.Parse(timeLayout, start); err != nil {
			return nil, fmt.Errorf("event %d: %w", e.ID, err)
		}
		if e.EndTime, err = time.Parse(timeLayout, end); err != nil {
			return nil, fmt.Errorf("event %d: %w", e.ID, err)
		}
		if len(roc) > 0 {
			if err := msgpack.Unmarshal(roc, &e.RateOfClosure); err != nil {
				return nil, fmt.Errorf("event %d: decoding rate of closure: %w", e.ID, err)
			}
		}
		index[e.ID] = len(events)
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	mrows, err := db.conn.QueryContext(ctx, `SELECT m.event_id, m.name, m.value FROM event_metadata m
		JOIN events e ON e.id = m.event_id WHERE e.flight_id = `+p+` ORDER BY m.id`, flightID)
	if err != nil {
		return nil, fmt.Errorf("querying metadata: %w", err)
	}
	defer mrows.Close()

	for mrows.Next() {
		var id int64
		var md event.Metadata
		if err := mrows.Scan(&id, &md.Name, &md.Value); err != nil {
			return nil, fmt.Errorf("scanning metadata: %w", err)
		}
		if i, ok := index[id]; ok {
			events[i].Metadata = append(events[i].Metadata, md)
		}
	}
	return events, mrows.Err()
}
