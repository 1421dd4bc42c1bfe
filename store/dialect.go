// store/dialect.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package store

import (
	"fmt"
	"strings"
)

// Dialect abstracts the SQL that differs between database backends.
type Dialect interface {
	// DriverName returns the database/sql driver name.
	DriverName() string

	// Placeholder returns the parameter placeholder for the given
	// 1-based index.
	Placeholder(index int) string

	// SchemaSQL returns the DDL statements that create the tables and
	// indexes if they do not exist.
	SchemaSQL() []string
}

// insertEventSQL returns the INSERT statement for one event; it returns
// the new row's id.
func insertEventSQL(d Dialect) string {
	return fmt.Sprintf(`INSERT INTO events (flight_id, other_flight_id, definition_id, start_line, end_line,
		start_time, end_time, severity, rate_of_closure) VALUES (%s) RETURNING id`, placeholders(d, 9))
}

func insertMetadataSQL(d Dialect) string {
	return fmt.Sprintf("INSERT INTO event_metadata (event_id, name, value) VALUES (%s)", placeholders(d, 3))
}

func placeholders(d Dialect, n int) string {
	p := make([]string, n)
	for i := range p {
		p[i] = d.Placeholder(i + 1)
	}
	return strings.Join(p, ", ")
}

type SQLiteDialect struct{}

func (d *SQLiteDialect) DriverName() string     { return "sqlite" }
func (d *SQLiteDialect) Placeholder(int) string { return "?" }

func (d *SQLiteDialect) SchemaSQL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			flight_id INTEGER NOT NULL, other_flight_id INTEGER NOT NULL DEFAULT 0,
			definition_id INTEGER NOT NULL, start_line INTEGER, end_line INTEGER,
			start_time TEXT, end_time TEXT, severity REAL, rate_of_closure BLOB
		)`,
		`CREATE TABLE IF NOT EXISTS event_metadata (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			event_id INTEGER NOT NULL REFERENCES events(id), name TEXT NOT NULL, value REAL
		)`,
		"CREATE INDEX IF NOT EXISTS idx_events_flight ON events (flight_id)",
		"CREATE INDEX IF NOT EXISTS idx_event_metadata_event ON event_metadata (event_id)",
	}
}

type PostgresDialect struct{}

func (d *PostgresDialect) DriverName() string           { return "pgx" }
func (d *PostgresDialect) Placeholder(index int) string { return fmt.Sprintf("$%d", index) }

func (d *PostgresDialect) SchemaSQL() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS events (
			id BIGSERIAL PRIMARY KEY,
			flight_id BIGINT NOT NULL, other_flight_id BIGINT NOT NULL DEFAULT 0,
			definition_id INT NOT NULL, start_line INT, end_line INT,
			start_time TEXT, end_time TEXT, severity DOUBLE PRECISION, rate_of_closure BYTEA
		)`,
		`CREATE TABLE IF NOT EXISTS event_metadata (
			id BIGSERIAL PRIMARY KEY,
			event_id BIGINT NOT NULL REFERENCES events(id), name TEXT NOT NULL, value DOUBLE PRECISION
		)`,
		"CREATE INDEX IF NOT EXISTS idx_events_flight ON events (flight_id)",
		"CREATE INDEX IF NOT EXISTS idx_event_metadata_event ON event_metadata (event_id)",
	}
}
