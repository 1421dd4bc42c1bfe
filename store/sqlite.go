// store/sqlite.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package store

import (
	_ "modernc.org/sqlite"
)

// SQLiteStore stores events in a SQLite database file.
type SQLiteStore struct {
	*dbStore
	path string
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	// Enforce foreign keys and wait for locks held by other writers.
	dsn := path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	db, err := openDB(&SQLiteDialect{}, dsn)
	if err != nil {
		return nil, err
	}
	return &SQLiteStore{dbStore: db, path: path}, nil
}

func (s *SQLiteStore) Path() string {
	return s.path
}
