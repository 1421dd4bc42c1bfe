// series/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package series

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrMissingColumn = errors.New("missing column")
	ErrEmptyArchive  = errors.New("flight archive has no columns")
)

// MissingColumnError lists every required column a flight lacks.
type MissingColumnError struct {
	FlightID int64
	Columns  []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("flight %d: %s: %s", e.FlightID, ErrMissingColumn, strings.Join(e.Columns, ", "))
}

func (e *MissingColumnError) Unwrap() error {
	return ErrMissingColumn
}
