// event/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package event

import (
	"errors"

	"github.com/mmp/fdsafety/series"
)

var (
	// ErrMissingColumn is the same sentinel that series.Flight.Require
	// wraps, so callers can test for it from either package.
	ErrMissingColumn       = series.ErrMissingColumn
	ErrMissingThreshold    = errors.New("missing airframe threshold")
	ErrUnknownDefinition   = errors.New("unknown event definition")
	ErrInvalidCondition    = errors.New("invalid condition")
	ErrInvalidSeverity     = errors.New("invalid severity rule")
	ErrUnknownKind         = errors.New("unknown definition kind")
	ErrDuplicateDefinition = errors.New("duplicate event definition")
)
