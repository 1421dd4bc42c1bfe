// terrain/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package terrain

import "errors"

var (
	ErrInvalidCoordinate  = errors.New("invalid coordinate")
	ErrTerrainUnavailable = errors.New("terrain unavailable")
	ErrCorruptTile        = errors.New("corrupt terrain tile")
)
