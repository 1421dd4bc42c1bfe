// proximity/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package proximity

import (
	"errors"
	"fmt"
)

var ErrShortClosureWindow = errors.New("short rate-of-closure window")

// ClosureWindowError reports that the rate-of-closure window could not be
// extended by the requested number of samples on one or both sides. The
// series computed over the shorter window is still returned.
type ClosureWindowError struct {
	Want   int
	Before int
	After  int
}

func (e *ClosureWindowError) Error() string {
	return fmt.Sprintf("%s: wanted %d samples each side, got %d before and %d after",
		ErrShortClosureWindow, e.Want, e.Before, e.After)
}

func (e *ClosureWindowError) Unwrap() error {
	return ErrShortClosureWindow
}
