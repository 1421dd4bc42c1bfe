// util/error.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mmp/fdsafety/log"
)

// ErrorLogger is a small utility class used to log errors when validating
// reference data. It tracks context about what is currently being
// validated and accumulates multiple errors, making it possible to log
// errors while still continuing validation.
type ErrorLogger struct {
	// Tracked via Push()/Pop() calls to remember what we're looking at if
	// an error is found.
	hierarchy []string
	// Actual error messages to report.
	errors []string
}

func (e *ErrorLogger) Push(s string) {
	e.hierarchy = append(e.hierarchy, s)
}

func (e *ErrorLogger) Pop() {
	e.hierarchy = e.hierarchy[:len(e.hierarchy)-1]
}

func (e *ErrorLogger) ErrorString(s string, args ...any) {
	e.errors = append(e.errors, e.prefix()+fmt.Sprintf(s, args...))
}

func (e *ErrorLogger) Error(err error) {
	e.errors = append(e.errors, e.prefix()+err.Error())
}

func (e *ErrorLogger) prefix() string {
	if len(e.hierarchy) == 0 {
		return ""
	}
	return strings.Join(e.hierarchy, " / ") + ": "
}

func (e *ErrorLogger) HaveErrors() bool {
	return len(e.errors) > 0
}

func (e *ErrorLogger) Count() int {
	return len(e.errors)
}

func (e *ErrorLogger) PrintErrors(lg *log.Logger) {
	for _, err := range e.errors {
		lg.Errorf("%+v", err)
	}
}

func (e *ErrorLogger) String() string {
	return strings.Join(e.errors, "\n")
}

// Err returns nil if no errors have been reported and otherwise an error
// that joins all of them.
func (e *ErrorLogger) Err() error {
	if !e.HaveErrors() {
		return nil
	}
	errs := make([]error, len(e.errors))
	for i, s := range e.errors {
		errs[i] = errors.New(s)
	}
	return errors.Join(errs...)
}

func (e *ErrorLogger) CurrentDepth() int {
	if e == nil {
		return 0
	}
	return len(e.hierarchy)
}
