// log/stack.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
)

const modulePath = "github.com/mmp/fdsafety/"

// StackFrame is one caller recorded with a log message.
type StackFrame struct {
	File     string
	Line     int
	Function string
}

func (f StackFrame) String() string {
	return fmt.Sprintf("%s:%d:%s", f.File, f.Line, f.Function)
}

// Stack is the chain of callers that led to a log message, innermost
// first. It is logged as a list of "file:line:function" strings.
type Stack []StackFrame

func (s Stack) LogValue() slog.Value {
	strs := make([]string, len(s))
	for i, f := range s {
		strs[i] = f.String()
	}
	return slog.AnyValue(strs)
}

// callers returns the stack of the code that called the Logger method
// that calls it. Frames stop at main.main or at a goroutine's entry.
func callers() Stack {
	var pcs [16]uintptr
	n := runtime.Callers(3, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	s := make(Stack, 0, n)
	for {
		frame, more := frames.Next()
		if strings.HasPrefix(frame.Function, "runtime.") {
			break
		}
		s = append(s, StackFrame{
			File:     filepath.Base(frame.File),
			Line:     frame.Line,
			Function: strings.TrimPrefix(strings.TrimPrefix(frame.Function, modulePath), "main."),
		})
		if !more || frame.Function == "main.main" {
			break
		}
	}
	return s
}
