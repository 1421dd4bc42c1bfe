// util/json.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package util

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// JSONError locates a decoding error in its input.
type JSONError struct {
	Line, Char int
	Err        error
}

func (e *JSONError) Error() string {
	return fmt.Sprintf("line %d, character %d: %v", e.Line, e.Char, e.Err)
}

func (e *JSONError) Unwrap() error {
	return e.Err
}

// UnmarshalJSON decodes the contents of r into out. Fields in the input
// that out doesn't have are errors so that misspelled keys in
// hand-edited files don't pass silently.
func UnmarshalJSON[T any](r io.Reader, out *T) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return UnmarshalJSONBytes(b, out)
}

func UnmarshalJSONBytes[T any](b []byte, out *T) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	err := dec.Decode(out)
	if err == nil {
		return nil
	}

	offset := dec.InputOffset()
	var serr *json.SyntaxError
	var terr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &serr):
		offset = serr.Offset
	case errors.As(err, &terr):
		offset = terr.Offset
		err = fmt.Errorf("%s value for %q invalid for type %s", terr.Value, terr.Field, terr.Type)
	case errors.Is(err, io.EOF):
		return fmt.Errorf("empty JSON input")
	}

	line, char := 1, 1
	for _, c := range b[:min(int(offset), len(b))] {
		if c == '\n' {
			line, char = line+1, 1
		} else {
			char++
		}
	}
	return &JSONError{Line: line, Char: char, Err: err}
}
