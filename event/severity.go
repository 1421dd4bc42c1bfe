// event/severity.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package event

import (
	"fmt"
	gomath "math"

	"github.com/mmp/fdsafety/series"
)

type SeverityKind string

const (
	MaxAbs       SeverityKind = "max_abs"
	Max          SeverityKind = "max"
	Min          SeverityKind = "min"
	Sum          SeverityKind = "sum"
	MaxDeviation SeverityKind = "max_deviation"
	// Euclidean is the largest magnitude of the vector formed by the
	// columns at one sample.
	Euclidean SeverityKind = "euclidean"
)

// SeverityRule says how an event's severity accumulates over the samples
// of its span. Reference is only used by MaxDeviation.
type SeverityRule struct {
	Kind      SeverityKind `json:"kind"`
	Columns   []string     `json:"columns"`
	Reference float64      `json:"reference,omitempty"`
}

func (r SeverityRule) Validate() error {
	switch r.Kind {
	case MaxAbs, Max, Min, Sum, MaxDeviation:
		if len(r.Columns) != 1 {
			return fmt.Errorf("%w: %s takes one column, got %d", ErrInvalidSeverity, r.Kind, len(r.Columns))
		}
	case Euclidean:
		if len(r.Columns) == 0 {
			return fmt.Errorf("%w: euclidean needs at least one column", ErrInvalidSeverity)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidSeverity, r.Kind)
	}
	return nil
}

// severity accumulates a running value over a span. A NaN running value
// is replaced by the first valid sample.
type severity struct {
	sample  func(line int) float64
	combine func(cur, v float64) float64
}

func (s severity) init(line int) float64 {
	return s.sample(line)
}

func (s severity) update(cur float64, line int) float64 {
	v := s.sample(line)
	switch {
	case gomath.IsNaN(v):
		return cur
	case gomath.IsNaN(cur):
		return v
	default:
		return s.combine(cur, v)
	}
}

func (r SeverityRule) compile(f *series.Flight) (severity, error) {
	if err := r.Validate(); err != nil {
		return severity{}, err
	}
	if err := f.Require(r.Columns, nil); err != nil {
		return severity{}, err
	}

	cols := make([]*series.DoubleSeries, len(r.Columns))
	for i, c := range r.Columns {
		cols[i] = f.Double(c)
	}
	col := cols[0]

	switch r.Kind {
	case MaxAbs:
		return severity{
			sample:  func(l int) float64 { return gomath.Abs(col.At(l)) },
			combine: gomath.Max,
		}, nil
	case Max:
		return severity{sample: col.At, combine: gomath.Max}, nil
	case Min:
		return severity{sample: col.At, combine: gomath.Min}, nil
	case Sum:
		return severity{
			sample:  col.At,
			combine: func(cur, v float64) float64 { return cur + v },
		}, nil
	case MaxDeviation:
		ref := r.Reference
		return severity{
			sample:  func(l int) float64 { return gomath.Abs(col.At(l) - ref) },
			combine: gomath.Max,
		}, nil
	default: // Euclidean
		return severity{
			sample: func(l int) float64 {
				sum := 0.0
				for _, c := range cols {
					sum += c.At(l) * c.At(l)
				}
				return gomath.Sqrt(sum)
			},
			combine: gomath.Max,
		}, nil
	}
}
