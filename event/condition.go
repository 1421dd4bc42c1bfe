// event/condition.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package event

import (
	"fmt"
	gomath "math"
	"slices"

	"github.com/mmp/fdsafety/series"
)

type Op string

const (
	GT Op = ">"
	GE Op = ">="
	LT Op = "<"
	LE Op = "<="
	// AbsGT compares the magnitude of the sample.
	AbsGT Op = "|>|"
)

// Condition is a predicate over one line of a flight. A leaf compares a
// single column against a value; otherwise All or Any combine children.
// A missing (NaN) sample never satisfies a leaf.
type Condition struct {
	Column string      `json:"column,omitempty"`
	Op     Op          `json:"op,omitempty"`
	Value  float64     `json:"value,omitempty"`
	All    []Condition `json:"all,omitempty"`
	Any    []Condition `json:"any,omitempty"`
}

func Rule(column string, op Op, value float64) Condition {
	return Condition{Column: column, Op: op, Value: value}
}

func All(c ...Condition) Condition {
	return Condition{All: c}
}

func Any(c ...Condition) Condition {
	return Condition{Any: c}
}

func (c Condition) isLeaf() bool {
	return c.Column != ""
}

// Columns returns the sorted set of columns the condition reads.
func (c Condition) Columns() []string {
	var cols []string
	var walk func(c Condition)
	walk = func(c Condition) {
		if c.isLeaf() {
			cols = append(cols, c.Column)
		}
		for _, ch := range c.All {
			walk(ch)
		}
		for _, ch := range c.Any {
			walk(ch)
		}
	}
	walk(c)

	slices.Sort(cols)
	return slices.Compact(cols)
}

func (c Condition) Validate() error {
	switch {
	case c.isLeaf() && (len(c.All) > 0 || len(c.Any) > 0):
		return fmt.Errorf("%w: %q has both a rule and children", ErrInvalidCondition, c.Column)
	case len(c.All) > 0 && len(c.Any) > 0:
		return fmt.Errorf("%w: both all and any given", ErrInvalidCondition)
	case !c.isLeaf() && len(c.All) == 0 && len(c.Any) == 0:
		return fmt.Errorf("%w: empty condition", ErrInvalidCondition)
	}

	if c.isLeaf() {
		switch c.Op {
		case GT, GE, LT, LE, AbsGT:
		default:
			return fmt.Errorf("%w: %q: unknown op %q", ErrInvalidCondition, c.Column, c.Op)
		}
		if gomath.IsNaN(c.Value) || gomath.IsInf(c.Value, 0) {
			return fmt.Errorf("%w: %q: non-finite value", ErrInvalidCondition, c.Column)
		}
	}

	for _, ch := range c.All {
		if err := ch.Validate(); err != nil {
			return err
		}
	}
	for _, ch := range c.Any {
		if err := ch.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Compile binds the condition to the flight's columns and returns a
// function that evaluates it at a given line.
func (c Condition) Compile(f *series.Flight) (func(line int) bool, error) {
	if err := f.Require(c.Columns(), nil); err != nil {
		return nil, err
	}
	return c.compile(f), nil
}

func (c Condition) compile(f *series.Flight) func(int) bool {
	if c.isLeaf() {
		s, v := f.Double(c.Column), c.Value
		cmp := func(x float64) bool { return false }
		switch c.Op {
		case GT:
			cmp = func(x float64) bool { return x > v }
		case GE:
			cmp = func(x float64) bool { return x >= v }
		case LT:
			cmp = func(x float64) bool { return x < v }
		case LE:
			cmp = func(x float64) bool { return x <= v }
		case AbsGT:
			cmp = func(x float64) bool { return gomath.Abs(x) > v }
		}
		return func(line int) bool {
			x := s.At(line)
			return !gomath.IsNaN(x) && cmp(x)
		}
	}

	if len(c.All) > 0 {
		children := make([]func(int) bool, len(c.All))
		for i, ch := range c.All {
			children[i] = ch.compile(f)
		}
		return func(line int) bool {
			for _, ch := range children {
				if !ch(line) {
					return false
				}
			}
			return true
		}
	}

	children := make([]func(int) bool, len(c.Any))
	for i, ch := range c.Any {
		children[i] = ch.compile(f)
	}
	return func(line int) bool {
		for _, ch := range children {
			if ch(line) {
				return true
			}
		}
		return false
	}
}

func (c Condition) String() string {
	if c.isLeaf() {
		return fmt.Sprintf("%s %s %g", c.Column, c.Op, c.Value)
	}
	join, children := " && ", c.All
	if len(c.Any) > 0 {
		join, children = " || ", c.Any
	}
	s := "("
	for i, ch := range children {
		if i > 0 {
			s += join
		}
		s += ch.String()
	}
	return s + ")"
}
