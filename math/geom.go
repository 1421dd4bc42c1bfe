// math/geom.go
// Copyright(c) 2022-2024 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

///////////////////////////////////////////////////////////////////////////
// Extent2D

// Extent2D represents a 2D bounding box with the two vertices at its
// opposite minimum and maximum corners.
type Extent2D struct {
	P0, P1 [2]float64
}

// EmptyExtent2D returns an Extent2D representing an empty bounding box.
func EmptyExtent2D() Extent2D {
	// Degenerate bounds
	return Extent2D{P0: [2]float64{1e30, 1e30}, P1: [2]float64{-1e30, -1e30}}
}

// Extent2DFromP2LLs returns an Extent2D that bounds all of the provided
// points.
func Extent2DFromP2LLs(pts []Point2LL) Extent2D {
	e := EmptyExtent2D()
	for _, p := range pts {
		e = Union(e, p)
	}
	return e
}

func (e Extent2D) IsEmpty() bool {
	return e.P0[0] > e.P1[0] || e.P0[1] > e.P1[1]
}

func (e Extent2D) Width() float64 {
	return e.P1[0] - e.P0[0]
}

func (e Extent2D) Height() float64 {
	return e.P1[1] - e.P0[1]
}

// Expand expands the extent by the given distance in all directions.
func (e Extent2D) Expand(d float64) Extent2D {
	return Extent2D{
		P0: [2]float64{e.P0[0] - d, e.P0[1] - d},
		P1: [2]float64{e.P1[0] + d, e.P1[1] + d}}
}

func (e Extent2D) Inside(p [2]float64) bool {
	return p[0] >= e.P0[0] && p[0] <= e.P1[0] && p[1] >= e.P0[1] && p[1] <= e.P1[1]
}

// Overlaps returns true if the two provided Extent2Ds overlap.
func Overlaps(a Extent2D, b Extent2D) bool {
	x := (a.P1[0] >= b.P0[0]) && (a.P0[0] <= b.P1[0])
	y := (a.P1[1] >= b.P0[1]) && (a.P0[1] <= b.P1[1])
	return x && y
}

func Union(e Extent2D, p [2]float64) Extent2D {
	e.P0[0] = min(e.P0[0], p[0])
	e.P0[1] = min(e.P0[1], p[1])
	e.P1[0] = max(e.P1[0], p[0])
	e.P1[1] = max(e.P1[1], p[1])
	return e
}

///////////////////////////////////////////////////////////////////////////
// Geometry

func Sub2f(a, b [2]float64) [2]float64 {
	return [2]float64{a[0] - b[0], a[1] - b[1]}
}

func Add2f(a, b [2]float64) [2]float64 {
	return [2]float64{a[0] + b[0], a[1] + b[1]}
}

func Scale2f(a [2]float64, s float64) [2]float64 {
	return [2]float64{s * a[0], s * a[1]}
}

func Dot(a, b [2]float64) float64 {
	return a[0]*b[0] + a[1]*b[1]
}

func Length2f(v [2]float64) float64 {
	return gomath.Sqrt(Dot(v, v))
}

func Distance2f(a, b [2]float64) float64 {
	return Length2f(Sub2f(a, b))
}

// ClosestPointOnSegment returns the point on segment vw closest to p
// along with the clamped parametric position of that point.
// https://stackoverflow.com/a/1501725
func ClosestPointOnSegment(p, v, w [2]float64) ([2]float64, float64) {
	l := Sub2f(w, v)
	l2 := Dot(l, l)
	if l2 == 0 {
		return v, 0
	}
	t := Clamp(Dot(Sub2f(p, v), l)/l2, 0, 1)
	return Add2f(v, Scale2f(l, t)), t
}

// Return minimum distance between line segment vw and point p
func PointSegmentDistance(p, v, w [2]float64) float64 {
	proj, _ := ClosestPointOnSegment(p, v, w)
	return Distance2f(p, proj)
}

// PointSegmentDistanceFt returns the shortest distance in feet from the
// point p to the segment vw on the Earth's surface. The projection is done
// on a local equirectangular plane (longitudes scaled by cos(latitude) at
// p), and the distance to the clamped closest point is then measured with
// the haversine formula.
func PointSegmentDistanceFt(p, v, w Point2LL) float64 {
	s := gomath.Cos(Radians(p[1]))
	flat := func(q Point2LL) [2]float64 { return [2]float64{q[0] * s, q[1]} }

	c, _ := ClosestPointOnSegment(flat(p), flat(v), flat(w))
	closest := Point2LL{p[0], c[1]}
	if s != 0 {
		closest[0] = c[0] / s
	}
	return DistanceFt(p, closest)
}
