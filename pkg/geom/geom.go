// Package geom holds the planar geometry shared by the planner: points,
// foot poses and angle arithmetic. Units are meters and radians in the
// world frame.
package geom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Point is an (x, y) position in meters.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec converts p to a gonum vector.
func (p Point) Vec() r2.Vec {
	return r2.Vec{X: p.X, Y: p.Y}
}

// FromVec converts a gonum vector back to a Point.
func FromVec(v r2.Vec) Point {
	return Point{X: v.X, Y: v.Y}
}

// Finite reports whether both coordinates are real numbers.
func (p Point) Finite() bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

func (p Point) String() string {
	return fmt.Sprintf("(%.3f, %.3f)", p.X, p.Y)
}

// AngledPoint is a foot pose: a position plus a heading.
type AngledPoint struct {
	Point
	Theta float64 `json:"theta"`
}

// Pose is shorthand for building an AngledPoint.
func Pose(x, y, theta float64) AngledPoint {
	return AngledPoint{Point: Point{X: x, Y: y}, Theta: theta}
}

func (a AngledPoint) String() string {
	return fmt.Sprintf("[%.3f, %.3f, %.4f]", a.X, a.Y, a.Theta)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return r2.Norm(r2.Sub(b.Vec(), a.Vec()))
}

// Bearing returns the angle of the vector from a to b, in (-π, π].
// Bearing(a, a) is 0.
func Bearing(a, b Point) float64 {
	d := r2.Sub(b.Vec(), a.Vec())
	return math.Atan2(d.Y, d.X)
}

// AngleDiff returns the signed shortest difference x - y, normalized to (-π, π].
func AngleDiff(x, y float64) float64 {
	return math.Atan2(math.Sin(x-y), math.Cos(x-y))
}

// ClampMagnitude limits |v| to limit while keeping its sign.
func ClampMagnitude(v, limit float64) float64 {
	limit = math.Abs(limit)
	if math.Abs(v) <= limit {
		return v
	}
	return math.Copysign(limit, v)
}

// Offset returns the point reached by moving extension meters from origin
// along heading theta. Negative extensions move backwards.
func Offset(origin Point, extension, theta float64) Point {
	dir := r2.Vec{X: math.Cos(theta), Y: math.Sin(theta)}
	return FromVec(r2.Add(origin.Vec(), r2.Scale(extension, dir)))
}
