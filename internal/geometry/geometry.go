package geometry

import "math"

// Position is a point in world or view coordinates. The origin is the
// top-left corner and y grows downwards.
type Position struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// Add returns p translated by d.
func (p Position) Add(d Position) Position {
	return Position{X: p.X + d.X, Y: p.Y + d.Y}
}

// Sub returns p - d.
func (p Position) Sub(d Position) Position {
	return Position{X: p.X - d.X, Y: p.Y - d.Y}
}

// Scale multiplies both components by k.
func (p Position) Scale(k float64) Position {
	return Position{X: p.X * k, Y: p.Y * k}
}

// TriangleTo returns the right triangle formed by p, target and the point
// sharing target's x and p's y.
func (p Position) TriangleTo(target Position) Triangle {
	return Triangle{
		P1: p,
		P2: target,
		P3: Position{X: target.X, Y: p.Y},
	}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Position) float64 {
	t := a.TriangleTo(b)
	return Hypotenuse(math.Abs(t.P1.X-t.P3.X), math.Abs(t.P3.Y-t.P2.Y))
}

// AngleToDirection converts an angle in radians into a unit vector on the
// y-down screen plane.
func AngleToDirection(angle float64) Position {
	return Position{X: math.Cos(angle), Y: -math.Sin(angle)}
}

// Heading returns the unit vector pointing from from to to, or the zero
// vector when the two points coincide.
func Heading(from, to Position) Position {
	if from == to {
		return Position{}
	}
	return AngleToDirection(Circle{Center: from}.AngleTo(to))
}

// Shape is anything with a center and a containment test. Fruits, body
// parts and viewports share this capability without sharing a type.
type Shape interface {
	CenterPoint() Position
	Contains(p Position) bool
}
