package geometry

import "math"

// Circle is a body part or the footprint of a fruit.
type Circle struct {
	Center Position `json:"center" msgpack:"center"`
	Radius int      `json:"radius" msgpack:"radius"`
}

// Holds reports whether target lies strictly inside the circle. A point on
// the boundary is not held.
func (c Circle) Holds(target Position) bool {
	return Distance(c.Center, target) < float64(c.Radius)
}

// AngleTo returns the angle in radians from the circle's center to target,
// measured counter-clockwise from the positive x axis with y pointing up,
// so that AngleToDirection(c.AngleTo(p)) points at p on screen.
func (c Circle) AngleTo(target Position) float64 {
	return math.Atan2(c.Center.Y-target.Y, target.X-c.Center.X)
}

// CenterPoint implements Shape.
func (c Circle) CenterPoint() Position {
	return c.Center
}

// Contains implements Shape.
func (c Circle) Contains(p Position) bool {
	return c.Holds(p)
}
