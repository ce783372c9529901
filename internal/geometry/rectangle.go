package geometry

import "math"

// Size is the width and height of a rectangle.
type Size struct {
	Width  float64 `json:"width" msgpack:"width"`
	Height float64 `json:"height" msgpack:"height"`
}

// Corners holds the four corners of an axis-aligned rectangle.
type Corners struct {
	TopLeft     Position
	TopRight    Position
	BottomLeft  Position
	BottomRight Position
}

// Rectangle is an axis-aligned rectangle centered at Position.
type Rectangle struct {
	Position Position `json:"position" msgpack:"position"`
	Size     Size     `json:"size" msgpack:"size"`
}

// Corners returns the rectangle's corners.
func (r Rectangle) Corners() Corners {
	hw, hh := r.Size.Width/2, r.Size.Height/2
	return Corners{
		TopLeft:     Position{X: r.Position.X - hw, Y: r.Position.Y - hh},
		TopRight:    Position{X: r.Position.X + hw, Y: r.Position.Y - hh},
		BottomLeft:  Position{X: r.Position.X - hw, Y: r.Position.Y + hh},
		BottomRight: Position{X: r.Position.X + hw, Y: r.Position.Y + hh},
	}
}

// ContainsPosition reports whether p lies inside the rectangle, edges included.
func (r Rectangle) ContainsPosition(p Position) bool {
	c := r.Corners()
	return p.X >= c.TopLeft.X && p.X <= c.BottomRight.X &&
		p.Y >= c.TopLeft.Y && p.Y <= c.BottomRight.Y
}

// ClosestPositionWithin returns the point of the rectangle nearest to p.
// Points already inside are returned unchanged.
func (r Rectangle) ClosestPositionWithin(p Position) Position {
	c := r.Corners()
	return Position{
		X: math.Min(math.Max(p.X, c.TopLeft.X), c.BottomRight.X),
		Y: math.Min(math.Max(p.Y, c.TopLeft.Y), c.BottomRight.Y),
	}
}

// CenterPoint implements Shape.
func (r Rectangle) CenterPoint() Position {
	return r.Position
}

// Contains implements Shape.
func (r Rectangle) Contains(p Position) bool {
	return r.ContainsPosition(p)
}
