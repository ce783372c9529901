package game

import (
	"sort"

	"github.com/arthurguedes375/agar.io/internal/geometry"
)

// MapView is the window a viewer looks through. It is centered on the
// viewer's head and sized to the display. It never writes to the world.
type MapView struct {
	rect geometry.Rectangle
}

// NewMapView creates a view centered at center with the given display size.
func NewMapView(center geometry.Position, width, height float64) MapView {
	return MapView{
		rect: geometry.Rectangle{
			Position: center,
			Size:     geometry.Size{Width: width, Height: height},
		},
	}
}

// Rect returns the view rectangle in world coordinates.
func (v MapView) Rect() geometry.Rectangle {
	return v.rect
}

// Follow re-centers the view on p.
func (v *MapView) Follow(p geometry.Position) {
	v.rect.Position = p
}

// Resize sets the display size.
func (v *MapView) Resize(width, height float64) {
	v.rect.Size = geometry.Size{Width: width, Height: height}
}

// CenterPoint implements geometry.Shape.
func (v MapView) CenterPoint() geometry.Position {
	return v.rect.Position
}

// Contains implements geometry.Shape.
func (v MapView) Contains(p geometry.Position) bool {
	return v.rect.ContainsPosition(p)
}

// IsVisible reports whether any part of c can be seen: either its center is
// inside the view, or the view's closest point to that center is inside c.
func (v MapView) IsVisible(c geometry.Circle) bool {
	return v.rect.ContainsPosition(c.Center) || c.Holds(v.rect.ClosestPositionWithin(c.Center))
}

// MapPosition translates a world position into view-local coordinates.
func (v MapView) MapPosition(p geometry.Position) geometry.Position {
	return p.Sub(v.rect.Corners().TopLeft)
}

// VisibleFruits returns the visible fruits in view-local coordinates.
func (v MapView) VisibleFruits(m *Map) []Fruit {
	var fruits []Fruit
	for _, f := range m.Fruits {
		if !v.IsVisible(f.Circle) {
			continue
		}
		f.Center = v.MapPosition(f.Center)
		fruits = append(fruits, f)
	}
	return fruits
}

// VisiblePlayers returns copies of the players with at least one visible
// body part, ordered by id. All body parts of a returned player are
// remapped, not only the visible ones.
func (v MapView) VisiblePlayers(m *Map) []Player {
	var players []Player
	for _, p := range m.Players {
		if !v.anyVisible(p.BodyParts) {
			continue
		}
		cp := p.Clone()
		for i := range cp.BodyParts {
			cp.BodyParts[i].Center = v.MapPosition(cp.BodyParts[i].Center)
		}
		players = append(players, cp)
	}
	sort.Slice(players, func(i, j int) bool { return players[i].ID < players[j].ID })
	return players
}

func (v MapView) anyVisible(parts []geometry.Circle) bool {
	for _, part := range parts {
		if v.IsVisible(part) {
			return true
		}
	}
	return false
}
