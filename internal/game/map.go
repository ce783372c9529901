package game

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/arthurguedes375/agar.io/internal/geometry"
)

// ErrOutOfBounds is returned when a player offered to the world has a body part outside the map.
var ErrOutOfBounds = errors.New("player outside map bounds")

// Map holds the authoritative entities and the fixed world size. The number
// of fruits never changes after construction.
type Map struct {
	Width   int                `json:"width"`
	Height  int                `json:"height"`
	Players map[string]*Player `json:"players"`
	Fruits  []Fruit            `json:"fruits"`
}

// NewMap creates an empty map seeded with fruitCount fruits.
func NewMap(rng *rand.Rand, width, height, fruitCount, fruitRadius int) *Map {
	return &Map{
		Width:   width,
		Height:  height,
		Players: make(map[string]*Player),
		Fruits:  GenerateFruits(rng, fruitCount, width, height, fruitRadius),
	}
}

// Bounds is the rectangle covering the whole map.
func (m *Map) Bounds() geometry.Rectangle {
	return geometry.Rectangle{
		Position: geometry.Position{X: float64(m.Width) / 2, Y: float64(m.Height) / 2},
		Size:     geometry.Size{Width: float64(m.Width), Height: float64(m.Height)},
	}
}

// Center returns the middle of the map.
func (m *Map) Center() geometry.Position {
	return m.Bounds().Position
}

// AddPlayer inserts p keyed by its id, replacing any player with the same id.
// Every body part must start inside the map.
func (m *Map) AddPlayer(p *Player) error {
	if err := p.Validate(); err != nil {
		return err
	}
	bounds := m.Bounds()
	for _, part := range p.BodyParts {
		if !bounds.ContainsPosition(part.Center) {
			return fmt.Errorf("%w: body part at (%g, %g)", ErrOutOfBounds, part.Center.X, part.Center.Y)
		}
	}
	m.Players[p.ID] = p
	return nil
}

// RespawnFruit replaces fruit i with a new randomly placed fruit of the same radius.
func (m *Map) RespawnFruit(rng *rand.Rand, i int) {
	m.Fruits[i] = NewFruit(rng, m.Width, m.Height, m.Fruits[i].Radius)
}

// Clone returns a deep copy of m.
func (m *Map) Clone() *Map {
	c := &Map{
		Width:   m.Width,
		Height:  m.Height,
		Players: make(map[string]*Player, len(m.Players)),
		Fruits:  append([]Fruit(nil), m.Fruits...),
	}
	for id, p := range m.Players {
		cp := p.Clone()
		c.Players[id] = &cp
	}
	return c
}
