package game

import (
	"errors"
	"math/rand"

	"github.com/google/uuid"

	"github.com/arthurguedes375/agar.io/internal/geometry"
)

// ErrEmptyPlayer is returned when a player without body parts is offered to the world.
var ErrEmptyPlayer = errors.New("player has no body parts")

// Player is a single grower. BodyParts is never empty; the first part is the
// head and is what the camera follows.
type Player struct {
	ID        string            `json:"id" msgpack:"id"`
	Name      string            `json:"name" msgpack:"name"`
	BodyParts []geometry.Circle `json:"body_parts" msgpack:"body_parts"`
	Direction geometry.Position `json:"direction" msgpack:"direction"`
}

// NewPlayer creates a player with a fresh id and a single head of the given
// radius at spawn. It does not move until a direction is set.
func NewPlayer(name string, spawn geometry.Position, radius int) *Player {
	return &Player{
		ID:   uuid.New().String(),
		Name: name,
		BodyParts: []geometry.Circle{
			{Center: spawn, Radius: radius},
		},
	}
}

// RandomSpawn returns a uniformly random position inside a width x height map.
func RandomSpawn(rng *rand.Rand, width, height int) geometry.Position {
	return geometry.Position{
		X: float64(rng.Intn(width)),
		Y: float64(rng.Intn(height)),
	}
}

// Head returns the first body part.
func (p *Player) Head() geometry.Circle {
	return p.BodyParts[0]
}

// Score is the sum of the body parts' radii.
func (p *Player) Score() int {
	score := 0
	for _, part := range p.BodyParts {
		score += part.Radius
	}
	return score
}

// SetDirection sets the vector the player moves along on the next running tick.
func (p *Player) SetDirection(dir geometry.Position) {
	p.Direction = dir
}

// Validate checks the invariants a player must satisfy to enter the world.
func (p *Player) Validate() error {
	if len(p.BodyParts) == 0 {
		return ErrEmptyPlayer
	}
	return nil
}

// Clone returns a deep copy of p.
func (p *Player) Clone() Player {
	c := *p
	c.BodyParts = append([]geometry.Circle(nil), p.BodyParts...)
	return c
}
