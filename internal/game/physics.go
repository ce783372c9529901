package game

import (
	"math/rand"

	"github.com/arthurguedes375/agar.io/internal/geometry"
)

// Displacement is the distance-per-tick vector for a player with the given
// direction and score at the given measured tick rate. Bigger players move
// proportionally slower.
func Displacement(dir geometry.Position, tickRate, score int) geometry.Position {
	if score <= 0 {
		return geometry.Position{}
	}
	return dir.Scale(float64(tickRate) / float64(speedDivisor*score))
}

// MovePlayers advances every body part of every player. A move whose target
// falls outside the map is rejected and the part stays where it was.
func MovePlayers(m *Map, tickRate int) {
	bounds := m.Bounds()
	for _, p := range m.Players {
		d := Displacement(p.Direction, tickRate, p.Score())
		for i, part := range p.BodyParts {
			next := part.Center.Add(d)
			if bounds.ContainsPosition(next) {
				p.BodyParts[i].Center = next
			}
		}
	}
}

// Growth returns the radius gained by eating a fruit of the given radius.
func Growth(fruitRadius int) int {
	return fruitRadius / growthDivisor
}

// Meal records a fruit eaten during a tick.
type Meal struct {
	PlayerID string
	Fruit    geometry.Position
	Growth   int
}

// ProcessFruitCollisions grows body parts that hold a fruit's center and
// respawns each eaten fruit in place, so the fruit count never changes.
// A fruit respawned during this tick is not checked again until the next one.
func ProcessFruitCollisions(m *Map, rng *rand.Rand) []Meal {
	var meals []Meal
	respawned := make(map[int]bool)
	for _, p := range m.Players {
		for i := range p.BodyParts {
			for j := range m.Fruits {
				fruit := m.Fruits[j]
				if respawned[j] || !p.BodyParts[i].Holds(fruit.Center) {
					continue
				}
				g := Growth(fruit.Radius)
				p.BodyParts[i].Radius += g
				m.RespawnFruit(rng, j)
				respawned[j] = true
				meals = append(meals, Meal{PlayerID: p.ID, Fruit: fruit.Center, Growth: g})
			}
		}
	}
	resolvePlayerCollisions(m)
	return meals
}

// resolvePlayerCollisions is where players eating each other will go.
// Players currently pass through one another.
func resolvePlayerCollisions(_ *Map) {}

// Step runs the physics of one running tick.
func Step(m *Map, tickRate int, rng *rand.Rand) []Meal {
	MovePlayers(m, tickRate)
	return ProcessFruitCollisions(m, rng)
}
