package game

import (
	"math/rand"

	"github.com/arthurguedes375/agar.io/internal/geometry"
)

// Fruit is food scattered over the map. Fruits have no identity beyond
// their position and always share the same radius.
type Fruit struct {
	geometry.Circle
}

// NewFruit places a fruit of the given radius uniformly at random over
// [0,width) x [0,height).
func NewFruit(rng *rand.Rand, width, height, radius int) Fruit {
	return Fruit{
		Circle: geometry.Circle{
			Center: geometry.Position{
				X: float64(rng.Intn(width)),
				Y: float64(rng.Intn(height)),
			},
			Radius: radius,
		},
	}
}

// GenerateFruits creates amount fruits spread over the map.
func GenerateFruits(rng *rand.Rand, amount, width, height, radius int) []Fruit {
	fruits := make([]Fruit, 0, amount)
	for i := 0; i < amount; i++ {
		fruits = append(fruits, NewFruit(rng, width, height, radius))
	}
	return fruits
}
