package geometry

import "math"

// Triangle is a helper for distance computations. It is never stored.
type Triangle struct {
	P1, P2, P3 Position
}

// Hypotenuse returns the hypotenuse length of a right triangle with legs a and b.
func Hypotenuse(a, b float64) float64 {
	return math.Sqrt(a*a + b*b)
}
