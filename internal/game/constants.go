package game

// Default world settings, used when the configuration does not override them.
const (
	DefaultMapWidth  = 3000
	DefaultMapHeight = 3000
)

// Fruits
const (
	DefaultFruitCount  = 500
	DefaultFruitRadius = 10
)

// Players
const (
	DefaultInitialPlayerRadius = 20
)

// Movement and growth
const (
	// speedDivisor scales the per-tick displacement: tickRate / (speedDivisor * score).
	speedDivisor = 10
	// growthDivisor is applied to a fruit's radius (integer division) to get
	// the radius a body part gains by eating it.
	growthDivisor = 10
)

// Game timing
const (
	DefaultMaxTickRate = 300 // ticks per second
)
