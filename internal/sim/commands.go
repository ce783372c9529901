package sim

import (
	"github.com/arthurguedes375/agar.io/internal/game"
	"github.com/arthurguedes375/agar.io/internal/geometry"
)

// Command is a message from the presentation side to the simulation loop.
type Command interface {
	command()
}

// RegisterPlayer admits a player into the world, replacing any player with the same id.
type RegisterPlayer struct {
	Player game.Player
}

// SetDirection changes where a registered player is heading.
type SetDirection struct {
	PlayerID  string
	Direction geometry.Position
}

// TogglePause flips the simulation between running and paused.
type TogglePause struct{}

// Quit stops the simulation for good.
type Quit struct{}

func (RegisterPlayer) command() {}
func (SetDirection) command()   {}
func (TogglePause) command()    {}
func (Quit) command()           {}
