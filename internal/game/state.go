package game

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of the simulation.
type Status int

const (
	StatusRunning Status = iota
	StatusPaused
	StatusClosed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes Status as a string.
func (s Status) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON deserializes Status from a string.
func (s *Status) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	switch str {
	case "paused":
		*s = StatusPaused
	case "closed":
		*s = StatusClosed
	default:
		*s = StatusRunning
	}
	return nil
}

// Game is the full simulation state. The simulation loop owns the live
// value; everything else only ever sees a Clone.
type Game struct {
	Map      *Map      `json:"map"`
	Status   Status    `json:"status"`
	LastTick time.Time `json:"last_tick"`
	// TickRate is the tick rate measured over the previous tick, in ticks
	// per second. It scales movement.
	TickRate int `json:"tick_rate"`
	// Tick counts completed ticks.
	Tick uint64 `json:"tick"`
}

// NewGame creates a running game on m.
func NewGame(m *Map, now time.Time) *Game {
	return &Game{
		Map:      m,
		Status:   StatusRunning,
		LastTick: now,
	}
}

// Clone returns a deep copy that shares no memory with g.
func (g *Game) Clone() Game {
	c := *g
	if g.Map != nil {
		c.Map = g.Map.Clone()
	}
	return c
}

// Player returns a copy of the player with the given id.
func (g *Game) Player(id string) (Player, bool) {
	if g.Map == nil {
		return Player{}, false
	}
	p, ok := g.Map.Players[id]
	if !ok {
		return Player{}, false
	}
	return p.Clone(), true
}

// TogglePause flips between running and paused. A closed game stays closed.
func (g *Game) TogglePause() {
	switch g.Status {
	case StatusRunning:
		g.Status = StatusPaused
	case StatusPaused:
		g.Status = StatusRunning
	}
}

// Close moves the game to its terminal state.
func (g *Game) Close() {
	g.Status = StatusClosed
}

// Active reports whether the loop should keep ticking.
func (g *Game) Active() bool {
	return g.Status == StatusRunning || g.Status == StatusPaused
}
