package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/arthurguedes375/agar.io/internal/game"
)

var (
	// ErrUnknownPlayer is reported when a command names a player that was never registered.
	ErrUnknownPlayer = errors.New("unknown player")
	// ErrEngineStopped is returned by Send once the loop has exited.
	ErrEngineStopped = errors.New("engine stopped")
)

// Options tunes an Engine.
type Options struct {
	MaxTickRate    int
	CommandBuffer  int
	SnapshotBuffer int
}

// Engine runs the authoritative simulation loop. Only the goroutine
// executing Run touches the game; everyone else talks to it through Send
// and reads it through the Feed.
type Engine struct {
	game        *game.Game
	rng         *rand.Rand
	inbox       chan Command
	feed        *Feed
	maxTickRate int
	done        chan struct{}

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewEngine creates an engine around g. g must not be used by the caller afterwards.
func NewEngine(g *game.Game, rng *rand.Rand, opts Options) *Engine {
	if opts.MaxTickRate <= 0 {
		opts.MaxTickRate = game.DefaultMaxTickRate
	}
	if opts.CommandBuffer <= 0 {
		opts.CommandBuffer = 1024
	}
	return &Engine{
		game:        g,
		rng:         rng,
		inbox:       make(chan Command, opts.CommandBuffer),
		feed:        NewFeed(opts.SnapshotBuffer),
		maxTickRate: opts.MaxTickRate,
		done:        make(chan struct{}),
		now:         time.Now,
		sleep:       sleepContext,
	}
}

// Feed returns the outbound snapshot feed.
func (e *Engine) Feed() *Feed {
	return e.feed
}

// Subscribe is shorthand for e.Feed().Subscribe().
func (e *Engine) Subscribe() *Subscription {
	return e.feed.Subscribe()
}

// Done is closed when Run returns.
func (e *Engine) Done() <-chan struct{} {
	return e.done
}

// Send queues cmd for the next tick. It blocks while the inbox is full.
// Once Run has returned it fails with ErrEngineStopped. A Send that races
// with Run exiting may still return nil and its command is never applied,
// so a nil error means queued, not applied.
func (e *Engine) Send(ctx context.Context, cmd Command) error {
	select {
	case <-e.done:
		return ErrEngineStopped
	default:
	}

	select {
	case e.inbox <- cmd:
		return nil
	case <-e.done:
		return ErrEngineStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Final returns a copy of the game as the loop left it. Only call it after Run has returned.
func (e *Engine) Final() game.Game {
	return e.game.Clone()
}

// Run ticks until a Quit command is processed, the context is cancelled or
// the feed is closed by its consumers. The feed is closed when Run returns.
func (e *Engine) Run(ctx context.Context) error {
	defer close(e.done)
	defer e.feed.Close()

	e.game.LastTick = e.now()
	slog.Info("simulation started",
		"width", e.game.Map.Width,
		"height", e.game.Map.Height,
		"fruits", len(e.game.Map.Fruits),
		"max_tick_rate", e.maxTickRate,
	)

	for e.game.Active() {
		e.drain()
		if !e.game.Active() {
			break
		}

		if e.game.Status == game.StatusRunning {
			meals := game.Step(e.game.Map, e.game.TickRate, e.rng)
			for _, m := range meals {
				slog.Debug("fruit eaten", "player", m.PlayerID, "growth", m.Growth)
			}
		}

		e.game.Tick++
		if err := e.feed.Publish(StateUpdate{Game: e.game.Clone()}); err != nil {
			return fmt.Errorf("publish tick %d: %w", e.game.Tick, err)
		}

		if err := e.pace(ctx); err != nil {
			slog.Info("simulation cancelled", "tick", e.game.Tick)
			return err
		}
		e.measure()
	}

	slog.Info("simulation stopped", "tick", e.game.Tick, "players", len(e.game.Map.Players))
	return nil
}

// drain applies every queued command without blocking. Processing stops
// as soon as the game is closed.
func (e *Engine) drain() {
	for {
		select {
		case cmd := <-e.inbox:
			if err := e.apply(cmd); err != nil {
				slog.Warn("command ignored", "command", fmt.Sprintf("%T", cmd), "error", err)
			}
			if !e.game.Active() {
				return
			}
		default:
			return
		}
	}
}

func (e *Engine) apply(cmd Command) error {
	switch c := cmd.(type) {
	case RegisterPlayer:
		p := c.Player.Clone()
		if err := e.game.Map.AddPlayer(&p); err != nil {
			return fmt.Errorf("register player %q: %w", p.ID, err)
		}
		slog.Info("player registered", "player", p.ID, "name", p.Name)
	case SetDirection:
		p, ok := e.game.Map.Players[c.PlayerID]
		if !ok {
			return fmt.Errorf("set direction for %q: %w", c.PlayerID, ErrUnknownPlayer)
		}
		p.SetDirection(c.Direction)
	case TogglePause:
		e.game.TogglePause()
		slog.Info("simulation toggled", "status", e.game.Status.String())
	case Quit:
		e.game.Close()
	default:
		return fmt.Errorf("unsupported command %T", cmd)
	}
	return nil
}

func (e *Engine) pace(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	elapsed := e.now().Sub(e.game.LastTick)
	if d := sleepFor(elapsed, tickBudget(e.maxTickRate)); d > 0 {
		return e.sleep(ctx, d)
	}
	return nil
}

func (e *Engine) measure() {
	now := e.now()
	if rate, ok := measureRate(now.Sub(e.game.LastTick)); ok {
		e.game.TickRate = rate
	}
	e.game.LastTick = now
}
