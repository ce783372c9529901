package sim

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthurguedes375/agar.io/internal/game"
	"github.com/arthurguedes375/agar.io/internal/geometry"
)

// fakeClock advances only when the engine sleeps.
type fakeClock struct {
	t       time.Time
	sleeps  int
	onSleep func(n int)
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) sleep(_ context.Context, d time.Duration) error {
	c.t = c.t.Add(d)
	c.sleeps++
	if c.onSleep != nil {
		c.onSleep(c.sleeps)
	}
	return nil
}

func setupTestEngine(t *testing.T, maxTickRate int) (*Engine, *fakeClock) {
	t.Helper()
	rng := rand.New(rand.NewSource(1))
	m := game.NewMap(rng, 100, 100, 1, game.DefaultFruitRadius)
	m.Fruits[0].Center = geometry.Position{X: 90, Y: 90}

	clock := &fakeClock{t: time.Unix(0, 0)}
	e := NewEngine(game.NewGame(m, clock.t), rng, Options{
		MaxTickRate:    maxTickRate,
		CommandBuffer:  64,
		SnapshotBuffer: 64,
	})
	e.now = clock.now
	e.sleep = clock.sleep
	return e, clock
}

// quitAfter makes the engine receive Quit once it has slept n times.
func quitAfter(e *Engine, clock *fakeClock, n int) {
	clock.onSleep = func(count int) {
		if count == n {
			e.inbox <- Quit{}
		}
	}
}

func testPlayer(id string, at geometry.Position, radius int) game.Player {
	return game.Player{
		ID:        id,
		Name:      id,
		BodyParts: []geometry.Circle{{Center: at, Radius: radius}},
	}
}

func collect(sub *Subscription) []StateUpdate {
	var updates []StateUpdate
	for u := range sub.Updates() {
		updates = append(updates, u)
	}
	return updates
}

func TestEngine_EndToEndMovement(t *testing.T) {
	e, clock := setupTestEngine(t, 9) // 100ms budget -> measured rate 10
	quitAfter(e, clock, 2)
	sub := e.Subscribe()
	ctx := context.Background()

	require.NoError(t, e.Send(ctx, RegisterPlayer{Player: testPlayer("p", geometry.Position{X: 10, Y: 10}, 5)}))
	require.NoError(t, e.Send(ctx, SetDirection{PlayerID: "p", Direction: geometry.Position{X: 1, Y: 0}}))

	require.NoError(t, e.Run(ctx))

	updates := collect(sub)
	require.Len(t, updates, 2)

	first := updates[0].Game
	assert.Equal(t, uint64(1), first.Tick)
	assert.Equal(t, 0, first.TickRate, "nothing measured before the first tick")
	assert.Equal(t, geometry.Position{X: 10, Y: 10}, first.Map.Players["p"].Head().Center)

	second := updates[1].Game
	assert.Equal(t, uint64(2), second.Tick)
	assert.Equal(t, 10, second.TickRate)
	head := second.Map.Players["p"].Head().Center
	assert.InDelta(t, 10.2, head.X, 1e-9)
	assert.InDelta(t, 10.0, head.Y, 1e-9)
	assert.Len(t, second.Map.Fruits, 1)
}

func TestEngine_OutOfBoundsRegistrationIgnored(t *testing.T) {
	e, clock := setupTestEngine(t, 9)
	quitAfter(e, clock, 3)
	sub := e.Subscribe()
	ctx := context.Background()

	require.NoError(t, e.Send(ctx, RegisterPlayer{Player: testPlayer("outside", geometry.Position{X: 500, Y: -40}, 5)}))
	require.NoError(t, e.Send(ctx, SetDirection{PlayerID: "outside", Direction: geometry.Position{X: -1}}))
	require.NoError(t, e.Send(ctx, RegisterPlayer{Player: testPlayer("inside", geometry.Position{X: 50, Y: 50}, 5)}))

	require.NoError(t, e.Run(ctx))

	updates := collect(sub)
	require.Len(t, updates, 3)
	bounds := updates[0].Game.Map.Bounds()
	for _, u := range updates {
		assert.NotContains(t, u.Game.Map.Players, "outside")
		for _, p := range u.Game.Map.Players {
			for _, part := range p.BodyParts {
				assert.True(t, bounds.ContainsPosition(part.Center), "tick %d: %v", u.Game.Tick, part.Center)
			}
		}
	}
	assert.Contains(t, e.Final().Map.Players, "inside")
}

func TestEngine_QuitIsTerminal(t *testing.T) {
	e, _ := setupTestEngine(t, 9)
	sub := e.Subscribe()
	ctx := context.Background()

	require.NoError(t, e.Send(ctx, RegisterPlayer{Player: testPlayer("p", geometry.Position{X: 10, Y: 10}, 5)}))
	require.NoError(t, e.Send(ctx, Quit{}))
	require.NoError(t, e.Send(ctx, SetDirection{PlayerID: "p", Direction: geometry.Position{X: 1}}))
	require.NoError(t, e.Send(ctx, TogglePause{}))

	require.NoError(t, e.Run(ctx))

	assert.Empty(t, collect(sub), "no state update after quit")

	final := e.Final()
	assert.Equal(t, game.StatusClosed, final.Status)
	require.Contains(t, final.Map.Players, "p")
	assert.Equal(t, geometry.Position{}, final.Map.Players["p"].Direction, "commands after quit are not processed")

	assert.ErrorIs(t, e.Send(ctx, TogglePause{}), ErrEngineStopped)
	select {
	case <-e.Done():
	default:
		t.Fatal("done should be closed")
	}
}

func TestEngine_PauseStopsPhysicsButKeepsPublishing(t *testing.T) {
	e, clock := setupTestEngine(t, 9)
	quitAfter(e, clock, 3)
	sub := e.Subscribe()
	ctx := context.Background()

	p := testPlayer("p", geometry.Position{X: 10, Y: 10}, 5)
	p.Direction = geometry.Position{X: 1}
	require.NoError(t, e.Send(ctx, RegisterPlayer{Player: p}))
	require.NoError(t, e.Send(ctx, TogglePause{}))

	require.NoError(t, e.Run(ctx))

	updates := collect(sub)
	require.Len(t, updates, 3)
	for _, u := range updates {
		assert.Equal(t, game.StatusPaused, u.Game.Status)
		assert.Equal(t, geometry.Position{X: 10, Y: 10}, u.Game.Map.Players["p"].Head().Center)
	}
}

func TestEngine_UnknownPlayerIsIgnored(t *testing.T) {
	e, clock := setupTestEngine(t, 9)
	quitAfter(e, clock, 2)
	sub := e.Subscribe()
	ctx := context.Background()

	require.NoError(t, e.Send(ctx, SetDirection{PlayerID: "ghost", Direction: geometry.Position{X: 1}}))
	require.NoError(t, e.Send(ctx, RegisterPlayer{Player: game.Player{ID: "empty"}}))

	require.NoError(t, e.Run(ctx))

	updates := collect(sub)
	require.Len(t, updates, 2)
	assert.Empty(t, updates[1].Game.Map.Players)
}

func TestEngine_ApplyErrors(t *testing.T) {
	e, _ := setupTestEngine(t, 9)

	err := e.apply(SetDirection{PlayerID: "ghost"})
	assert.ErrorIs(t, err, ErrUnknownPlayer)

	err = e.apply(RegisterPlayer{Player: game.Player{ID: "empty"}})
	assert.ErrorIs(t, err, game.ErrEmptyPlayer)

	err = e.apply(RegisterPlayer{Player: testPlayer("outside", geometry.Position{X: 500, Y: -40}, 3)})
	assert.ErrorIs(t, err, game.ErrOutOfBounds)
	assert.NotContains(t, e.game.Map.Players, "outside")

	require.NoError(t, e.apply(RegisterPlayer{Player: testPlayer("p", geometry.Position{}, 3)}))
	require.NoError(t, e.apply(SetDirection{PlayerID: "p", Direction: geometry.Position{Y: -1}}))
	assert.Equal(t, geometry.Position{Y: -1}, e.game.Map.Players["p"].Direction)
}

func TestEngine_RegisteredPlayerIsCopied(t *testing.T) {
	e, _ := setupTestEngine(t, 9)
	p := testPlayer("p", geometry.Position{X: 1, Y: 1}, 3)

	require.NoError(t, e.apply(RegisterPlayer{Player: p}))
	p.BodyParts[0].Center.X = 50

	assert.Equal(t, 1.0, e.game.Map.Players["p"].Head().Center.X)
}

func TestEngine_TicksAreOrdered(t *testing.T) {
	e, clock := setupTestEngine(t, 59)
	quitAfter(e, clock, 20)
	sub := e.Subscribe()

	require.NoError(t, e.Run(context.Background()))

	updates := collect(sub)
	require.Len(t, updates, 20)
	for i, u := range updates {
		assert.Equal(t, uint64(i+1), u.Game.Tick)
	}
	assert.Equal(t, 60, updates[len(updates)-1].Game.TickRate)
}

func TestEngine_FeedClosedByConsumerIsFatal(t *testing.T) {
	e, _ := setupTestEngine(t, 9)
	e.Feed().Close()

	err := e.Run(context.Background())
	assert.ErrorIs(t, err, ErrFeedClosed)
}

func TestEngine_ContextCancellation(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := game.NewMap(rng, 100, 100, 5, game.DefaultFruitRadius)
	e := NewEngine(game.NewGame(m, time.Now()), rng, Options{MaxTickRate: 1})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- e.Run(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("engine did not stop after cancellation")
	}
}

func TestEngine_RealClockPacing(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	m := game.NewMap(rng, 100, 100, 5, game.DefaultFruitRadius)
	e := NewEngine(game.NewGame(m, time.Now()), rng, Options{MaxTickRate: 49, SnapshotBuffer: 16})
	sub := e.Subscribe()
	ctx := context.Background()

	go func() {
		for u := range sub.Updates() {
			if u.Game.Tick == 5 {
				_ = e.Send(ctx, Quit{})
			}
		}
	}()

	start := time.Now()
	require.NoError(t, e.Run(ctx))
	elapsed := time.Since(start)

	// five ticks of a 20ms budget at least
	assert.GreaterOrEqual(t, elapsed, 80*time.Millisecond)
	final := e.Final()
	assert.Greater(t, final.TickRate, 0)
	assert.LessOrEqual(t, final.TickRate, 50)
}
