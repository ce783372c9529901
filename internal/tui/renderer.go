package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/arthurguedes375/agar.io/internal/game"
	"github.com/arthurguedes375/agar.io/internal/geometry"
	"github.com/arthurguedes375/agar.io/internal/sim"
)

// DefaultCellScale is how many world units one terminal cell covers.
const DefaultCellScale = 10

// Screen is the part of tcell.Screen the renderer draws on.
type Screen interface {
	Size() (width, height int)
	Clear()
	SetContent(x, y int, primary rune, combining []rune, style tcell.Style)
	Show()
	Sync()
	PollEvent() tcell.Event
}

// CommandSender queues commands for the simulation loop.
type CommandSender interface {
	Send(ctx context.Context, cmd sim.Command) error
}

// Chimer plays the growth cue.
type Chimer interface {
	Chime()
}

var (
	fruitStyle  = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	selfStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorBlack).Background(tcell.ColorWhite)

	// Opponent colors. Yellow is reserved for the local player.
	opponentColors = []tcell.Color{
		tcell.ColorRed,
		tcell.ColorBlue,
		tcell.ColorFuchsia,
		tcell.ColorAqua,
		tcell.ColorOrange,
		tcell.ColorWhite,
	}
)

// opponentStyle derives a stable color from the bytes of a player's name.
func opponentStyle(name string) tcell.Style {
	sum := 0
	for i := 0; i < len(name); i++ {
		sum += int(name[i])
	}
	return tcell.StyleDefault.Foreground(opponentColors[sum%len(opponentColors)])
}

// Renderer draws one player's view of the world and turns terminal input
// into commands.
type Renderer struct {
	screen   Screen
	engine   CommandSender
	playerID string
	chime    Chimer

	grid  Grid
	view  game.MapView
	score int
	last  *sim.StateUpdate
}

// NewRenderer creates a renderer for playerID drawing on screen at scale
// world units per cell. chime may be nil.
func NewRenderer(screen Screen, engine CommandSender, playerID string, scale float64, chime Chimer) *Renderer {
	if scale <= 0 {
		scale = DefaultCellScale
	}
	r := &Renderer{
		screen:   screen,
		engine:   engine,
		playerID: playerID,
		chime:    chime,
		grid:     Grid{Scale: scale},
	}
	r.resize()
	return r
}

// Run draws every update from sub and forwards input until the feed closes
// or ctx is done.
func (r *Renderer) Run(ctx context.Context, sub *sim.Subscription) error {
	defer sub.Close()

	stop := make(chan struct{})
	defer close(stop)
	events := make(chan tcell.Event, 100)
	go func() {
		for {
			ev := r.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-stop:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			r.handleEvent(ctx, ev)
		case u, ok := <-sub.Updates():
			if !ok {
				return nil
			}
			r.draw(u)
		}
	}
}

func (r *Renderer) handleEvent(ctx context.Context, ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		r.resize()
		r.screen.Sync()
		if r.last != nil {
			r.draw(*r.last)
		}
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape:
			r.send(ctx, sim.TogglePause{})
		case ev.Key() == tcell.KeyCtrlC,
			ev.Key() == tcell.KeyRune && ev.Rune() == 'q',
			ev.Key() == tcell.KeyRune && ev.Rune() == 'c' && ev.Modifiers()&tcell.ModCtrl != 0:
			r.send(ctx, sim.Quit{})
		}
	case *tcell.EventMouse:
		x, y := ev.Position()
		if y >= r.grid.Rows {
			return
		}
		r.send(ctx, sim.SetDirection{PlayerID: r.playerID, Direction: r.grid.Steer(x, y)})
	}
}

func (r *Renderer) send(ctx context.Context, cmd sim.Command) {
	if err := r.engine.Send(ctx, cmd); err != nil && !errors.Is(err, sim.ErrEngineStopped) {
		slog.Warn("command not sent", "command", fmt.Sprintf("%T", cmd), "error", err)
	}
}

// resize fits the grid to the screen, keeping the last row for the status line.
func (r *Renderer) resize() {
	cols, rows := r.screen.Size()
	r.grid.Cols = max(cols, 0)
	r.grid.Rows = max(rows-1, 0)
	r.view.Resize(r.grid.ViewSize())
}

func (r *Renderer) draw(u sim.StateUpdate) {
	r.last = &u
	g := u.Game

	if p, ok := g.Player(r.playerID); ok {
		r.view.Follow(p.Head().Center)
		score := p.Score()
		if score > r.score && r.score > 0 && r.chime != nil {
			r.chime.Chime()
		}
		r.score = score
	} else {
		r.view.Follow(g.Map.Center())
	}

	r.screen.Clear()
	for _, f := range r.view.VisibleFruits(g.Map) {
		if x, y, ok := r.grid.Cell(f.Center); ok {
			r.screen.SetContent(x, y, '•', nil, fruitStyle)
		}
	}
	players := r.view.VisiblePlayers(g.Map)
	styles := make([]tcell.Style, len(players))
	for i, p := range players {
		style, glyph := opponentStyle(p.Name), '▓'
		if p.ID == r.playerID {
			style, glyph = selfStyle, '█'
		}
		styles[i] = style
		for _, part := range p.BodyParts {
			for _, c := range r.grid.Disc(part) {
				r.screen.SetContent(c[0], c[1], glyph, nil, style)
			}
		}
	}
	// Labels go on top of every body.
	for i, p := range players {
		r.drawLabel(p.Head(), p.Name, styles[i])
	}
	r.drawStatus(g)
	r.screen.Show()
}

// drawLabel writes name centered on the row above head, or below it when
// head is on the top row.
func (r *Renderer) drawLabel(head geometry.Circle, name string, style tcell.Style) {
	hx, hy, _ := r.grid.Cell(head.Center)
	y := hy - 1
	if y < 0 {
		y = hy + 1
	}
	if y < 0 || y >= r.grid.Rows {
		return
	}
	x := hx - utf8.RuneCountInString(name)/2
	for _, ch := range name {
		if x >= 0 && x < r.grid.Cols {
			r.screen.SetContent(x, y, ch, nil, style)
		}
		x++
	}
}

func (r *Renderer) drawStatus(g game.Game) {
	line := fmt.Sprintf(" score %d | %d ticks/s | tick %d | %s | esc pause, q quit ",
		r.score, g.TickRate, g.Tick, g.Status)
	x := 0
	for _, ch := range line {
		if x >= r.grid.Cols {
			break
		}
		r.screen.SetContent(x, r.grid.Rows, ch, nil, statusStyle)
		x++
	}
	for ; x < r.grid.Cols; x++ {
		r.screen.SetContent(x, r.grid.Rows, ' ', nil, statusStyle)
	}
}
