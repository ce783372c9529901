package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/arthurguedes375/agar.io/internal/game"
	"github.com/arthurguedes375/agar.io/internal/geometry"
	"github.com/arthurguedes375/agar.io/internal/sim"
	"github.com/arthurguedes375/agar.io/internal/ws"
)

// CommandSender queues commands for the simulation loop.
type CommandSender interface {
	Send(ctx context.Context, cmd sim.Command) error
}

// SpawnFunc picks where a new player's head starts.
type SpawnFunc func() geometry.Position

// Router dispatches incoming viewer messages and renders per-viewer frames.
type Router struct {
	engine CommandSender
	spawn  SpawnFunc
	radius int

	// viewers tracks client ID -> viewer, shared with the broadcaster.
	viewers map[string]*viewer
	mu      sync.RWMutex
}

type viewer struct {
	client   *ws.Client
	playerID string
	encoding string
	view     game.MapView
	// head is the viewer's head in view-local coordinates as of the last frame.
	head geometry.Position
}

// NewRouter creates a new message router. New players spawn where spawn
// says with a head of the given radius.
func NewRouter(engine CommandSender, spawn SpawnFunc, radius int) *Router {
	return &Router{
		engine:  engine,
		spawn:   spawn,
		radius:  radius,
		viewers: make(map[string]*viewer),
	}
}

// ViewerCount returns the number of joined viewers.
func (r *Router) ViewerCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.viewers)
}

// PlayerID returns the player ID for a client, or empty string if not found.
func (r *Router) PlayerID(clientID string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if v, ok := r.viewers[clientID]; ok {
		return v.playerID
	}
	return ""
}

// HandleMessage parses and routes an incoming client message.
func (r *Router) HandleMessage(cm *ws.ClientMessage) {
	var msg ws.Message
	if err := json.Unmarshal(cm.Data, &msg); err != nil {
		slog.Warn("invalid message format", "client", cm.Client.ID, "error", err)
		cm.Client.SendMessage(ws.NewErrorMessage("invalid message format"))
		return
	}

	if msg.Type == ws.TypeJoin {
		r.HandleJoin(cm.Client, msg)
		return
	}

	// Everything else needs a player.
	if r.PlayerID(cm.Client.ID) == "" {
		cm.Client.SendMessage(ws.NewErrorMessage("join required"))
		return
	}

	switch msg.Type {
	case ws.TypeResize:
		r.HandleResize(cm.Client, msg)
	case ws.TypePause:
		r.send(cm.Client, sim.TogglePause{})
	case ws.TypePointer:
		r.HandlePointer(cm.Client, msg)
	default:
		slog.Warn("unknown message type", "type", msg.Type, "client", cm.Client.ID)
		cm.Client.SendMessage(ws.NewErrorMessage("unknown message type: " + msg.Type))
	}
}

// HandleDisconnect forgets the client's viewer. Its player stays in the world.
func (r *Router) HandleDisconnect(client *ws.Client) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.viewers[client.ID]; ok {
		delete(r.viewers, client.ID)
		slog.Info("viewer left", "client", client.ID, "player", v.playerID)
	}
}

func (r *Router) send(client *ws.Client, cmd sim.Command) bool {
	if err := r.engine.Send(context.Background(), cmd); err != nil {
		slog.Warn("command rejected", "client", client.ID, "error", err)
		client.SendMessage(ws.NewErrorMessage("simulation unavailable"))
		return false
	}
	return true
}
