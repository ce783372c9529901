package handler

import (
	"encoding/json"
	"log/slog"

	"github.com/arthurguedes375/agar.io/internal/game"
	"github.com/arthurguedes375/agar.io/internal/sim"
	"github.com/arthurguedes375/agar.io/internal/ws"
)

// Encodings a viewer can ask frames in.
const (
	EncodingJSON    = "json"
	EncodingMsgpack = "msgpack"
)

const (
	defaultViewWidth  = 800
	defaultViewHeight = 600
)

type joinRequest struct {
	Name     string  `json:"name"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	Encoding string  `json:"encoding"`
}

type joinResponse struct {
	PlayerID string `json:"player_id"`
	Encoding string `json:"encoding"`
}

// HandleJoin creates a player for the client and registers it with the simulation.
func (r *Router) HandleJoin(client *ws.Client, msg ws.Message) {
	var req joinRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.Name == "" {
		client.SendMessage(ws.NewErrorMessage("name is required"))
		return
	}
	if r.PlayerID(client.ID) != "" {
		client.SendMessage(ws.NewErrorMessage("already joined"))
		return
	}

	switch req.Encoding {
	case "":
		req.Encoding = EncodingJSON
	case EncodingJSON, EncodingMsgpack:
	default:
		client.SendMessage(ws.NewErrorMessage("unsupported encoding: " + req.Encoding))
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		req.Width, req.Height = defaultViewWidth, defaultViewHeight
	}

	spawn := r.spawn()
	player := game.NewPlayer(req.Name, spawn, r.radius)
	if !r.send(client, sim.RegisterPlayer{Player: *player}) {
		return
	}

	r.mu.Lock()
	r.viewers[client.ID] = &viewer{
		client:   client,
		playerID: player.ID,
		encoding: req.Encoding,
		view:     game.NewMapView(spawn, req.Width, req.Height),
		head:     viewCenter(req.Width, req.Height),
	}
	r.mu.Unlock()

	resp, _ := ws.NewMessage(ws.TypeJoined, joinResponse{PlayerID: player.ID, Encoding: req.Encoding})
	client.SendMessage(resp)

	slog.Info("viewer joined", "client", client.ID, "player", player.ID, "name", req.Name)
}

type resizeRequest struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// HandleResize updates the size of the client's viewport.
func (r *Router) HandleResize(client *ws.Client, msg ws.Message) {
	var req resizeRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil || req.Width <= 0 || req.Height <= 0 {
		client.SendMessage(ws.NewErrorMessage("invalid resize data"))
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.viewers[client.ID]; ok {
		v.view.Resize(req.Width, req.Height)
	}
}
