package handler

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/arthurguedes375/agar.io/internal/game"
	"github.com/arthurguedes375/agar.io/internal/geometry"
	"github.com/arthurguedes375/agar.io/internal/sim"
	"github.com/arthurguedes375/agar.io/internal/ws"
)

type pointerRequest struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// HandlePointer steers the client's player towards a point given in view-local coordinates.
func (r *Router) HandlePointer(client *ws.Client, msg ws.Message) {
	var req pointerRequest
	if err := json.Unmarshal(msg.Data, &req); err != nil {
		client.SendMessage(ws.NewErrorMessage("invalid pointer data"))
		return
	}

	r.mu.RLock()
	v, ok := r.viewers[client.ID]
	var playerID string
	var head geometry.Position
	if ok {
		playerID, head = v.playerID, v.head
	}
	r.mu.RUnlock()
	if !ok {
		return
	}

	r.send(client, sim.SetDirection{
		PlayerID:  playerID,
		Direction: geometry.Heading(head, geometry.Position{X: req.X, Y: req.Y}),
	})
}

// viewCenter is the view-local middle of a width x height display.
func viewCenter(width, height float64) geometry.Position {
	return geometry.Position{X: width / 2, Y: height / 2}
}

type circleEntry struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Radius int     `json:"radius" msgpack:"radius"`
}

type playerEntry struct {
	ID    string        `json:"id" msgpack:"id"`
	Name  string        `json:"name" msgpack:"name"`
	Score int           `json:"score" msgpack:"score"`
	Parts []circleEntry `json:"parts" msgpack:"parts"`
}

// viewFrame is what a viewer draws for one tick.
type viewFrame struct {
	Tick     uint64        `json:"tick" msgpack:"tick"`
	Status   string        `json:"status" msgpack:"status"`
	TickRate int           `json:"tick_rate" msgpack:"tick_rate"`
	Score    int           `json:"score" msgpack:"score"`
	Fruits   []circleEntry `json:"fruits" msgpack:"fruits"`
	Players  []playerEntry `json:"players" msgpack:"players"`
}

type binaryEnvelope struct {
	Type string    `msgpack:"type"`
	Data viewFrame `msgpack:"data"`
}

// buildFrame centers v on its player and culls g down to what v can see.
func buildFrame(v *viewer, g game.Game) viewFrame {
	frame := viewFrame{
		Tick:     g.Tick,
		Status:   g.Status.String(),
		TickRate: g.TickRate,
	}

	if p, ok := g.Player(v.playerID); ok {
		v.view.Follow(p.Head().Center)
		frame.Score = p.Score()
	} else {
		v.view.Follow(g.Map.Center())
	}
	v.head = v.view.MapPosition(v.view.CenterPoint())

	for _, f := range v.view.VisibleFruits(g.Map) {
		frame.Fruits = append(frame.Fruits, circleEntry{X: f.Center.X, Y: f.Center.Y, Radius: f.Radius})
	}
	for _, p := range v.view.VisiblePlayers(g.Map) {
		entry := playerEntry{ID: p.ID, Name: p.Name, Score: p.Score()}
		for _, part := range p.BodyParts {
			entry.Parts = append(entry.Parts, circleEntry{X: part.Center.X, Y: part.Center.Y, Radius: part.Radius})
		}
		frame.Players = append(frame.Players, entry)
	}
	return frame
}

func encodeFrame(encoding string, frame viewFrame) (ws.Frame, error) {
	if encoding == EncodingMsgpack {
		data, err := msgpack.Marshal(&binaryEnvelope{Type: ws.TypeView, Data: frame})
		if err != nil {
			return ws.Frame{}, err
		}
		return ws.Frame{Binary: true, Data: data}, nil
	}

	msg, err := ws.NewMessage(ws.TypeView, frame)
	if err != nil {
		return ws.Frame{}, err
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return ws.Frame{}, err
	}
	return ws.Frame{Data: data}, nil
}

// Broadcast sends every viewer its own frame for u.
func (r *Router) Broadcast(u sim.StateUpdate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, v := range r.viewers {
		frame, err := encodeFrame(v.encoding, buildFrame(v, u.Game))
		if err != nil {
			slog.Error("failed to encode view", "client", v.client.ID, "error", err)
			continue
		}
		v.client.SendFrame(frame)
	}
}

// Serve broadcasts every update from sub until it is closed or ctx is done,
// then tells the viewers the simulation is over.
func (r *Router) Serve(ctx context.Context, sub *sim.Subscription) {
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-sub.Updates():
			if !ok {
				r.notifyClosed()
				return
			}
			r.Broadcast(u)
		}
	}
}

func (r *Router) notifyClosed() {
	r.mu.RLock()
	defer r.mu.RUnlock()

	msg, _ := ws.NewMessage(ws.TypeClosed, struct{}{})
	for _, v := range r.viewers {
		v.client.SendMessage(msg)
	}
}
