package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mockClient(id string) *Client {
	return &Client{ID: id, Send: make(chan Frame, sendBuffer)}
}

func TestHub_RoutesMessagesAndDisconnects(t *testing.T) {
	h := NewHub()
	received := make(chan *ClientMessage, 1)
	disconnected := make(chan string, 1)
	h.OnMessage = func(cm *ClientMessage) { received <- cm }
	h.OnDisconnect = func(c *Client) {
		// Send is still open while the disconnect hook runs.
		c.SendMessage(NewErrorMessage("bye"))
		disconnected <- c.ID
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	c := mockClient("c1")
	h.Register <- c
	h.Incoming <- &ClientMessage{Client: c, Data: []byte(`{"type":"pause"}`)}

	select {
	case cm := <-received:
		assert.Equal(t, "c1", cm.Client.ID)
	case <-time.After(time.Second):
		t.Fatal("message not routed")
	}
	assert.Equal(t, 1, h.ClientCount())

	h.Unregister <- c
	select {
	case id := <-disconnected:
		assert.Equal(t, "c1", id)
	case <-time.After(time.Second):
		t.Fatal("disconnect not reported")
	}

	frame, ok := <-c.Send
	require.True(t, ok)
	assert.Contains(t, string(frame.Data), "bye")
	_, ok = <-c.Send
	assert.False(t, ok, "send channel closed after disconnect")
	assert.Equal(t, 0, h.ClientCount())
}

func TestHub_StopClosesConnections(t *testing.T) {
	h := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go h.Run(ctx)

	upgrader := websocket.Upgrader{}
	readDone := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		c := NewClient("live", h, conn)
		h.Register <- c
		go c.WritePump()
		go func() {
			c.ReadPump()
			close(readDone)
		}()
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 10*time.Millisecond)

	cancel()

	select {
	case <-h.Done():
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	select {
	case <-readDone:
	case <-time.After(time.Second):
		t.Fatal("read pump still blocked after hub stopped")
	}
	assert.Equal(t, 0, h.ClientCount())

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, _, err = conn.ReadMessage()
	assert.Error(t, err, "server side closed the connection")
}

func TestClient_SendFrameDropsOldest(t *testing.T) {
	c := &Client{ID: "slow", Send: make(chan Frame, 2)}

	for i := 0; i < 5; i++ {
		c.SendFrame(Frame{Binary: true, Data: []byte{byte(i)}})
	}

	first := <-c.Send
	second := <-c.Send
	assert.Equal(t, []byte{3}, first.Data)
	assert.Equal(t, []byte{4}, second.Data)
}

func TestClient_SendMessage(t *testing.T) {
	c := mockClient("c1")
	msg, err := NewMessage(TypeJoined, map[string]string{"player_id": "p1"})
	require.NoError(t, err)

	c.SendMessage(msg)

	frame := <-c.Send
	assert.False(t, frame.Binary)
	var back Message
	require.NoError(t, json.Unmarshal(frame.Data, &back))
	assert.Equal(t, TypeJoined, back.Type)
	assert.JSONEq(t, `{"player_id":"p1"}`, string(back.Data))
}
