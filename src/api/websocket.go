package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/perplext/cipherhoneypot/src/events"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub relays every bus event to connected WebSocket clients, acting as a
// plain subscriber so the relay never affects publish latency for other
// consumers.
type Hub struct {
	bus events.Bus
}

// NewHub returns a relay over bus; it subscribes fresh for every
// connection rather than fanning out internally, since the bus already
// isolates subscribers from one another.
func NewHub(bus events.Bus) *Hub {
	return &Hub{bus: bus}
}

// ServeWS upgrades the request and streams scam.detected,
// engagement.turn, and engagement.completed events as JSON frames until
// the client disconnects.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	out := make(chan events.Event, 16)
	forward := func(_ context.Context, e events.Event) error {
		select {
		case out <- e:
		default:
		}
		return nil
	}

	h.bus.Subscribe(events.TypeScamDetected, forward)
	h.bus.Subscribe(events.TypeEngagementTurn, forward)
	h.bus.Subscribe(events.TypeEngagementComplete, forward)

	for {
		select {
		case e := <-out:
			conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			raw, err := json.Marshal(e)
			if err != nil {
				continue
			}
			if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-r.Context().Done():
			return
		}
	}
}
