package ws

import (
	"net/http"

	"log/slog"

	"github.com/lobogoatfromroblox/StealaLoboGOAT/internal/app"
	"github.com/lobogoatfromroblox/StealaLoboGOAT/internal/hub"
)

// Gateway bridges websocket connections to the relay hub: it registers
// each accepted connection, pumps inbound frames into the hub and unwinds
// registry state when the connection goes away.
type Gateway struct {
	log    *slog.Logger
	hub    *hub.Hub
	buffer int
}

// NewGateway wires the websocket endpoint to the hub
func NewGateway(logger *slog.Logger, h *hub.Hub, cfg app.Config) *Gateway {
	return &Gateway{log: logger, hub: h, buffer: cfg.SendBuffer}
}

// ServeWS handles a new /ws connection for its whole lifetime
func (g *Gateway) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	sock, err := Accept(w, r)
	if err != nil {
		g.log.Error("ws.accept", "err", err)
		return
	}

	c := NewConn(sock, g.buffer)
	g.hub.Register(c.ID(), c)

	// Outbound writer
	go c.WriteLoop(ctx)

	// Inbound reader: every frame goes through the hub's single decode
	// boundary. A fault here is isolated to this connection.
	for {
		payload, ok := c.Read(ctx)
		if !ok {
			break
		}
		g.hub.HandleMessage(c.ID(), payload)
	}

	g.hub.Unregister(c.ID())
	_ = c.Close()
}
