package hub

import (
	"encoding/json"
	"errors"
	"sync"

	"log/slog"

	"github.com/lobogoatfromroblox/StealaLoboGOAT/internal/app"
	"github.com/lobogoatfromroblox/StealaLoboGOAT/pkg/metrics"
)

// Hub is the authoritative relay core: connection registry, room
// directory, message router, fan-out engine and event scheduler behind a
// single mutex. Inbound messages, disconnects, timer firings and reseed
// ticks all mutate state one at a time; only frame delivery is
// non-blocking (buffered per-connection queues in the transport layer).
type Hub struct {
	log *slog.Logger
	cfg app.Config

	mu  sync.Mutex
	reg *Registry

	routes map[string]func(*session, []byte) error
}

// NewHub sets up the hub with an empty registry and the routing table.
func NewHub(logger *slog.Logger, cfg app.Config) *Hub {
	h := &Hub{log: logger, cfg: cfg, reg: NewRegistry()}
	h.routes = map[string]func(*session, []byte) error{
		TypePlayerJoin:      h.handlePlayerJoin,
		TypeChat:            h.handleChat,
		TypeAuctionStarted:  h.handleAuctionStarted,
		TypeAuctionEnded:    h.handleAuctionEnded,
		TypeTrade:           h.handleTrade,
		TypeAttack:          h.handleAttack,
		TypeAdminStartEvent: h.handleAdminStartEvent,
		TypeAdminAction:     h.handleAdminAction,
	}
	return h
}

// Register creates the unbound registry entry for a new connection.
// Called by the transport on open, before any message arrives.
func (h *Hub) Register(connID string, sender Sender) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.reg.Register(connID, sender)
	metrics.ConnectionsActive.Inc()
	h.log.Debug("conn.open", "conn", connID)
}

// Unregister unwinds all state for a closed connection: room membership,
// empty-room teardown, presence republish, then the registry entry.
func (h *Hub) Unregister(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.reg.Session(connID)
	if s == nil {
		return
	}
	identity := s.identity
	code, left := h.leaveRoomLocked(connID)
	h.reg.Unregister(connID)
	metrics.ConnectionsActive.Dec()
	if left {
		h.log.Info("player.left", "identity", identity, "room", code)
	}
	h.log.Debug("conn.close", "conn", connID)
}

// HandleMessage is the single decode boundary: envelope, type lookup,
// per-type payload, handler. Unknown types and malformed payloads are
// dropped here; nothing a single connection sends can take down another.
func (h *Hub) HandleMessage(connID string, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.log.Warn("msg.malformed", "conn", connID, "err", err)
		return
	}
	handle := h.routes[env.Type]
	if handle == nil {
		metrics.UnknownMessages.Inc()
		h.log.Warn("msg.unknown_type", "conn", connID, "type", env.Type)
		return
	}
	metrics.MessagesReceived.WithLabelValues(env.Type).Inc()

	h.mu.Lock()
	defer h.mu.Unlock()
	s := h.reg.Session(connID)
	if s == nil {
		h.log.Warn("msg.unregistered_conn", "conn", connID, "type", env.Type)
		return
	}
	if err := handle(s, raw); err != nil {
		h.logHandlerErr(connID, env.Type, err)
	}
}

// leaveRoomLocked removes the connection from its bound room, stopping
// event timers and tearing the room down if it emptied, or republishing
// presence to the remaining members otherwise.
func (h *Hub) leaveRoomLocked(connID string) (roomCode string, left bool) {
	code, deleted, cancelled := h.reg.Remove(connID)
	if code == "" {
		return "", false
	}
	for _, ev := range cancelled {
		ev.timer.Stop()
	}
	if deleted {
		metrics.RoomsActive.Dec()
		h.log.Info("room.closed", "room", code)
	} else {
		h.publishPresence(code)
	}
	return code, true
}

func (h *Hub) logHandlerErr(connID, msgType string, err error) {
	var pe *ProtocolError
	var se *StateError
	var de *DeliveryError
	switch {
	case errors.As(err, &pe):
		h.log.Warn("msg.protocol_error", "conn", connID, "type", msgType, "reason", pe.Reason)
	case errors.As(err, &se):
		h.log.Info("msg.state_error", "conn", connID, "type", msgType, "reason", se.Reason)
	case errors.As(err, &de):
		h.log.Info("msg.delivery_error", "conn", connID, "type", msgType, "err", de)
	default:
		h.log.Error("msg.handler_error", "conn", connID, "type", msgType, "err", err)
	}
}
