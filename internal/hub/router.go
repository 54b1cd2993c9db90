package hub

import (
	"encoding/json"
	"time"

	"github.com/lobogoatfromroblox/StealaLoboGOAT/pkg/metrics"
)

// Handlers run with the hub lock held. Each one validates every required
// field before touching any state, so a rejected message has no partial
// side effects.

func (h *Hub) handlePlayerJoin(s *session, raw []byte) error {
	var m joinMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		return &ProtocolError{Reason: "player_join: " + err.Error()}
	}
	if m.Identity == "" || m.RoomCode == "" {
		return &ProtocolError{Reason: "player_join requires identity and roomCode"}
	}
	// Idempotent: already a member of that room.
	if s.room == m.RoomCode {
		return nil
	}
	// Rejoining elsewhere moves membership: the old room goes through the
	// full leave path (teardown, presence) before the new bind.
	if s.room != "" {
		h.leaveRoomLocked(s.id)
	}
	count, err := h.reg.Bind(s.id, m.Identity, m.RoomCode)
	if err != nil {
		return err
	}
	if count == 1 {
		metrics.RoomsActive.Inc()
		h.log.Info("room.created", "room", m.RoomCode)
	}
	h.log.Info("player.joined", "identity", m.Identity, "room", m.RoomCode, "members", count)
	h.broadcast(m.RoomCode, playerJoinedOut{
		Type:      TypePlayerJoined,
		Identity:  m.Identity,
		Timestamp: nowMillis(),
	}, exclude(s.id))
	h.publishPresence(m.RoomCode)
	return nil
}

func (h *Hub) handleChat(s *session, raw []byte) error {
	var m chatMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		return &ProtocolError{Reason: "chat: " + err.Error()}
	}
	if m.RoomCode == "" || m.Identity == "" || m.Text == "" {
		return &ProtocolError{Reason: "chat requires roomCode, identity and text"}
	}
	if s.room == "" {
		return &StateError{Reason: "chat before join"}
	}
	var ex map[string]struct{}
	if !h.cfg.ChatEcho {
		ex = exclude(s.id)
	}
	h.broadcast(s.room, chatOut{
		Type:      TypeChat,
		Identity:  s.identity,
		Text:      m.Text,
		Timestamp: nowMillis(),
	}, ex)
	return nil
}

func (h *Hub) handleAuctionStarted(s *session, raw []byte) error {
	var m auctionStartedMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		return &ProtocolError{Reason: "auction_started: " + err.Error()}
	}
	if m.RoomCode == "" || m.Identity == "" || m.Item == nil || m.Item.Name == "" {
		return &ProtocolError{Reason: "auction_started requires roomCode, identity and item"}
	}
	if s.room == "" {
		return &StateError{Reason: "auction_started before join"}
	}
	h.broadcast(s.room, auctionStartedOut{
		Type:      TypeAuctionStarted,
		Identity:  s.identity,
		Item:      *m.Item,
		Timestamp: nowMillis(),
	}, exclude(s.id))
	return nil
}

func (h *Hub) handleAuctionEnded(s *session, raw []byte) error {
	var m auctionEndedMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		return &ProtocolError{Reason: "auction_ended: " + err.Error()}
	}
	if m.RoomCode == "" || m.WinnerIdentity == "" || m.ItemName == "" {
		return &ProtocolError{Reason: "auction_ended requires roomCode, winnerIdentity and itemName"}
	}
	if s.room == "" {
		return &StateError{Reason: "auction_ended before join"}
	}
	h.broadcast(s.room, auctionEndedOut{
		Type:           TypeAuctionEnded,
		WinnerIdentity: m.WinnerIdentity,
		ItemName:       m.ItemName,
		Timestamp:      nowMillis(),
	}, nil)
	return nil
}

func (h *Hub) handleTrade(s *session, raw []byte) error {
	var m tradeMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		return &ProtocolError{Reason: "trade: " + err.Error()}
	}
	if m.TargetID == "" || len(m.OfferedItems) == 0 || len(m.RequestedItems) == 0 {
		return &ProtocolError{Reason: "trade requires targetId, offeredItems and requestedItems"}
	}
	if s.room == "" {
		return &StateError{Reason: "trade before join"}
	}
	target := h.reg.SessionByIdentity(m.TargetID)
	if target == nil {
		return &StateError{Reason: "trade target not found: " + m.TargetID}
	}
	// A dead trade target is reported, never evicted: only failures seen
	// during a room broadcast count as liveness failures.
	return h.targetedSend(target, tradeOfferOut{
		Type:           TypeTradeOffer,
		FromIdentity:   s.identity,
		OfferedItems:   m.OfferedItems,
		RequestedItems: m.RequestedItems,
		Timestamp:      nowMillis(),
	})
}

func (h *Hub) handleAttack(s *session, raw []byte) error {
	var m attackMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		return &ProtocolError{Reason: "attack: " + err.Error()}
	}
	if m.RoomCode == "" || m.TargetID == "" || m.Success == nil {
		return &ProtocolError{Reason: "attack requires roomCode, targetId and success"}
	}
	if s.room == "" {
		return &StateError{Reason: "attack before join"}
	}
	h.broadcast(s.room, attackOut{
		Type:       TypeAttack,
		Identity:   s.identity,
		TargetID:   m.TargetID,
		Success:    *m.Success,
		StolenItem: m.StolenItem,
		Timestamp:  nowMillis(),
	}, nil)
	return nil
}

func (h *Hub) handleAdminStartEvent(s *session, raw []byte) error {
	var m adminStartEventMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		return &ProtocolError{Reason: "admin_start_event: " + err.Error()}
	}
	if m.RoomCode == "" || m.AdminIdentity == "" || m.EventName == "" || m.DurationMinutes <= 0 {
		return &ProtocolError{Reason: "admin_start_event requires roomCode, adminIdentity, eventName and durationMinutes"}
	}
	if s.room == "" {
		return &StateError{Reason: "admin_start_event before join"}
	}
	r := h.reg.Room(s.room)
	if r == nil {
		return &StateError{Reason: "no such room: " + s.room}
	}
	d := time.Duration(m.DurationMinutes * float64(time.Minute))
	h.broadcast(s.room, adminEventOut{
		Type:            TypeAdminEventStart,
		AdminIdentity:   m.AdminIdentity,
		EventName:       m.EventName,
		DurationMinutes: m.DurationMinutes,
		Timestamp:       nowMillis(),
	}, nil)
	ev := h.armEvent(r, m.EventName, m.AdminIdentity, d)
	h.log.Info("event.start", "room", s.room, "event", m.EventName, "id", ev.ID, "duration", d)
	return nil
}

func (h *Hub) handleAdminAction(s *session, raw []byte) error {
	var m adminActionMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		return &ProtocolError{Reason: "admin_action: " + err.Error()}
	}
	if m.RoomCode == "" || m.AdminIdentity == "" || len(m.Action) == 0 {
		return &ProtocolError{Reason: "admin_action requires roomCode, adminIdentity and action"}
	}
	if s.room == "" {
		return &StateError{Reason: "admin_action before join"}
	}
	h.broadcast(s.room, adminActionOut{
		Type:          TypeAdminAction,
		AdminIdentity: m.AdminIdentity,
		Action:        m.Action,
		Timestamp:     nowMillis(),
	}, exclude(s.id))
	return nil
}

func exclude(ids ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}
