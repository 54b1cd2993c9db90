package hub

import (
	"encoding/json"
	"errors"

	"github.com/lobogoatfromroblox/StealaLoboGOAT/pkg/metrics"
)

// broadcast serializes v once and fans it out to every live member of the
// room, minus the exclude set. Members whose delivery fails are pruned
// from the room as if they had disconnected; the sweep continues to the
// remaining members and no failure escapes the engine.
func (h *Hub) broadcast(roomCode string, v any, exclude map[string]struct{}) {
	r := h.reg.Room(roomCode)
	if r == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		h.log.Error("fanout.marshal", "room", roomCode, "err", err)
		return
	}

	// Snapshot the member ids: pruning below mutates the member set.
	ids := make([]string, 0, len(r.members))
	for id := range r.members {
		ids = append(ids, id)
	}

	var dead []string
	for _, id := range ids {
		if _, skip := exclude[id]; skip {
			continue
		}
		s := r.members[id]
		if s == nil {
			continue
		}
		if !s.sender.Alive() {
			dead = append(dead, id)
			continue
		}
		if err := s.sender.Send(payload); err != nil {
			metrics.DeliveryFailures.Inc()
			h.log.Info("fanout.prune", "room", roomCode, "conn", id, "err", err)
			dead = append(dead, id)
			continue
		}
		metrics.FramesSent.Inc()
	}

	// Self-heal: dead members leave through the normal path, which may
	// tear the room down and republish presence. The presence publish can
	// itself discover more dead members; recursion is bounded because
	// every prune permanently shrinks some room's membership.
	for _, id := range dead {
		h.leaveRoomLocked(id)
	}
}

// targetedSend delivers to exactly one session. Failures are returned to
// the caller and never treated as a room-membership liveness signal.
func (h *Hub) targetedSend(s *session, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if !s.sender.Alive() {
		return &DeliveryError{ConnID: s.id, Err: errors.New("connection not live")}
	}
	if err := s.sender.Send(payload); err != nil {
		metrics.DeliveryFailures.Inc()
		return &DeliveryError{ConnID: s.id, Err: err}
	}
	metrics.FramesSent.Inc()
	return nil
}
