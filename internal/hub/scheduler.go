package hub

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/lobogoatfromroblox/StealaLoboGOAT/pkg/metrics"
)

// armEvent registers a one-shot timed event on the room. The timer
// callback carries only stable handles (room code, event id) and
// re-resolves both at fire time; state captured now may be gone by then.
func (h *Hub) armEvent(r *Room, name, initiator string, d time.Duration) *ActiveEvent {
	ev := &ActiveEvent{
		ID:        uuid.NewString(),
		Name:      name,
		Initiator: initiator,
		StartedAt: time.Now(),
		Duration:  d,
	}
	code := r.code
	ev.timer = time.AfterFunc(d, func() { h.finishEvent(code, ev.ID) })
	r.events[ev.ID] = ev
	metrics.EventsArmed.Inc()
	return ev
}

// finishEvent runs on the timer goroutine. If the room emptied since
// arming (teardown stops the timer, but the firing may already be in
// flight) or the event was otherwise cleared, it does nothing; the
// event-end broadcast goes out at most once.
func (h *Hub) finishEvent(roomCode, eventID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	r := h.reg.Room(roomCode)
	if r == nil {
		return
	}
	ev := r.events[eventID]
	if ev == nil {
		return
	}
	delete(r.events, eventID)
	h.log.Info("event.end", "room", roomCode, "event", ev.Name, "id", ev.ID)
	h.broadcast(roomCode, adminEventOut{
		Type:          TypeAdminEventEnd,
		AdminIdentity: ev.Initiator,
		EventName:     ev.Name,
		Timestamp:     nowMillis(),
	}, nil)
}

// RunReseed regenerates and broadcasts the shared world seed of every
// live room on a fixed interval until ctx is cancelled. The ticker is
// process-lifetime and independent of any room: a room created between
// ticks first reseeds on the next tick.
func (h *Hub) RunReseed(ctx context.Context) {
	t := time.NewTicker(h.cfg.ReseedInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			h.reseedTick()
		}
	}
}

func (h *Hub) reseedTick() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for code, r := range h.reg.Rooms() {
		// The directory never holds an empty room; the check is defensive.
		if len(r.members) == 0 {
			continue
		}
		r.seed = rand.Int63()
		metrics.Reseeds.Inc()
		h.broadcast(code, worldReseedOut{
			Type:      TypeWorldReseed,
			Seed:      r.seed,
			Timestamp: nowMillis(),
		}, nil)
	}
}
