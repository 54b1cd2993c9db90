package hub

import (
	"testing"
	"time"
)

// waitFrames polls until the sender has n frames of the given type or the
// deadline passes. Timer firings land on their own goroutine.
func waitFrames(t *testing.T, f *fakeSender, typ string, n int, d time.Duration) []map[string]any {
	t.Helper()
	deadline := time.Now().Add(d)
	for {
		got := f.frames(t, typ)
		if len(got) >= n {
			return got
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %d %s frames, have %d", n, typ, len(got))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestAdminEventStartAndEnd(t *testing.T) {
	h := newTestHub()
	alice := connect(h, "c1")
	bob := connect(h, "c2")
	join(h, "c1", "alice", "abc")
	join(h, "c2", "bob", "abc")

	// 0.001 minutes = 60ms
	h.HandleMessage("c1", []byte(
		`{"type":"admin_start_event","roomCode":"abc","adminIdentity":"alice","eventName":"double-xp","durationMinutes":0.001}`))

	for name, f := range map[string]*fakeSender{"alice": alice, "bob": bob} {
		got := f.frames(t, TypeAdminEventStart)
		if len(got) != 1 {
			t.Fatalf("%s received %d event-start frames, want 1", name, len(got))
		}
		if got[0]["eventName"] != "double-xp" {
			t.Fatalf("event-start frame = %v", got[0])
		}
	}

	end := waitFrames(t, bob, TypeAdminEventEnd, 1, time.Second)
	if end[0]["eventName"] != "double-xp" || end[0]["adminIdentity"] != "alice" {
		t.Fatalf("event-end frame = %v", end[0])
	}

	// Exactly once: no second firing.
	time.Sleep(150 * time.Millisecond)
	if n := len(bob.frames(t, TypeAdminEventEnd)); n != 1 {
		t.Fatalf("event-end fired %d times, want 1", n)
	}
}

func TestAdminEventCancelledWhenRoomDies(t *testing.T) {
	h := newTestHub()
	alice := connect(h, "c1")
	join(h, "c1", "alice", "abc")

	h.HandleMessage("c1", []byte(
		`{"type":"admin_start_event","roomCode":"abc","adminIdentity":"alice","eventName":"meteor","durationMinutes":0.002}`))

	// Room teardown before the timer fires cancels the event.
	h.Unregister("c1")
	time.Sleep(300 * time.Millisecond)

	if n := len(alice.frames(t, TypeAdminEventEnd)); n != 0 {
		t.Fatalf("event-end broadcast after its room was destroyed (%d frames)", n)
	}
}

func TestConcurrentEventsAreIndependent(t *testing.T) {
	h := newTestHub()
	connect(h, "c1")
	bob := connect(h, "c2")
	join(h, "c1", "alice", "abc")
	join(h, "c2", "bob", "abc")

	// Same event name from two initiators: no dedup, both run out.
	h.HandleMessage("c1", []byte(
		`{"type":"admin_start_event","roomCode":"abc","adminIdentity":"alice","eventName":"rush","durationMinutes":0.001}`))
	h.HandleMessage("c2", []byte(
		`{"type":"admin_start_event","roomCode":"abc","adminIdentity":"bob","eventName":"rush","durationMinutes":0.001}`))

	end := waitFrames(t, bob, TypeAdminEventEnd, 2, time.Second)
	initiators := map[any]bool{}
	for _, f := range end {
		initiators[f["adminIdentity"]] = true
	}
	if !initiators["alice"] || !initiators["bob"] {
		t.Fatalf("expected one event-end per initiator, got %v", end)
	}
}

func TestEventRejectedWithoutDuration(t *testing.T) {
	h := newTestHub()
	alice := connect(h, "c1")
	join(h, "c1", "alice", "abc")

	h.HandleMessage("c1", []byte(
		`{"type":"admin_start_event","roomCode":"abc","adminIdentity":"alice","eventName":"rush"}`))

	if n := len(alice.frames(t, TypeAdminEventStart)); n != 0 {
		t.Fatalf("event started without a duration (%d frames)", n)
	}
	h.mu.Lock()
	armed := len(h.reg.Room("abc").events)
	h.mu.Unlock()
	if armed != 0 {
		t.Fatalf("%d events armed by a rejected message", armed)
	}
}

func TestReseedBroadcastsToLiveRooms(t *testing.T) {
	h := newTestHub()
	alice := connect(h, "c1")
	bob := connect(h, "c2")
	eve := connect(h, "c3")
	join(h, "c1", "alice", "abc")
	join(h, "c2", "bob", "abc")
	join(h, "c3", "eve", "other")

	h.reseedTick()

	a := alice.frames(t, TypeWorldReseed)
	b := bob.frames(t, TypeWorldReseed)
	e := eve.frames(t, TypeWorldReseed)
	if len(a) != 1 || len(b) != 1 || len(e) != 1 {
		t.Fatalf("reseed frames = %d/%d/%d, want 1 each", len(a), len(b), len(e))
	}
	// Members of one room share the seed.
	if a[0]["seed"] != b[0]["seed"] {
		t.Fatalf("room members got different seeds: %v vs %v", a[0]["seed"], b[0]["seed"])
	}
}

func TestReseedSkipsEmptyRooms(t *testing.T) {
	h := newTestHub()
	alice := connect(h, "c1")
	join(h, "c1", "alice", "abc")

	// The directory never holds an empty room, but the tick still guards
	// against one; plant it directly.
	h.mu.Lock()
	h.reg.rooms["ghost"] = &Room{code: "ghost", members: map[string]*session{}, events: map[string]*ActiveEvent{}}
	h.mu.Unlock()

	h.reseedTick()

	if n := len(alice.frames(t, TypeWorldReseed)); n != 1 {
		t.Fatalf("live room got %d reseed frames, want 1", n)
	}
}

func TestRoomSeedChangesAcrossTicks(t *testing.T) {
	h := newTestHub()
	alice := connect(h, "c1")
	join(h, "c1", "alice", "abc")

	h.reseedTick()
	h.reseedTick()

	got := alice.frames(t, TypeWorldReseed)
	if len(got) != 2 {
		t.Fatalf("reseed frames = %d, want 2", len(got))
	}
	if got[0]["seed"] == got[1]["seed"] {
		t.Fatalf("seed did not change across ticks: %v", got[0]["seed"])
	}
}
