package hub

import (
	"math/rand"
	"sort"
	"time"
)

// Sender delivers one serialized frame to a live connection. The hub holds
// senders by connection id; it never owns the underlying transport.
type Sender interface {
	Send(b []byte) error
	Alive() bool
}

type session struct {
	id       string
	sender   Sender
	identity string // set once by the first identifying message
	isAdmin  bool
	room     string // bound room code, "" while unbound
}

// ActiveEvent is a timed room-wide effect armed by an admin. Events are
// independent even when two admins start one with the same name.
type ActiveEvent struct {
	ID        string
	Name      string
	Initiator string
	StartedAt time.Time
	Duration  time.Duration
	timer     *time.Timer
}

// Room groups the live members of one broadcast scope plus its ephemeral
// shared state. A room in the directory always has at least one member.
type Room struct {
	code    string
	members map[string]*session     // conn id -> session
	seed    int64                   // shared world seed, regenerated each reseed tick
	events  map[string]*ActiveEvent // event id -> armed event
}

// memberList returns the canonical presence snapshot, sorted by username
// so repeated publishes of the same membership are identical.
func (r *Room) memberList() []MemberInfo {
	out := make([]MemberInfo, 0, len(r.members))
	for _, s := range r.members {
		out = append(out, MemberInfo{Username: s.identity, IsAdmin: s.isAdmin})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out
}

// Registry owns the connection table and the room directory. It only
// mutates state; callers (the hub) hold the lock and drive broadcasts,
// presence publishes and timer cancellation around these primitives.
type Registry struct {
	sessions map[string]*session
	rooms    map[string]*Room
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: map[string]*session{},
		rooms:    map[string]*Room{},
	}
}

// Register adds an unbound session for a freshly opened connection.
func (g *Registry) Register(connID string, sender Sender) {
	g.sessions[connID] = &session{id: connID, sender: sender}
}

// Unregister drops the session table entry. The caller removes the
// connection from its room first.
func (g *Registry) Unregister(connID string) {
	delete(g.sessions, connID)
}

func (g *Registry) Session(connID string) *session {
	return g.sessions[connID]
}

// SessionByIdentity resolves a bound identity to its session. Used by
// targeted-send handlers; a miss is a StateError at the call site.
func (g *Registry) SessionByIdentity(identity string) *session {
	for _, s := range g.sessions {
		if s.identity == identity && s.room != "" {
			return s
		}
	}
	return nil
}

func (g *Registry) Room(code string) *Room {
	return g.rooms[code]
}

// Rooms returns the directory for iteration (reseed tick).
func (g *Registry) Rooms() map[string]*Room {
	return g.rooms
}

// Bind sets the session's identity and adds it to the room, creating the
// room on first join. The session must not be bound to another room; the
// caller runs the leave path first on a move. Returns the member count.
func (g *Registry) Bind(connID, identity, roomCode string) (int, error) {
	s := g.sessions[connID]
	if s == nil {
		return 0, &StateError{Reason: "unknown connection " + connID}
	}
	r := g.rooms[roomCode]
	if r == nil {
		r = &Room{
			code:    roomCode,
			members: map[string]*session{},
			seed:    rand.Int63(),
			events:  map[string]*ActiveEvent{},
		}
		g.rooms[roomCode] = r
	}
	s.identity = identity
	s.room = roomCode
	r.members[connID] = s
	return len(r.members), nil
}

// Remove takes the connection out of its bound room. When the member set
// becomes empty the room is deleted in the same operation and its armed
// events are returned so the caller can stop their timers.
func (g *Registry) Remove(connID string) (roomCode string, deleted bool, cancelled []*ActiveEvent) {
	s := g.sessions[connID]
	if s == nil || s.room == "" {
		return "", false, nil
	}
	roomCode = s.room
	s.room = ""
	r := g.rooms[roomCode]
	if r == nil {
		return roomCode, false, nil
	}
	delete(r.members, connID)
	if len(r.members) == 0 {
		delete(g.rooms, roomCode)
		for _, ev := range r.events {
			cancelled = append(cancelled, ev)
		}
		return roomCode, true, cancelled
	}
	return roomCode, false, nil
}
