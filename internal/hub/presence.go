package hub

// publishPresence broadcasts the room's canonical member list to every
// member, the joiner included. Replace semantics: receivers swap their
// whole roster for this list, so it can never drift from the directory.
func (h *Hub) publishPresence(roomCode string) {
	r := h.reg.Room(roomCode)
	if r == nil {
		return
	}
	h.broadcast(roomCode, presenceOut{
		Type:    TypePlayersOnline,
		Players: r.memberList(),
	}, nil)
}
