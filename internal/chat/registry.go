// Package chat tracks connection presence and answers room membership
// queries derived from it.
package chat

// Presence is a connection's current display name and room assignment.
// Zero-value fields mean the connection has not joined yet.
type Presence struct {
	Username string
	Room     string
}

// registry owns every presence record, keyed by the opaque connection id the
// transport assigned. It is not safe for concurrent use on its own; the Hub
// serializes all access behind its mutex.
//
// Room membership is a derived query over the records rather than a second
// index, so re-joining with a different room moves the connection simply by
// overwriting its record; there is no index to fall out of sync.
type registry struct {
	conns map[string]Presence
}

func newRegistry() *registry {
	return &registry{conns: make(map[string]Presence)}
}

// register creates an empty presence record for id. Registering an id twice
// overwrites the previous record.
func (r *registry) register(id string) {
	r.conns[id] = Presence{}
}

// setPresence records the display name and room chosen at join time. If the
// id is unknown (a disconnect raced the join) the call is a silent no-op.
func (r *registry) setPresence(id, username, room string) {
	if _, ok := r.conns[id]; !ok {
		return
	}
	r.conns[id] = Presence{Username: username, Room: room}
}

// get resolves a connection's presence with defaults applied: an unknown id
// or a record that never joined resolves to Anonymous in the general room.
func (r *registry) get(id string) Presence {
	p := r.conns[id]
	if p.Username == "" {
		p.Username = DefaultUsername
	}
	if p.Room == "" {
		p.Room = DefaultRoom
	}
	return p
}

// remove deletes the record for id and returns it as stored, without
// defaulting, so the caller can tell whether the connection had joined.
func (r *registry) remove(id string) (Presence, bool) {
	p, ok := r.conns[id]
	if ok {
		delete(r.conns, id)
	}
	return p, ok
}

// membersOf returns the ids of every connection whose record places it in
// room. Connections that never joined belong to no room.
func (r *registry) membersOf(room string) []string {
	var ids []string
	for id, p := range r.conns {
		if p.Room == room {
			ids = append(ids, id)
		}
	}
	return ids
}

// countIn reports how many connections currently occupy room.
func (r *registry) countIn(room string) int {
	n := 0
	for _, p := range r.conns {
		if p.Room == room {
			n++
		}
	}
	return n
}
