// Package chat routes inbound client events through the presence registry and
// history store, producing the outbound fan-out for each event via the Hub type.
package chat

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Delivery pairs an outbound payload with the connection ids that should
// receive it. The transport owns actual delivery; an empty recipient set
// means the event had no audience.
type Delivery struct {
	To      []string
	Payload []byte
}

// Hub is the broadcast core. Every handler executes its read-modify-fanout
// sequence inside one mutex so occupant counts and history snapshots are
// never observed mid-mutation; no handler performs I/O while holding it.
//
// Hubs are constructed explicitly and injected into the transport, so tests
// can run isolated instances.
type Hub struct {
	mu       sync.Mutex
	registry *registry
	history  *historyStore
	now      func() time.Time
}

// NewHub creates a Hub retaining up to historyLimit messages per room.
// A non-positive limit falls back to DefaultHistoryLimit.
func NewHub(historyLimit int) *Hub {
	return &Hub{
		registry: newRegistry(),
		history:  newHistoryStore(historyLimit),
		now:      time.Now,
	}
}

// Connect registers a new connection and returns the acknowledgement to send
// back to it. Nothing is broadcast; the connection has no room yet.
func (h *Hub) Connect(id string) []Delivery {
	h.mu.Lock()
	h.registry.register(id)
	h.mu.Unlock()

	return []Delivery{unicast(id, EventConnectionResponse, ConnectionResponse{
		Status:   "connected",
		Message:  "Welcome to live chat",
		ClientID: id,
	})}
}

// Join assigns the connection's display name and room, records a system
// message in the room's history, and announces both the message and the new
// occupant count to every member of the room.
func (h *Hub) Join(id string, p JoinPayload) []Delivery {
	username := p.Username
	if username == "" {
		username = DefaultUsername
	}
	room := p.Room
	if room == "" {
		room = DefaultRoom
	}

	h.mu.Lock()
	h.registry.setPresence(id, username, room)
	msg := Message{
		Type:      MessageTypeSystem,
		Username:  SystemUsername,
		Message:   username + " joined the chat",
		Timestamp: h.timestamp(),
		Room:      room,
	}
	h.history.append(msg)
	members := h.registry.membersOf(room)
	count := h.registry.countIn(room)
	h.mu.Unlock()

	return []Delivery{
		broadcast(members, EventChatMessage, msg),
		broadcast(members, EventUserJoined, UserJoined{Username: username, ActiveUsers: count}),
	}
}

// Message builds a user message from the sender's resolved presence, records
// it, and fans it out to the whole room, sender included.
func (h *Hub) Message(id string, p MessagePayload) []Delivery {
	h.mu.Lock()
	pres := h.registry.get(id)
	msg := Message{
		Type:      MessageTypeUser,
		Username:  pres.Username,
		Message:   p.Message,
		Timestamp: h.timestamp(),
		Room:      pres.Room,
		ClientID:  id,
	}
	h.history.append(msg)
	members := h.registry.membersOf(pres.Room)
	h.mu.Unlock()

	return []Delivery{broadcast(members, EventChatMessage, msg)}
}

// Typing relays a typing indicator to every member of the sender's room
// except the sender. No state changes.
func (h *Hub) Typing(id string, p TypingPayload) []Delivery {
	isTyping := true
	if p.IsTyping != nil {
		isTyping = *p.IsTyping
	}

	h.mu.Lock()
	pres := h.registry.get(id)
	members := h.registry.membersOf(pres.Room)
	h.mu.Unlock()

	others := members[:0:0]
	for _, member := range members {
		if member != id {
			others = append(others, member)
		}
	}

	return []Delivery{broadcast(others, EventUserTyping, UserTyping{
		Username: pres.Username,
		IsTyping: isTyping,
	})}
}

// GetMessages answers with the retained history for the requested room and
// the total number of messages ever recorded there. Read-only.
func (h *Hub) GetMessages(id string, p HistoryPayload) []Delivery {
	room := p.Room
	if room == "" {
		room = DefaultRoom
	}

	h.mu.Lock()
	messages, total := h.history.recent(room)
	h.mu.Unlock()

	return []Delivery{unicast(id, EventMessageHistory, MessageHistory{
		Messages: messages,
		Total:    total,
	})}
}

// Disconnect removes the connection. If it had joined under a real display
// name, a departure message is recorded and broadcast to the remaining
// members of its room; anonymous connections leave silently. Safe to call
// for ids that were never registered or were already removed.
func (h *Hub) Disconnect(id string) []Delivery {
	h.mu.Lock()
	p, ok := h.registry.remove(id)
	if !ok || p.Username == "" || p.Username == DefaultUsername {
		h.mu.Unlock()
		return nil
	}
	room := p.Room
	if room == "" {
		room = DefaultRoom
	}
	msg := Message{
		Type:      MessageTypeSystem,
		Username:  SystemUsername,
		Message:   p.Username + " left the chat",
		Timestamp: h.timestamp(),
		Room:      room,
	}
	h.history.append(msg)
	members := h.registry.membersOf(room)
	h.mu.Unlock()

	return []Delivery{broadcast(members, EventChatMessage, msg)}
}

// Dispatch decodes a raw client frame and routes it to the matching handler.
// Malformed frames and unknown event names are dropped; missing payload
// fields degrade to defaults instead of erroring.
func (h *Hub) Dispatch(id string, frame []byte) []Delivery {
	var env Envelope
	if err := json.Unmarshal(frame, &env); err != nil {
		log.Printf("Dropping malformed frame from %s: %v", id, err)
		return nil
	}

	switch env.Event {
	case EventJoin:
		var p JoinPayload
		decodePayload(env.Data, &p)
		return h.Join(id, p)
	case EventMessage:
		var p MessagePayload
		decodePayload(env.Data, &p)
		return h.Message(id, p)
	case EventTyping:
		var p TypingPayload
		decodePayload(env.Data, &p)
		return h.Typing(id, p)
	case EventGetMessages:
		var p HistoryPayload
		decodePayload(env.Data, &p)
		return h.GetMessages(id, p)
	default:
		log.Printf("Dropping unknown event %q from %s", env.Event, id)
		return nil
	}
}

// Occupants reports the current occupant count of room.
func (h *Hub) Occupants(room string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.registry.countIn(room)
}

func (h *Hub) timestamp() string {
	return h.now().Format(time.RFC3339)
}

// decodePayload fills p from raw, tolerating absent or invalid data so the
// handler's defaulting rules apply.
func decodePayload(raw json.RawMessage, p any) {
	if len(raw) == 0 {
		return
	}
	if err := json.Unmarshal(raw, p); err != nil {
		log.Printf("Ignoring malformed event payload: %v", err)
	}
}

func unicast(id, event string, data any) Delivery {
	return Delivery{To: []string{id}, Payload: marshalEvent(event, data)}
}

func broadcast(ids []string, event string, data any) Delivery {
	return Delivery{To: ids, Payload: marshalEvent(event, data)}
}

func marshalEvent(event string, data any) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		log.Printf("Error marshaling %s payload: %v", event, err)
		return nil
	}
	payload, err := json.Marshal(Envelope{Event: event, Data: raw})
	if err != nil {
		log.Printf("Error marshaling %s envelope: %v", event, err)
		return nil
	}
	return payload
}
