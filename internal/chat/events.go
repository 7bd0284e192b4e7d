// Package chat defines the wire-level event names and payload types exchanged
// with clients, framed by Envelope in both directions.
package chat

import "encoding/json"

// Inbound event names accepted from clients. Connect and disconnect are not
// wire events; the transport raises them from the connection lifecycle.
const (
	EventJoin        = "join"
	EventMessage     = "message"
	EventTyping      = "typing"
	EventGetMessages = "get_messages"
)

// Outbound event names emitted to clients.
const (
	EventConnectionResponse = "connection_response"
	EventChatMessage        = "message"
	EventUserJoined         = "user_joined"
	EventUserTyping         = "user_typing"
	EventMessageHistory     = "message_history"
)

// Message type discriminators.
const (
	MessageTypeSystem = "system"
	MessageTypeUser   = "user"
)

// Defaults substituted whenever a payload field or presence record is absent.
const (
	DefaultUsername = "Anonymous"
	DefaultRoom     = "general"
	SystemUsername  = "System"
)

// Envelope frames every event on the wire: an event name plus its payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinPayload carries a client's requested identity and room. Empty fields
// fall back to DefaultUsername and DefaultRoom.
type JoinPayload struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// MessagePayload carries the text of a user chat message. The body may be empty.
type MessagePayload struct {
	Message string `json:"message"`
}

// TypingPayload signals a typing indicator change. A missing is_typing field
// is treated as true.
type TypingPayload struct {
	IsTyping *bool `json:"is_typing"`
}

// HistoryPayload selects the room whose history is requested.
type HistoryPayload struct {
	Room string `json:"room"`
}

// Message is one chat entry, either user-authored or system-generated.
// Messages are immutable once created; they flow through both the live
// broadcast path and the history store.
type Message struct {
	Type      string `json:"type"`
	Username  string `json:"username"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Room      string `json:"room"`
	ClientID  string `json:"client_id,omitempty"`
}

// ConnectionResponse acknowledges a new connection and reports its assigned id.
type ConnectionResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ClientID string `json:"client_id"`
}

// UserJoined announces a join to the room along with the occupant count.
type UserJoined struct {
	Username    string `json:"username"`
	ActiveUsers int    `json:"active_users"`
}

// UserTyping relays a typing indicator to the rest of the room.
type UserTyping struct {
	Username string `json:"username"`
	IsTyping bool   `json:"is_typing"`
}

// MessageHistory answers a get_messages request with the retained messages
// for a room and the total number ever recorded there.
type MessageHistory struct {
	Messages []Message `json:"messages"`
	Total    int       `json:"total"`
}
