// Package chat implements the room-scoped broadcast core of the live chat
// service: connection presence tracking, bounded per-room message history,
// and the event router that turns inbound client events into recipient sets.
//
// The package performs no network I/O. Handlers return Delivery values that
// the transport layer fans out after the hub's lock has been released.
package chat
