// Package server implements the HTTP and WebSocket transport for the live
// chat service.
//
// The implementation is organized into specialized files for configuration,
// the gateway, clients, routing, and HTTP handlers to keep the codebase
// maintainable and testable as the project grows. The room and history logic
// itself lives in internal/chat; this package only moves frames between
// connections and the hub.
package server
