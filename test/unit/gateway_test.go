// Package unit contains unit tests for individual components of the chat server.
//
// These tests focus on testing specific functions and methods in isolation,
// using mocks and stubs where necessary to avoid dependencies on external systems.
// Unit tests ensure that each component behaves correctly under various conditions.
package unit

import (
	"testing"
	"time"

	"github.com/Alfredbis29/hireme-chat-server/internal/chat"
	"github.com/Alfredbis29/hireme-chat-server/internal/server"
	"github.com/Alfredbis29/hireme-chat-server/pkg/metrics"
)

func newTestGateway() *server.Gateway {
	return server.NewGateway(chat.NewHub(0), server.NewConfig(), metrics.New())
}

// TestNewGateway tests the gateway creation function.
// It verifies that NewGateway returns a properly initialized Gateway
// with all necessary channels and data structures.
func TestNewGateway(t *testing.T) {
	gateway := newTestGateway()

	if gateway == nil {
		t.Fatal("NewGateway() returned nil")
	}

	select {
	case gateway.GetRegisterChan() <- nil:
	case <-time.After(10 * time.Millisecond):
	}
}

// TestNewGatewayWithNilConfig verifies that a nil config selects defaults
// instead of panicking.
func TestNewGatewayWithNilConfig(t *testing.T) {
	gateway := server.NewGateway(chat.NewHub(0), nil, metrics.New())
	if gateway == nil {
		t.Fatal("NewGateway() with nil config returned nil")
	}
}

// TestGatewayChannels tests that the gateway channels are properly initialized
// and accessible through their getter methods.
func TestGatewayChannels(t *testing.T) {
	gateway := newTestGateway()

	if gateway.GetRegisterChan() == nil {
		t.Error("Register channel is nil")
	}
	if gateway.GetUnregisterChan() == nil {
		t.Error("Unregister channel is nil")
	}
}

// TestGatewayRunStartsWithoutPanic tests that the gateway's Run method starts
// without panicking and skips nil client registrations.
func TestGatewayRunStartsWithoutPanic(t *testing.T) {
	gateway := newTestGateway()

	done := make(chan bool, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				t.Errorf("Gateway.Run() panicked: %v", r)
			}
			done <- true
		}()
		go gateway.Run()

		select {
		case gateway.GetRegisterChan() <- nil:
		case <-time.After(100 * time.Millisecond):
			t.Error("Gateway did not accept registration")
		}
		time.Sleep(10 * time.Millisecond)
	}()

	select {
	case <-done:
	case <-time.After(200 * time.Millisecond):
		t.Error("Gateway.Run() test timed out")
	}
}

// TestGatewayShutdown tests that a running gateway shuts down cleanly within
// the timeout when no clients are connected.
func TestGatewayShutdown(t *testing.T) {
	gateway := newTestGateway()
	go gateway.Run()
	time.Sleep(10 * time.Millisecond)

	if err := gateway.Shutdown(time.Second); err != nil {
		t.Errorf("Gateway.Shutdown() returned error: %v", err)
	}
}

// TestNewClient tests the client creation function.
// It verifies that NewClient returns a properly initialized Client with a
// fresh connection id and a working send channel.
func TestNewClient(t *testing.T) {
	gateway := newTestGateway()

	client := server.NewClient(nil, gateway, "127.0.0.1:12345")

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.ID() == "" {
		t.Error("Client id is empty")
	}
	if client.GetSendChan() == nil {
		t.Error("Client send channel is nil")
	}
}

// TestClientIDsAreUnique verifies that every client gets its own connection id.
func TestClientIDsAreUnique(t *testing.T) {
	gateway := newTestGateway()

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		client := server.NewClient(nil, gateway, "127.0.0.1:12345")
		if seen[client.ID()] {
			t.Fatalf("Duplicate client id %q", client.ID())
		}
		seen[client.ID()] = true
	}
}

// TestClientSendChannelStartsEmpty verifies that a fresh client's send
// channel carries no messages.
func TestClientSendChannelStartsEmpty(t *testing.T) {
	gateway := newTestGateway()
	client := server.NewClient(nil, gateway, "127.0.0.1:12345")

	select {
	case <-client.GetSendChan():
		t.Error("Expected empty send channel but received a message")
	case <-time.After(10 * time.Millisecond):
	}
}
