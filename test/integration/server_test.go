// Package integration contains integration tests for the chat server.
//
// These tests verify that multiple components work together correctly by testing
// the complete system behavior with real HTTP servers, WebSocket connections,
// and end-to-end functionality. Integration tests ensure that the system works
// as expected when all components are assembled together.
package integration

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Alfredbis29/hireme-chat-server/internal/chat"
	"github.com/Alfredbis29/hireme-chat-server/internal/server"
	"github.com/Alfredbis29/hireme-chat-server/pkg/metrics"
	"github.com/Alfredbis29/hireme-chat-server/test/testhelpers"
)

// startChatServer boots a fully wired gateway behind an httptest server and
// returns the ws:// URL of its WebSocket endpoint.
func startChatServer(t *testing.T, customize func(cfg *server.Config)) (*server.Gateway, *httptest.Server, string) {
	t.Helper()

	cfg := server.NewConfig()
	cfg.AllowedOrigins = []string{"*"}
	if customize != nil {
		customize(cfg)
	}

	gateway := server.NewGateway(chat.NewHub(cfg.HistoryLimit), cfg, metrics.New())
	go gateway.Run()

	testServer := httptest.NewServer(gateway.SetupRoutes())
	t.Cleanup(func() {
		testServer.Close()
		_ = gateway.Shutdown(2 * time.Second)
	})

	wsURL := "ws" + strings.TrimPrefix(testServer.URL, "http") + "/ws"
	return gateway, testServer, wsURL
}

// TestStatusEndpoint verifies the root status endpoint returns the expected
// JSON body.
func TestStatusEndpoint(t *testing.T) {
	_, testServer, _ := startChatServer(t, nil)

	resp := testhelpers.MakeRequest(t, "GET", testServer.URL+"/")
	defer func() { _ = resp.Body.Close() }()

	testhelpers.AssertStatusCode(t, resp, http.StatusOK)
	testhelpers.AssertContentType(t, resp, "application/json")

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode status body: %v", err)
	}
	if body["status"] != "Chat Server Running" {
		t.Errorf("Unexpected status body: %v", body)
	}
}

// TestHealthEndpoint verifies the health endpoint reports a healthy status
// with a current timestamp.
func TestHealthEndpoint(t *testing.T) {
	_, testServer, _ := startChatServer(t, nil)

	resp := testhelpers.MakeRequest(t, "GET", testServer.URL+"/health")
	defer func() { _ = resp.Body.Close() }()

	testhelpers.AssertStatusCode(t, resp, http.StatusOK)

	var body map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode health body: %v", err)
	}
	if body["status"] != "healthy" {
		t.Errorf("Unexpected health status: %q", body["status"])
	}
	if _, err := time.Parse(time.RFC3339, body["timestamp"]); err != nil {
		t.Errorf("Unparsable health timestamp %q: %v", body["timestamp"], err)
	}
}

// TestMetricsEndpoint verifies Prometheus metrics are exposed.
func TestMetricsEndpoint(t *testing.T) {
	_, testServer, _ := startChatServer(t, nil)

	resp := testhelpers.MakeRequest(t, "GET", testServer.URL+"/metrics")
	defer func() { _ = resp.Body.Close() }()

	testhelpers.AssertStatusCode(t, resp, http.StatusOK)

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("Failed to read metrics body: %v", err)
	}
	if !strings.Contains(string(body), "chat_active_connections") {
		t.Error("Metrics output missing chat_active_connections")
	}
}

// TestTestPageEndpoint verifies the built-in test page is served as HTML.
func TestTestPageEndpoint(t *testing.T) {
	_, testServer, _ := startChatServer(t, nil)

	resp := testhelpers.MakeRequest(t, "GET", testServer.URL+"/test")
	defer func() { _ = resp.Body.Close() }()

	testhelpers.AssertStatusCode(t, resp, http.StatusOK)
	testhelpers.AssertContentType(t, resp, "text/html")
}

// TestWebSocketEndpointRejectsNonGet verifies the WebSocket endpoint refuses
// non-GET methods.
func TestWebSocketEndpointRejectsNonGet(t *testing.T) {
	_, testServer, _ := startChatServer(t, nil)

	resp := testhelpers.MakeRequest(t, "POST", testServer.URL+"/ws")
	defer func() { _ = resp.Body.Close() }()

	testhelpers.AssertStatusCode(t, resp, http.StatusMethodNotAllowed)
}
