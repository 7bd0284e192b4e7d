package server

import (
	"net/http"
	"testing"
	"time"
)

func requestWithOrigin(t *testing.T, origin string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, "/ws", http.NoBody)
	if err != nil {
		t.Fatal(err)
	}
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	return req
}

func TestOriginPolicyAllowlist(t *testing.T) {
	policy := newOriginPolicy([]string{"http://localhost:8080", "HTTPS://Example.COM"})

	tests := []struct {
		name    string
		origin  string
		allowed bool
	}{
		{"exact match", "http://localhost:8080", true},
		{"case-insensitive match", "https://example.com", true},
		{"different port", "http://localhost:9090", false},
		{"different host", "http://evil.example", false},
		{"missing origin header", "", false},
		{"unparsable origin", "not a url", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.isOriginAllowed(requestWithOrigin(t, tt.origin))
			if got != tt.allowed {
				t.Errorf("isOriginAllowed(%q) = %v, want %v", tt.origin, got, tt.allowed)
			}
		})
	}
}

func TestOriginPolicyWildcard(t *testing.T) {
	policy := newOriginPolicy([]string{"*"})

	if !policy.isOriginAllowed(requestWithOrigin(t, "http://anything.example")) {
		t.Error("Wildcard policy rejected a valid origin")
	}
	if policy.isOriginAllowed(requestWithOrigin(t, "")) {
		t.Error("Wildcard policy accepted a request without an Origin header")
	}
}

func TestOriginPolicyIgnoresInvalidEntries(t *testing.T) {
	policy := newOriginPolicy([]string{"", "   ", "not a url", "http://good.example"})

	if !policy.isOriginAllowed(requestWithOrigin(t, "http://good.example")) {
		t.Error("Valid entry was not honored")
	}
	if policy.allowAll {
		t.Error("Invalid entries must not enable allow-all")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	rl := newRateLimiter(2, 20*time.Millisecond)

	if !rl.allow() || !rl.allow() {
		t.Fatal("Expected initial burst to be allowed")
	}
	if rl.allow() {
		t.Fatal("Expected third immediate call to be limited")
	}

	time.Sleep(25 * time.Millisecond)
	if !rl.allow() {
		t.Error("Expected tokens to refill after the interval")
	}
}
