// Package unit contains unit tests for individual components of the chat server.
package unit

import (
	"testing"
	"time"

	"github.com/Alfredbis29/hireme-chat-server/internal/server"
)

// TestNewConfigDefaults verifies the default configuration values.
func TestNewConfigDefaults(t *testing.T) {
	cfg := server.NewConfig()

	if cfg.Port != ":8080" {
		t.Errorf("Expected default port :8080, got %q", cfg.Port)
	}
	if cfg.MaxMessageSize != 512 {
		t.Errorf("Expected default max message size 512, got %d", cfg.MaxMessageSize)
	}
	if cfg.RateLimit.Burst != 5 {
		t.Errorf("Expected default rate limit burst 5, got %d", cfg.RateLimit.Burst)
	}
	if cfg.RateLimit.RefillInterval != time.Second {
		t.Errorf("Expected default refill interval 1s, got %s", cfg.RateLimit.RefillInterval)
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("Expected default history limit 50, got %d", cfg.HistoryLimit)
	}
	if len(cfg.AllowedOrigins) == 0 {
		t.Error("Expected non-empty default origin allowlist")
	}
}

// TestNewConfigFromEnv verifies that environment variables override defaults.
func TestNewConfigFromEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9191")
	t.Setenv("ALLOWED_ORIGINS", "http://a.example, http://b.example")
	t.Setenv("MAX_MESSAGE_SIZE", "1024")
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "2")
	t.Setenv("HISTORY_LIMIT", "25")

	cfg := server.NewConfigFromEnv()

	if cfg.Port != ":9191" {
		t.Errorf("Expected port :9191, got %q", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[0] != "http://a.example" || cfg.AllowedOrigins[1] != "http://b.example" {
		t.Errorf("Unexpected origins: %v", cfg.AllowedOrigins)
	}
	if cfg.MaxMessageSize != 1024 {
		t.Errorf("Expected max message size 1024, got %d", cfg.MaxMessageSize)
	}
	if cfg.RateLimit.Burst != 10 {
		t.Errorf("Expected burst 10, got %d", cfg.RateLimit.Burst)
	}
	if cfg.RateLimit.RefillInterval != 2*time.Second {
		t.Errorf("Expected refill interval 2s, got %s", cfg.RateLimit.RefillInterval)
	}
	if cfg.HistoryLimit != 25 {
		t.Errorf("Expected history limit 25, got %d", cfg.HistoryLimit)
	}
}

// TestNewConfigFromEnvInvalidValues verifies that unparsable or non-positive
// values fall back to the defaults instead of aborting startup.
func TestNewConfigFromEnvInvalidValues(t *testing.T) {
	t.Setenv("MAX_MESSAGE_SIZE", "not-a-number")
	t.Setenv("RATE_LIMIT_BURST", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "0")
	t.Setenv("HISTORY_LIMIT", "zero")

	cfg := server.NewConfigFromEnv()

	if cfg.MaxMessageSize != 512 {
		t.Errorf("Expected fallback max message size 512, got %d", cfg.MaxMessageSize)
	}
	if cfg.RateLimit.Burst != 5 {
		t.Errorf("Expected fallback burst 5, got %d", cfg.RateLimit.Burst)
	}
	if cfg.RateLimit.RefillInterval != time.Second {
		t.Errorf("Expected fallback refill interval 1s, got %s", cfg.RateLimit.RefillInterval)
	}
	if cfg.HistoryLimit != 50 {
		t.Errorf("Expected fallback history limit 50, got %d", cfg.HistoryLimit)
	}
}
