package memcache

import (
	"errors"
	"testing"
	"time"

	"github.com/SovereignCloudStack/oslo.cache/backend"
)

func TestConfigFromArguments(t *testing.T) {
	args := backend.Arguments{Options: map[string]any{
		"url":            "10.0.0.1:11211, 10.0.0.2:11211",
		"socket_timeout": "5",
		"pool_maxsize":   25,
	}}

	cfg, err := ConfigFromArguments(args)
	if err != nil {
		t.Fatalf("ConfigFromArguments: %v", err)
	}
	if len(cfg.Servers) != 2 || cfg.Servers[0] != "10.0.0.1:11211" || cfg.Servers[1] != "10.0.0.2:11211" {
		t.Fatalf("Servers = %v", cfg.Servers)
	}
	if cfg.SocketTimeout != 5*time.Second {
		t.Fatalf("SocketTimeout = %v, want 5s", cfg.SocketTimeout)
	}
	if cfg.PoolMaxSize != 25 {
		t.Fatalf("PoolMaxSize = %d, want 25", cfg.PoolMaxSize)
	}
}

func TestConfigFromArgumentsNoServers(t *testing.T) {
	for _, opts := range []map[string]any{
		nil,
		{"url": ""},
		{"url": " , "},
	} {
		_, err := ConfigFromArguments(backend.Arguments{Options: opts})
		if !errors.Is(err, ErrNoServers) {
			t.Fatalf("options %v: err = %v, want ErrNoServers", opts, err)
		}
	}
}

func TestConfigFromArgumentsIgnoredKnobs(t *testing.T) {
	// pool knobs with no client-side equivalent are accepted, not rejected
	args := backend.Arguments{Options: map[string]any{
		"url":                         "127.0.0.1:11211",
		"dead_retry":                  300,
		"pool_unused_timeout":         60,
		"pool_connection_get_timeout": 10,
	}}
	if _, err := ConfigFromArguments(args); err != nil {
		t.Fatalf("ignored knobs should not fail construction: %v", err)
	}
}

func TestNewWithConfigAppliesTuning(t *testing.T) {
	b, err := NewWithConfig(Config{
		Servers:       []string{"127.0.0.1:11211"},
		SocketTimeout: 2 * time.Second,
		PoolMaxSize:   8,
	})
	if err != nil {
		t.Fatalf("NewWithConfig: %v", err)
	}
	if b.client.Timeout != 2*time.Second {
		t.Fatalf("Timeout = %v, want 2s", b.client.Timeout)
	}
	if b.client.MaxIdleConns != 8 {
		t.Fatalf("MaxIdleConns = %d, want 8", b.client.MaxIdleConns)
	}
}

func TestExpirationSeconds(t *testing.T) {
	tests := []struct {
		ttl  time.Duration
		want int32
	}{
		{0, 0},
		{-time.Second, 0},
		{500 * time.Millisecond, 1}, // sub-second TTLs round up, never to "no expiry"
		{time.Second, 1},
		{90 * time.Second, 90},
	}
	for _, tt := range tests {
		if got := expiration(tt.ttl); got != tt.want {
			t.Fatalf("expiration(%v) = %d, want %d", tt.ttl, got, tt.want)
		}
	}
}
