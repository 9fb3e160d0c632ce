package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CAREHUB_ADDR", "")
	t.Setenv("TOKEN_TTL", "")
	t.Setenv("REDIS_DB", "")
	t.Setenv("PUBLIC_BASE_URL", "")

	cfg := Load()
	if cfg.Addr != ":8080" {
		t.Fatalf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.TokenTTL != 72*time.Hour {
		t.Fatalf("expected default ttl, got %v", cfg.TokenTTL)
	}
	if cfg.RedisDB != 0 {
		t.Fatalf("expected redis db 0, got %d", cfg.RedisDB)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CAREHUB_ADDR", ":9090")
	t.Setenv("TOKEN_TTL", "2h")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("PUBLIC_BASE_URL", "https://cdn.example.com/")

	cfg := Load()
	if cfg.Addr != ":9090" || cfg.TokenTTL != 2*time.Hour || cfg.RedisDB != 3 {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if cfg.PublicBaseURL != "https://cdn.example.com" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.PublicBaseURL)
	}
}

func TestLoad_BadValuesFallBack(t *testing.T) {
	t.Setenv("TOKEN_TTL", "soon")
	t.Setenv("REDIS_DB", "x")

	cfg := Load()
	if cfg.TokenTTL != 72*time.Hour || cfg.RedisDB != 0 {
		t.Fatalf("expected fallbacks, got ttl=%v db=%d", cfg.TokenTTL, cfg.RedisDB)
	}
}
