package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTPAddr != ":8080" {
		t.Fatalf("HTTPAddr = %q", cfg.App.HTTPAddr)
	}
	if cfg.App.Locale != "en" {
		t.Fatalf("Locale = %q", cfg.App.Locale)
	}
	if cfg.Security.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("RefreshTTL = %v", cfg.Security.RefreshTTL)
	}
}

func TestLoadParsesDurationsAndFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	raw := `{
  "app": {"http_addr": ":9000", "locale": "ua"},
  "security": {"jwt_secret": "file-secret", "access_ttl": "30m"}
}`
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.HTTPAddr != ":9000" {
		t.Fatalf("HTTPAddr = %q", cfg.App.HTTPAddr)
	}
	if cfg.App.Locale != "ua" {
		t.Fatalf("Locale = %q", cfg.App.Locale)
	}
	if cfg.Security.AccessTTL != 30*time.Minute {
		t.Fatalf("AccessTTL = %v", cfg.Security.AccessTTL)
	}
	// untouched fields come from defaults
	if cfg.Security.RefreshTTL != 7*24*time.Hour {
		t.Fatalf("RefreshTTL = %v", cfg.Security.RefreshTTL)
	}
	if cfg.Redis.Addr != "localhost:6379" {
		t.Fatalf("Redis.Addr = %q", cfg.Redis.Addr)
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("JWT_SECRET", "env-secret")
	t.Setenv("APP_HTTP_ADDR", ":7070")
	t.Setenv("REFRESH_TOKEN_TTL", "48h")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Security.JWTSecret != "env-secret" {
		t.Fatalf("JWTSecret = %q", cfg.Security.JWTSecret)
	}
	if cfg.App.HTTPAddr != ":7070" {
		t.Fatalf("HTTPAddr = %q", cfg.App.HTTPAddr)
	}
	if cfg.Security.RefreshTTL != 48*time.Hour {
		t.Fatalf("RefreshTTL = %v", cfg.Security.RefreshTTL)
	}
}
