package config

import (
	"log/slog"
	"testing"
	"time"
)

var envKeys = []string{
	"ADDR", "PORT", "APP_ENV", "NODE_ENV",
	"IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT", "READ_HEADER_TIMEOUT", "READ_TIMEOUT", "WRITE_TIMEOUT",
	"LOG_LEVEL", "COMPANION_HOST", "COMPANION_PROTOCOL", "COMPANION_PATH", "COMPANION_URL",
	"CORS_ORIGINS", "UPLOAD_URLS", "FILE_PATH",
	"COMPANION_UNSPLASH_KEY", "UNSPLASH_ACCESS_KEY", "UNSPLASH_KEY",
	"UPSTREAM_TIMEOUT", "UPSTREAM_MAX_CONNS", "GOOGLE_PICKER_ENABLED",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_UsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg := Load()

	if cfg.Addr != "127.0.0.1:3020" {
		t.Fatalf("Addr: got %q, want %q", cfg.Addr, "127.0.0.1:3020")
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Fatalf("IdleTimeout: got %v, want %v", cfg.IdleTimeout, 60*time.Second)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Fatalf("ShutdownTimeout: got %v, want %v", cfg.ShutdownTimeout, 10*time.Second)
	}
	if cfg.UpstreamTimeout != 10*time.Second {
		t.Fatalf("UpstreamTimeout: got %v, want %v", cfg.UpstreamTimeout, 10*time.Second)
	}
	if cfg.UpstreamMaxConns != 30 {
		t.Fatalf("UpstreamMaxConns: got %d, want 30", cfg.UpstreamMaxConns)
	}
	if cfg.Production() {
		t.Fatal("default environment should not be production")
	}
	if cfg.FilePath != "./data" {
		t.Fatalf("FilePath: got %q, want %q", cfg.FilePath, "./data")
	}
	if cfg.CompanionURL != "https://127.0.0.1:3020" {
		t.Fatalf("CompanionURL: got %q, want %q", cfg.CompanionURL, "https://127.0.0.1:3020")
	}
	if len(cfg.CORSOrigins) != len(DefaultCORSOrigins) {
		t.Fatalf("CORSOrigins: got %d entries, want %d", len(cfg.CORSOrigins), len(DefaultCORSOrigins))
	}
	if !cfg.GooglePickerEnabled {
		t.Fatal("GooglePickerEnabled should default to true")
	}
}

func TestLoad_ReadsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("ADDR", ":18080")
	t.Setenv("IDLE_TIMEOUT", "2m")
	t.Setenv("READ_TIMEOUT", "5s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("UPSTREAM_TIMEOUT", "3s")
	t.Setenv("UPSTREAM_MAX_CONNS", "8")
	t.Setenv("CORS_ORIGINS", " https://a.example , ,https://b.example")
	t.Setenv("GOOGLE_PICKER_ENABLED", "false")

	cfg := Load()

	if cfg.Addr != ":18080" {
		t.Fatalf("Addr: got %q, want %q", cfg.Addr, ":18080")
	}
	if cfg.IdleTimeout != 2*time.Minute {
		t.Fatalf("IdleTimeout: got %v, want %v", cfg.IdleTimeout, 2*time.Minute)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Fatalf("ReadTimeout: got %v, want %v", cfg.ReadTimeout, 5*time.Second)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Fatalf("LogLevel: got %v, want %v", cfg.LogLevel, slog.LevelDebug)
	}
	if cfg.UpstreamTimeout != 3*time.Second {
		t.Fatalf("UpstreamTimeout: got %v, want %v", cfg.UpstreamTimeout, 3*time.Second)
	}
	if cfg.UpstreamMaxConns != 8 {
		t.Fatalf("UpstreamMaxConns: got %d, want 8", cfg.UpstreamMaxConns)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[0] != "https://a.example" || cfg.CORSOrigins[1] != "https://b.example" {
		t.Fatalf("CORSOrigins: got %v", cfg.CORSOrigins)
	}
	if cfg.GooglePickerEnabled {
		t.Fatal("GooglePickerEnabled: got true, want false")
	}
}

func TestLoad_PortFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")

	if got := Load().Addr; got != ":8080" {
		t.Fatalf("Addr: got %q, want %q", got, ":8080")
	}
}

func TestLoad_ProductionDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("NODE_ENV", "production")

	cfg := Load()
	if !cfg.Production() {
		t.Fatal("NODE_ENV=production should select production")
	}
	if cfg.FilePath != "/tmp" {
		t.Fatalf("FilePath: got %q, want %q", cfg.FilePath, "/tmp")
	}
}

func TestLoad_CompanionKeyWinsOverBareKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("UNSPLASH_ACCESS_KEY", "bare")
	t.Setenv("COMPANION_UNSPLASH_KEY", "companion")

	if got := Load().UnsplashAccessKey; got != "companion" {
		t.Fatalf("UnsplashAccessKey: got %q, want %q", got, "companion")
	}
}

func TestLoad_CompanionURLDerived(t *testing.T) {
	clearEnv(t)
	t.Setenv("COMPANION_HOST", "companion.kboodle.com")
	t.Setenv("COMPANION_PROTOCOL", "https")
	t.Setenv("COMPANION_PATH", "/companion")

	cfg := Load()
	if cfg.CompanionURL != "https://companion.kboodle.com/companion" {
		t.Fatalf("CompanionURL: got %q", cfg.CompanionURL)
	}
	if len(cfg.UploadURLs) != 1 || cfg.UploadURLs[0] != cfg.CompanionURL {
		t.Fatalf("UploadURLs: got %v, want [%s]", cfg.UploadURLs, cfg.CompanionURL)
	}
}
