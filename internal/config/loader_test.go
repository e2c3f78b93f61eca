package config

import (
	"os"
	"testing"
	"time"
)

func TestLoader_ParseEnvironment(t *testing.T) {

	t.Run("applies defaults when variables are missing", func(t *testing.T) {
		unset := []string{
			"SCHEDULER_HTTP_PORT",
			"SCHEDULER_SQLITE_DSN",
			"SCHEDULER_SESSION_TTL",
			"SCHEDULER_SESSION_SWEEP",
		}
		for _, key := range unset {
			if err := os.Unsetenv(key); err != nil {
				t.Fatalf("failed to unset %s: %v", key, err)
			}
		}

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 8080 {
			t.Fatalf("expected default HTTP port 8080, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:scheduler.db" {
			t.Fatalf("unexpected default DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 24*time.Hour {
			t.Fatalf("expected default session TTL 24h, got %s", cfg.SessionTTL)
		}
		if cfg.SessionSweep != "@hourly" {
			t.Fatalf("unexpected default sweep schedule: %q", cfg.SessionSweep)
		}
	})

	t.Run("parses duration and numeric fields", func(t *testing.T) {
		t.Setenv("SCHEDULER_HTTP_PORT", "9090")
		t.Setenv("SCHEDULER_SQLITE_DSN", "file:/tmp/scheduler.db")
		t.Setenv("SCHEDULER_SESSION_TTL", "12h")
		t.Setenv("SCHEDULER_SESSION_SWEEP", "@every 30m")
		t.Setenv("SCHEDULER_ADMIN_USERNAME", "admin")
		t.Setenv("SCHEDULER_ADMIN_PASSWORD", "bootstrap-pw")

		cfg, err := Load()
		if err != nil {
			t.Fatalf("Load returned error: %v", err)
		}

		if cfg.HTTPPort != 9090 {
			t.Fatalf("expected HTTP port 9090, got %d", cfg.HTTPPort)
		}
		if cfg.SQLiteDSN != "file:/tmp/scheduler.db" {
			t.Fatalf("unexpected DSN: %q", cfg.SQLiteDSN)
		}
		if cfg.SessionTTL != 12*time.Hour {
			t.Fatalf("expected session TTL 12h, got %s", cfg.SessionTTL)
		}
		if cfg.SessionSweep != "@every 30m" {
			t.Fatalf("unexpected sweep schedule: %q", cfg.SessionSweep)
		}
		if cfg.AdminUsername != "admin" || cfg.AdminPassword != "bootstrap-pw" {
			t.Fatalf("unexpected bootstrap credentials: %q", cfg.AdminUsername)
		}
	})

	t.Run("rejects out-of-range values", func(t *testing.T) {
		t.Setenv("SCHEDULER_HTTP_PORT", "70000")

		if _, err := Load(); err == nil {
			t.Fatalf("expected error for out-of-range port")
		}
	})
}
