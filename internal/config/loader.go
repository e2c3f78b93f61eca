package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the scheduler service.
type Config struct {
	HTTPPort      int           `env:"SCHEDULER_HTTP_PORT" envDefault:"8080"`
	SQLiteDSN     string        `env:"SCHEDULER_SQLITE_DSN" envDefault:"file:scheduler.db"`
	SessionTTL    time.Duration `env:"SCHEDULER_SESSION_TTL" envDefault:"24h"`
	SessionSweep  string        `env:"SCHEDULER_SESSION_SWEEP" envDefault:"@hourly"`
	AdminUsername string        `env:"SCHEDULER_ADMIN_USERNAME"`
	AdminPassword string        `env:"SCHEDULER_ADMIN_PASSWORD"`
}

// Load reads an optional .env file and then parses configuration from the
// process environment, validating value ranges.
func Load() (Config, error) {
	// Missing .env is fine; the environment alone is enough.
	_ = godotenv.Load()

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("環境変数の読み込みに失敗しました: %w", err)
	}

	invalid := make([]string, 0, 2)
	if cfg.HTTPPort <= 0 || cfg.HTTPPort > 65535 {
		invalid = append(invalid, "SCHEDULER_HTTP_PORT")
	}
	if strings.TrimSpace(cfg.SQLiteDSN) == "" {
		invalid = append(invalid, "SCHEDULER_SQLITE_DSN")
	}
	if cfg.SessionTTL <= 0 {
		invalid = append(invalid, "SCHEDULER_SESSION_TTL")
	}
	if strings.TrimSpace(cfg.SessionSweep) == "" {
		invalid = append(invalid, "SCHEDULER_SESSION_SWEEP")
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("環境変数の値が不正です: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
