// Package config loads runtime settings from environment variables. Shared by
// cmd/web and cmd/arenactl.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// Persistence backends.
const (
	PersistenceSQLite   = "sqlite"
	PersistencePostgres = "postgres"
	PersistenceNone     = "none"
)

// --------------------------------------------------------------------------
// Config struct, populated from environment variables
// --------------------------------------------------------------------------

type Config struct {
	// HTTP server
	Addr        string
	Environment string // development, production
	LogLevel    slog.Level

	// Persistence
	Persistence    string
	SQLitePath     string
	DatabaseURL    string
	DBPoolMaxConns int

	// Formats directory overriding the built-in formats when set
	FormatsDir string

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Addr:        envOr("ARENA_ADDR", ":8080"),
		Environment: envOr("ARENA_ENV", "development"),
		LogLevel:    envLevel("ARENA_LOG_LEVEL", slog.LevelInfo),

		Persistence:    strings.ToLower(envOr("ARENA_PERSISTENCE", PersistenceSQLite)),
		SQLitePath:     envOr("ARENA_SQLITE_PATH", "arena.db"),
		DatabaseURL:    envOr("DATABASE_URL", ""),
		DBPoolMaxConns: envInt("DB_POOL_MAX_CONNS", 10),

		FormatsDir: envOr("ARENA_FORMATS_DIR", ""),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{
			"http://localhost:5173",
			"http://localhost:3000",
		}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 120),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,
	}

	switch cfg.Persistence {
	case PersistenceSQLite, PersistenceNone:
	case PersistencePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL must be set when ARENA_PERSISTENCE=postgres")
		}
	default:
		return nil, fmt.Errorf("unknown ARENA_PERSISTENCE %q", cfg.Persistence)
	}
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// PersistenceConfigured reports whether snapshots can be loaded and saved.
func (c *Config) PersistenceConfigured() bool {
	return c.Persistence != PersistenceNone
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func envLevel(key string, fallback slog.Level) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(os.Getenv(key))); err != nil {
		return fallback
	}
	return level
}
