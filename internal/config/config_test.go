package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"ARENA_ADDR", "ARENA_PERSISTENCE", "ARENA_LOG_LEVEL", "CORS_ALLOW_ORIGINS", "RATE_LIMIT_WINDOW", "DATABASE_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, PersistenceSQLite, cfg.Persistence)
	assert.True(t, cfg.PersistenceConfigured())
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.False(t, cfg.IsProduction())
}

func TestLoadFromEnv(t *testing.T) {
	testCases := []struct {
		name    string
		env     map[string]string
		wantErr bool
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "memory only",
			env:  map[string]string{"ARENA_PERSISTENCE": "None"},
			check: func(t *testing.T, cfg *Config) {
				assert.False(t, cfg.PersistenceConfigured())
			},
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"ARENA_PERSISTENCE": "postgres", "DATABASE_URL": ""},
			wantErr: true,
		},
		{
			name:    "unknown backend",
			env:     map[string]string{"ARENA_PERSISTENCE": "redis"},
			wantErr: true,
		},
		{
			name: "lists and levels",
			env: map[string]string{
				"CORS_ALLOW_ORIGINS": " https://a.example , ,https://b.example",
				"ARENA_LOG_LEVEL":    "debug",
				"RATE_LIMIT_ENABLED": "nope",
				"RATE_LIMIT_WINDOW":  "10",
			},
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowOrigins)
				assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
				assert.True(t, cfg.RateLimitEnabled, "unparsable bools fall back")
				assert.Equal(t, 10*time.Second, cfg.RateLimitWindow)
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("ARENA_PERSISTENCE", "")
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			cfg, err := Load()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tc.check(t, cfg)
		})
	}
}
