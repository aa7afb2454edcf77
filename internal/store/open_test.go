package store

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/arena-leaderboard/internal/config"
	"github.com/AdamBeresnev/arena-leaderboard/internal/snapshot"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		st, closeFn, err := Open(ctx, &config.Config{Persistence: config.PersistenceNone}, slog.Default())
		require.NoError(t, err)
		defer closeFn()
		assert.Nil(t, st)
	})

	t.Run("sqlite", func(t *testing.T) {
		cfg := &config.Config{Persistence: config.PersistenceSQLite, SQLitePath: filepath.Join(t.TempDir(), "arena.db")}
		st, closeFn, err := Open(ctx, cfg, slog.Default())
		require.NoError(t, err)
		defer closeFn()

		scope := snapshot.Scope{EventID: "e", GameID: "g"}
		require.NoError(t, st.Save(ctx, scope, testSnapshot()))
		got, err := st.Fetch(ctx, scope)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, []string{"Nova", "Orbit"}, got.Teams)
	})
}
