package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AdamBeresnev/arena-leaderboard/internal/db"
	"github.com/AdamBeresnev/arena-leaderboard/internal/snapshot"
)

// Runs against a real server only when ARENA_TEST_DATABASE_URL is set.
func TestPostgresStore(t *testing.T) {
	url := os.Getenv("ARENA_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("ARENA_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := db.OpenPostgres(ctx, url, 2)
	require.NoError(t, err)
	defer pool.Close()

	store := NewPostgresStore(pool)
	require.NoError(t, store.EnsureSchema(ctx))

	scope := snapshot.Scope{EventID: "store-test", GameID: "bgmi"}
	_, err = pool.Exec(ctx, "DELETE FROM leaderboard_points WHERE event_id = $1", scope.EventID)
	require.NoError(t, err)

	got, err := store.Fetch(ctx, scope)
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, store.Save(ctx, scope, testSnapshot()))
	got, err = store.Fetch(ctx, scope)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, []string{"Nova", "Orbit"}, got.Teams)
	assert.False(t, got.UpdatedAt.IsZero())
}
