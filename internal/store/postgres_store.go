package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/AdamBeresnev/arena-leaderboard/internal/snapshot"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS leaderboard_points (
	event_id TEXT NOT NULL,
	game_id TEXT NOT NULL,
	leaderboard_key TEXT NOT NULL DEFAULT 'default',
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (event_id, game_id, leaderboard_key)
)`

// PostgresStore talks to the hosted leaderboard_points table that the
// public site reads from.
type PostgresStore struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, now: time.Now}
}

// EnsureSchema creates the table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create leaderboard_points: %w", err)
	}
	return nil
}

func (s *PostgresStore) Fetch(ctx context.Context, scope snapshot.Scope) (*snapshot.Snapshot, error) {
	if scope.Validate() != nil {
		return nil, nil
	}
	scope = scope.Normalize()

	var (
		payload   []byte
		updatedAt time.Time
	)
	err := s.pool.QueryRow(ctx, `SELECT payload, updated_at FROM leaderboard_points
		WHERE event_id = $1 AND game_id = $2 AND leaderboard_key = $3`,
		scope.EventID, scope.GameID, scope.Key,
	).Scan(&payload, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", scope, err)
	}
	return decode(payload, updatedAt)
}

func (s *PostgresStore) Save(ctx context.Context, scope snapshot.Scope, snap snapshot.Snapshot) error {
	if err := scope.Validate(); err != nil {
		return err
	}
	scope = scope.Normalize()

	payload, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	updated := snap.UpdatedAt
	if updated.IsZero() {
		updated = s.now()
	}

	_, err = s.pool.Exec(ctx, `INSERT INTO leaderboard_points (event_id, game_id, leaderboard_key, payload, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (event_id, game_id, leaderboard_key) DO UPDATE SET
			payload = EXCLUDED.payload,
			updated_at = EXCLUDED.updated_at`,
		scope.EventID, scope.GameID, scope.Key, payload, updated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", scope, err)
	}
	return nil
}
