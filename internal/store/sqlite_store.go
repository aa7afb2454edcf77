package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/AdamBeresnev/arena-leaderboard/internal/snapshot"
)

type snapshotRow struct {
	ID             string    `db:"id"`
	EventID        string    `db:"event_id"`
	GameID         string    `db:"game_id"`
	LeaderboardKey string    `db:"leaderboard_key"`
	Payload        string    `db:"payload"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// SnapshotStore keeps one snapshot row per scope in SQLite.
type SnapshotStore struct {
	db  *sqlx.DB
	now func() time.Time
}

func NewSnapshotStore(db *sqlx.DB) *SnapshotStore {
	return &SnapshotStore{db: db, now: time.Now}
}

func (s *SnapshotStore) Fetch(ctx context.Context, scope snapshot.Scope) (*snapshot.Snapshot, error) {
	if scope.Validate() != nil {
		return nil, nil
	}
	scope = scope.Normalize()

	var row snapshotRow
	err := s.db.GetContext(ctx, &row, `SELECT * FROM leaderboard_snapshots
		WHERE event_id = ? AND game_id = ? AND leaderboard_key = ?`, scope.EventID, scope.GameID, scope.Key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return decode([]byte(row.Payload), row.UpdatedAt)
}

func (s *SnapshotStore) Save(ctx context.Context, scope snapshot.Scope, snap snapshot.Snapshot) error {
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

	row := snapshotRow{
		ID:             uuid.NewString(),
		EventID:        scope.EventID,
		GameID:         scope.GameID,
		LeaderboardKey: scope.Key,
		Payload:        string(payload),
		CreatedAt:      updated.UTC(),
		UpdatedAt:      updated.UTC(),
	}
	_, err = s.db.NamedExecContext(ctx, `INSERT INTO leaderboard_snapshots (id, event_id, game_id, leaderboard_key, payload, created_at, updated_at)
		VALUES (:id, :event_id, :game_id, :leaderboard_key, :payload, :created_at, :updated_at)
		ON CONFLICT (event_id, game_id, leaderboard_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at`, row)
	return err
}

// ScopeInfo describes a stored snapshot without its payload.
type ScopeInfo struct {
	Scope     snapshot.Scope
	UpdatedAt time.Time
}

// List returns every stored scope, most recently updated first.
func (s *SnapshotStore) List(ctx context.Context) ([]ScopeInfo, error) {
	var rows []snapshotRow
	err := s.db.SelectContext(ctx, &rows, `SELECT id, event_id, game_id, leaderboard_key, '' AS payload, created_at, updated_at
		FROM leaderboard_snapshots ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	out := make([]ScopeInfo, len(rows))
	for i, r := range rows {
		out[i] = ScopeInfo{
			Scope:     snapshot.Scope{EventID: r.EventID, GameID: r.GameID, Key: r.LeaderboardKey},
			UpdatedAt: r.UpdatedAt,
		}
	}
	return out, nil
}

func decode(payload []byte, updatedAt time.Time) (*snapshot.Snapshot, error) {
	var snap snapshot.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	snap.UpdatedAt = updatedAt
	return &snap, nil
}
