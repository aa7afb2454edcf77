package snapshot

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrMissingScope             = errors.New("event and game id are required")
	ErrPersistenceNotConfigured = errors.New("persistence is not configured")
	ErrSuperseded               = errors.New("load superseded")
)

const DefaultKey = "default"

// Scope identifies one persisted leaderboard.
type Scope struct {
	EventID string
	GameID  string
	Key     string
}

func (s Scope) Normalize() Scope {
	if s.Key == "" {
		s.Key = DefaultKey
	}
	return s
}

func (s Scope) Validate() error {
	if s.EventID == "" || s.GameID == "" {
		return ErrMissingScope
	}
	return nil
}

func (s Scope) String() string {
	s = s.Normalize()
	return fmt.Sprintf("%s/%s/%s", s.EventID, s.GameID, s.Key)
}

// Store persists snapshots. Fetch returns nil, nil when nothing is stored for
// the scope, including when the scope is incomplete.
type Store interface {
	Fetch(ctx context.Context, scope Scope) (*Snapshot, error)
	Save(ctx context.Context, scope Scope, snap Snapshot) error
}
