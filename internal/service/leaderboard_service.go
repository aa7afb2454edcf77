package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AdamBeresnev/arena-leaderboard/internal/bracket"
	"github.com/AdamBeresnev/arena-leaderboard/internal/leaderboard"
	"github.com/AdamBeresnev/arena-leaderboard/internal/snapshot"
	"github.com/AdamBeresnev/arena-leaderboard/internal/tournament"
	"github.com/AdamBeresnev/arena-leaderboard/internal/utils"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

var notFoundErrors = []error{
	tournament.ErrNoFormat,
	tournament.ErrUnknownStage,
	tournament.ErrUnknownTarget,
	tournament.ErrNoBracket,
	tournament.ErrNoFinals,
	tournament.ErrNoPointsGroups,
	leaderboard.ErrUnknownGroup,
	leaderboard.ErrUnknownMatchKey,
	leaderboard.ErrIndexOutOfRange,
	bracket.ErrUnknownMatch,
}

// classify tags engine errors so callers can map them with errors.Is.
func classify(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return fmt.Errorf("%w: %w", ErrNotFound, err)
		}
	}
	return err
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}

// LeaderboardService keeps one editing session per scope and routes edits to
// the tournament format matched by event and game.
type LeaderboardService struct {
	registry *tournament.Registry
	store    snapshot.Store
	logger   *slog.Logger

	mu       sync.Mutex
	sessions map[snapshot.Scope]*snapshot.Session
}

// NewLeaderboardService takes a nil store to run without persistence.
func NewLeaderboardService(registry *tournament.Registry, store snapshot.Store, logger *slog.Logger) *LeaderboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaderboardService{
		registry: registry,
		store:    store,
		logger:   logger,
		sessions: make(map[snapshot.Scope]*snapshot.Session),
	}
}

func (s *LeaderboardService) PersistenceConfigured() bool {
	return s.store != nil
}

func (s *LeaderboardService) Formats() []tournament.Format {
	all := s.registry.All()
	out := make([]tournament.Format, len(all))
	for i, t := range all {
		out[i] = t.Format
	}
	return out
}

// Scope resolves the format for event and game and the storage scope it uses.
func (s *LeaderboardService) Scope(eventID, gameID string) (*tournament.Tournament, snapshot.Scope, error) {
	t, err := s.registry.Resolve(eventID, gameID)
	if err != nil {
		return nil, snapshot.Scope{}, classify(err)
	}
	scope := snapshot.Scope{EventID: eventID, GameID: gameID, Key: t.Format.LeaderboardKey}.Normalize()
	return t, scope, nil
}

// Session returns the open session for the scope, starting one if needed.
func (s *LeaderboardService) Session(eventID, gameID string) (*snapshot.Session, error) {
	t, scope, err := s.Scope(eventID, gameID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[scope]; ok && !sess.Closed() {
		return sess, nil
	}
	sess := snapshot.NewSession(scope, t, s.store, s.logger)
	sess.Subscribe(func(_ tournament.State, dirty bool) {
		s.logger.Debug("state changed", "scope", scope.String(), "dirty", dirty)
	})
	s.sessions[scope] = sess
	s.logger.Debug("session opened", "scope", scope.String(), "format", t.ID())
	return sess, nil
}

// Leave closes the scope's session. Pending loads are dropped and unsaved
// edits are discarded.
func (s *LeaderboardService) Leave(eventID, gameID string) error {
	_, scope, err := s.Scope(eventID, gameID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	sess, ok := s.sessions[scope]
	delete(s.sessions, scope)
	s.mu.Unlock()

	if ok {
		if sess.Dirty() {
			s.logger.Warn("leaving with unsaved changes", "scope", scope.String())
		}
		sess.Close()
	}
	return nil
}

// Close ends every open session.
func (s *LeaderboardService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for scope, sess := range s.sessions {
		sess.Close()
		delete(s.sessions, scope)
	}
}

type StateView struct {
	Format      string            `json:"format"`
	Scope       string            `json:"scope"`
	State       tournament.State  `json:"-"`
	Snapshot    snapshot.Snapshot `json:"state"`
	Dirty       bool              `json:"dirty"`
	LastSavedAt *time.Time        `json:"lastSavedAt,omitempty"`
	Persistence bool              `json:"persistence"`
}

func (s *LeaderboardService) view(sess *snapshot.Session) *StateView {
	state := sess.State()
	v := &StateView{
		Format:      sess.Tournament().ID(),
		Scope:       sess.Scope().String(),
		State:       state,
		Snapshot:    snapshot.Save(state, sess.Tournament(), time.Time{}),
		Dirty:       sess.Dirty(),
		Persistence: s.PersistenceConfigured(),
	}
	if at := sess.LastSavedAt(); !at.IsZero() {
		v.LastSavedAt = utils.Ptr(at)
	}
	return v
}

func (s *LeaderboardService) State(eventID, gameID string) (*StateView, error) {
	sess, err := s.Session(eventID, gameID)
	if err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *LeaderboardService) Load(ctx context.Context, eventID, gameID string) (*StateView, error) {
	sess, err := s.Session(eventID, gameID)
	if err != nil {
		return nil, err
	}
	if err := sess.Load(ctx); err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *LeaderboardService) Save(ctx context.Context, eventID, gameID string) (*StateView, error) {
	sess, err := s.Session(eventID, gameID)
	if err != nil {
		return nil, err
	}
	if err := sess.Save(ctx); err != nil {
		return nil, err
	}
	return s.view(sess), nil
}

func (s *LeaderboardService) apply(eventID, gameID string, edit func(*tournament.Tournament, tournament.State) (tournament.State, error)) (*StateView, error) {
	sess, err := s.Session(eventID, gameID)
	if err != nil {
		return nil, err
	}
	if _, err := sess.Apply(edit); err != nil {
		return nil, classify(err)
	}
	return s.view(sess), nil
}

func (s *LeaderboardService) EditStat(eventID, gameID, stage, matchKey string, idx int, field string, value any) (*StateView, error) {
	f, err := leaderboard.ParseField(field)
	if err != nil {
		return nil, invalid(err)
	}
	return s.apply(eventID, gameID, func(t *tournament.Tournament, st tournament.State) (tournament.State, error) {
		return t.EditStat(st, stage, matchKey, idx, f, value)
	})
}

func (s *LeaderboardService) RenameTeam(eventID, gameID, stage string, idx int, name string) (*StateView, error) {
	return s.apply(eventID, gameID, func(t *tournament.Tournament, st tournament.State) (tournament.State, error) {
		return t.RenameTeam(st, stage, idx, name)
	})
}

// Reseed regenerates the target from current qualifiers. Reseeding a bracket
// that already has results wipes them; that is allowed but logged.
func (s *LeaderboardService) Reseed(eventID, gameID, target string) (*StateView, error) {
	return s.apply(eventID, gameID, func(t *tournament.Tournament, st tournament.State) (tournament.State, error) {
		if target == tournament.TargetBracket && st.Board != nil && st.Board.HasResults() {
			s.logger.Warn("reseeding a bracket with recorded results", "format", t.ID(), "event", eventID, "game", gameID)
		}
		return t.Reseed(st, target)
	})
}

func (s *LeaderboardService) SetScore(eventID, gameID string, ref bracket.MatchRef, scoreA, scoreB int) (*StateView, error) {
	return s.apply(eventID, gameID, func(t *tournament.Tournament, st tournament.State) (tournament.State, error) {
		return t.SetScore(st, ref, scoreA, scoreB)
	})
}

func (s *LeaderboardService) SetPoints(eventID, gameID, group string, idx int, field string, value any) (*StateView, error) {
	f, err := leaderboard.ParsePointsField(field)
	if err != nil {
		return nil, invalid(err)
	}
	return s.apply(eventID, gameID, func(t *tournament.Tournament, st tournament.State) (tournament.State, error) {
		return t.SetPoints(st, group, idx, f, value)
	})
}

func (s *LeaderboardService) SetFinalsStat(eventID, gameID string, origIdx int, field string, value any) (*StateView, error) {
	f, err := leaderboard.ParseField(field)
	if err != nil {
		return nil, invalid(err)
	}
	return s.apply(eventID, gameID, func(t *tournament.Tournament, st tournament.State) (tournament.State, error) {
		return t.SetFinalsStat(st, origIdx, f, value)
	})
}

func (s *LeaderboardService) SetTeams(eventID, gameID string, teams []string) (*StateView, error) {
	sess, err := s.Session(eventID, gameID)
	if err != nil {
		return nil, err
	}
	_, err = sess.Apply(func(t *tournament.Tournament, st tournament.State) (tournament.State, error) {
		return t.SetTeams(st, teams)
	})
	switch {
	case errors.Is(err, tournament.ErrNoBracket):
		return nil, classify(err)
	case err != nil:
		return nil, invalid(err)
	}
	return s.view(sess), nil
}

func (s *LeaderboardService) Standings(eventID, gameID, stage, group string) ([]leaderboard.AggregateRow, error) {
	sess, err := s.Session(eventID, gameID)
	if err != nil {
		return nil, err
	}
	rows, err := sess.Tournament().Standings(sess.State(), stage, group)
	return rows, classify(err)
}

func (s *LeaderboardService) Qualified(eventID, gameID, stage string) ([]leaderboard.Qualifier, error) {
	sess, err := s.Session(eventID, gameID)
	if err != nil {
		return nil, err
	}
	qs, err := sess.Tournament().Qualified(sess.State(), stage)
	return qs, classify(err)
}

func (s *LeaderboardService) FinalsStandings(eventID, gameID string) ([]leaderboard.AggregateRow, error) {
	sess, err := s.Session(eventID, gameID)
	if err != nil {
		return nil, err
	}
	if sess.Tournament().Format.Finals == nil {
		return nil, classify(tournament.ErrNoFinals)
	}
	return sess.Tournament().FinalsStandings(sess.State()), nil
}

func (s *LeaderboardService) PointsStandings(eventID, gameID, group string) ([]leaderboard.PointsRow, error) {
	sess, err := s.Session(eventID, gameID)
	if err != nil {
		return nil, err
	}
	rows, err := sess.Tournament().PointsStandings(sess.State(), group)
	return rows, classify(err)
}
