package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/AdamBeresnev/arena-leaderboard/internal/tournament"
)

// Listener is told about every state change along with the new dirty flag.
type Listener func(state tournament.State, dirty bool)

// Session is the single editor of one scope: it owns the current state, the
// encoding it was last loaded or saved with, and the load token that lets a
// newer load win over an older one.
type Session struct {
	t          *tournament.Tournament
	key        Scope
	store      Store
	logger     *slog.Logger
	now        func() time.Time
	mu         sync.Mutex
	state      tournament.State
	baseline   []byte
	token      uint64
	closed     bool
	lastSaved  time.Time
	listeners  map[int]Listener
	nextListen int
}

// NewSession starts from the format's default state. store may be nil, in
// which case the session works in memory only.
func NewSession(scope Scope, t *tournament.Tournament, store Store, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		t:         t,
		key:       scope.Normalize(),
		store:     store,
		logger:    logger.With("scope", scope.Normalize().String(), "format", t.ID()),
		now:       time.Now,
		listeners: make(map[int]Listener),
	}
	s.state = t.Default()
	s.baseline = s.encode(s.state)
	return s
}

func (s *Session) Scope() Scope {
	return s.key
}

func (s *Session) Tournament() *tournament.Tournament {
	return s.t
}

func (s *Session) encode(state tournament.State) []byte {
	data, err := json.Marshal(Save(state, s.t, time.Time{}))
	if err != nil {
		// only reachable through a bug in a MarshalJSON method
		s.logger.Error("encode state", "err", err)
		return nil
	}
	return data
}

func (s *Session) State() tournament.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Dirty reports whether the state differs from what was last loaded or saved.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !bytes.Equal(s.encode(s.state), s.baseline)
}

func (s *Session) LastSavedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSaved
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (s *Session) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextListen
	s.nextListen++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Apply runs one edit against the current state. A failed edit leaves the
// state as it was.
func (s *Session) Apply(edit func(*tournament.Tournament, tournament.State) (tournament.State, error)) (tournament.State, error) {
	s.mu.Lock()
	next, err := edit(s.t, s.state)
	if err != nil {
		state := s.state
		s.mu.Unlock()
		return state, err
	}
	s.state = next
	notify := s.changed()
	s.mu.Unlock()

	notify()
	return next, nil
}

// changed must be called with mu held; the returned func must be called
// without it.
func (s *Session) changed() func() {
	if s.closed || len(s.listeners) == 0 {
		return func() {}
	}
	state := s.state
	dirty := !bytes.Equal(s.encode(state), s.baseline)
	listeners := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	return func() {
		for _, fn := range listeners {
			fn(state, dirty)
		}
	}
}

// Load replaces the state with the stored snapshot. If another Load starts
// or the session is closed while this one waits on the store, the result is
// dropped and ErrSuperseded returned.
func (s *Session) Load(ctx context.Context) error {
	if s.store == nil {
		return ErrPersistenceNotConfigured
	}

	s.mu.Lock()
	s.token++
	token := s.token
	s.mu.Unlock()

	snap, err := s.store.Fetch(ctx, s.key)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", s.key, err)
	}

	s.mu.Lock()
	if s.closed || token != s.token {
		s.mu.Unlock()
		s.logger.Debug("dropping stale load", "token", token)
		return ErrSuperseded
	}
	s.state = Load(snap, s.t)
	s.baseline = s.encode(s.state)
	if snap != nil {
		s.lastSaved = snap.UpdatedAt
	}
	notify := s.changed()
	s.mu.Unlock()

	notify()
	if snap == nil {
		s.logger.Info("no saved snapshot, using defaults")
	}
	return nil
}

// Save writes the current state. Edits made while the write is in flight
// stay dirty. A failed save is not retried.
func (s *Session) Save(ctx context.Context) error {
	if s.store == nil {
		return ErrPersistenceNotConfigured
	}
	if err := s.key.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	snap := Save(s.state, s.t, s.now())
	encoded := s.encode(s.state)
	s.mu.Unlock()

	if err := s.store.Save(ctx, s.key, snap); err != nil {
		return fmt.Errorf("save %s: %w", s.key, err)
	}

	s.mu.Lock()
	s.baseline = encoded
	s.lastSaved = snap.UpdatedAt
	notify := s.changed()
	s.mu.Unlock()

	notify()
	s.logger.Info("snapshot saved")
	return nil
}

// Close drops listeners and makes any in-flight load a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.token++
	clear(s.listeners)
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
