// Package session keeps per-user dataset state between requests. Each
// upload creates a session holding the original table and a working
// copy that feature operations mutate. Sessions expire after a period
// of inactivity.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/samhitalabs/sync/internal/dataset"
)

// ErrNotFound reports a session id with no live state, either never
// created or already expired.
var ErrNotFound = errors.New("dataset session not found")

// State is one user's loaded dataset.
type State struct {
	ID         uuid.UUID
	UserEmail  string
	FileName   string
	Original   *dataset.Table
	Working    *dataset.Table
	UploadedAt time.Time

	lastAccess atomic.Int64 // unix nanos
}

func (st *State) touch() {
	st.lastAccess.Store(time.Now().UnixNano())
}

// Store is a concurrency-safe session registry.
type Store struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*State
	ttl      time.Duration
	log      *slog.Logger
}

// New returns an empty store whose sessions expire after ttl of
// inactivity.
func New(ttl time.Duration, log *slog.Logger) *Store {
	return &Store{
		sessions: make(map[uuid.UUID]*State),
		ttl:      ttl,
		log:      log,
	}
}

// Create registers a fresh session for the given upload and returns it.
// Any previous session belonging to the same user is dropped, so each
// user holds at most one dataset in memory.
func (s *Store) Create(userEmail, fileName string, tbl *dataset.Table) *State {
	st := &State{
		ID:         uuid.New(),
		UserEmail:  userEmail,
		FileName:   fileName,
		Original:   tbl,
		Working:    tbl.Clone(),
		UploadedAt: time.Now(),
	}
	st.touch()

	s.mu.Lock()
	for id, old := range s.sessions {
		if old.UserEmail == userEmail {
			delete(s.sessions, id)
		}
	}
	s.sessions[st.ID] = st
	s.mu.Unlock()
	return st
}

// Read runs fn against the session under a shared lock. fn must not
// mutate the tables.
func (s *Store) Read(id uuid.UUID, fn func(*State) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	st.touch()
	return fn(st)
}

// Mutate runs fn against the session under the exclusive lock. Feature
// operations that rewrite the working table go through here.
func (s *Store) Mutate(id uuid.UUID, fn func(*State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	st.touch()
	return fn(st)
}

// Reset discards the working copy and restores the original table.
func (s *Store) Reset(id uuid.UUID) error {
	return s.Mutate(id, func(st *State) error {
		st.Working = st.Original.Clone()
		return nil
	})
}

// Delete removes a session if present.
func (s *Store) Delete(id uuid.UUID) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Find returns the live session id for a user, if any.
func (s *Store) Find(userEmail string) (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for id, st := range s.sessions {
		if st.UserEmail == userEmail {
			return id, true
		}
	}
	return uuid.Nil, false
}

// Len reports the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops sessions idle longer than the ttl and reports how many
// were removed.
func (s *Store) Sweep(now time.Time) int {
	cutoff := now.Add(-s.ttl).UnixNano()

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, st := range s.sessions {
		if st.lastAccess.Load() < cutoff {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions on the given interval until ctx is done.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if removed := s.Sweep(now); removed > 0 {
				s.log.Info("expired dataset sessions removed",
					slog.Int("count", removed),
					slog.Int("remaining", s.Len()),
				)
			}
		}
	}
}
