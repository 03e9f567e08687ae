// Package memory provides an in-memory session repository keyed by
// (userID, id), used in tests and in dev without a database.
package memory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/interview-oracle/api/internal/domain"
)

// SessionRepo is a thread-safe in-memory domain.SessionRepository.
type SessionRepo struct {
	mu       sync.RWMutex
	sessions map[string]map[string]domain.Session // userID -> id -> session
}

// NewSessionRepo constructs an empty in-memory session repository.
func NewSessionRepo() *SessionRepo {
	return &SessionRepo{sessions: make(map[string]map[string]domain.Session)}
}

// Create stores a new session and returns its id.
func (r *SessionRepo) Create(_ domain.Context, s domain.Session) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	byID, ok := r.sessions[s.UserID]
	if !ok {
		byID = make(map[string]domain.Session)
		r.sessions[s.UserID] = byID
	}
	byID[s.ID] = s
	return s.ID, nil
}

// Get loads one session or returns domain.ErrNotFound.
func (r *SessionRepo) Get(_ domain.Context, userID, id string) (domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if s, ok := r.sessions[userID][id]; ok {
		return s, nil
	}
	return domain.Session{}, fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
}

// List returns the user's sessions, most recently updated first.
func (r *SessionRepo) List(_ domain.Context, userID string) ([]domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Session, 0, len(r.sessions[userID]))
	for _, s := range r.sessions[userID] {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Metadata.UpdatedAt.After(out[j].Metadata.UpdatedAt)
	})
	return out, nil
}

// Update replaces a stored session or returns domain.ErrNotFound.
func (r *SessionRepo) Update(_ domain.Context, s domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[s.UserID][s.ID]; !ok {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, s.ID)
	}
	r.sessions[s.UserID][s.ID] = s
	return nil
}

// Delete removes a stored session or returns domain.ErrNotFound.
func (r *SessionRepo) Delete(_ domain.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[userID][id]; !ok {
		return fmt.Errorf("%w: session %s", domain.ErrNotFound, id)
	}
	delete(r.sessions[userID], id)
	return nil
}
