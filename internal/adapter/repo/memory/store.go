// Package memory implements an in-process session store. It backs tests and
// single-node deployments where persistence across restarts is not required.
package memory

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/fairyhunter13/ai-recruit-chat/internal/domain"
)

// Store keeps sessions in a mutex-guarded map. Values are deep-copied on the
// way in and out so callers never share message or profile slices.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]domain.ConversationSession
}

// New constructs an empty Store.
func New() *Store {
	return &Store{sessions: make(map[string]domain.ConversationSession)}
}

// clone deep-copies a session through its JSON form. Sessions are small, so
// this stays cheap while keeping slice fields unaliased.
func clone(s domain.ConversationSession) domain.ConversationSession {
	b, _ := json.Marshal(s)
	var out domain.ConversationSession
	_ = json.Unmarshal(b, &out)
	return out
}

// Get loads a session by id.
func (st *Store) Get(_ domain.Context, id string) (domain.ConversationSession, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	if !ok {
		return domain.ConversationSession{}, fmt.Errorf("op=session.get: id=%s: %w", id, domain.ErrNotFound)
	}
	return clone(s), nil
}

// Save inserts or replaces a session.
func (st *Store) Save(_ domain.Context, s domain.ConversationSession) error {
	if s.ID == "" {
		return fmt.Errorf("op=session.save: empty id: %w", domain.ErrInvalidArgument)
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[s.ID] = clone(s)
	return nil
}

// Delete removes a session by id.
func (st *Store) Delete(_ domain.Context, id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return fmt.Errorf("op=session.delete: id=%s: %w", id, domain.ErrNotFound)
	}
	delete(st.sessions, id)
	return nil
}

// ListAll returns a snapshot of every stored session.
func (st *Store) ListAll(_ domain.Context) ([]domain.ConversationSession, error) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]domain.ConversationSession, 0, len(st.sessions))
	for _, s := range st.sessions {
		out = append(out, clone(s))
	}
	return out, nil
}
