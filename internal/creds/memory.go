package creds

import (
	"context"
	"sync"
)

// MemStore is an in-memory Store for tests and single-process development.
type MemStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemStore() *MemStore {
	return &MemStore{sessions: make(map[string]Session)}
}

func (s *MemStore) Save(_ context.Context, visitorID string, session Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[visitorID] = session
	return nil
}

func (s *MemStore) Load(_ context.Context, visitorID string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[visitorID]
	if !ok {
		return Session{}, ErrNoSession
	}
	return session, nil
}

func (s *MemStore) Clear(_ context.Context, visitorID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, visitorID)
	return nil
}
