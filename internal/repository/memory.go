package repository

import (
	"context"
	"sync"
	"time"

	"github.com/leasap/portal-server-go/internal/model"
)

// MemoryCredentialStore is the in-process fallback used when no database is
// configured. Sessions survive only as long as the process does, which is
// acceptable for the degraded mode and makes it the natural test double.
type MemoryCredentialStore struct {
	mu       sync.RWMutex
	sessions map[string]model.CredentialSession
}

func NewMemoryCredentialStore() *MemoryCredentialStore {
	return &MemoryCredentialStore{
		sessions: make(map[string]model.CredentialSession),
	}
}

func (s *MemoryCredentialStore) Save(_ context.Context, tokenHash string, creds model.Credentials, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[tokenHash] = model.CredentialSession{
		TokenHash:   tokenHash,
		Credentials: creds,
		ExpiresAt:   expiresAt,
		CreatedAt:   time.Now(),
	}
	return nil
}

func (s *MemoryCredentialStore) Find(_ context.Context, tokenHash string) (*model.CredentialSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[tokenHash]
	if !ok || time.Now().After(session.ExpiresAt) {
		return nil, nil
	}
	copied := session
	return &copied, nil
}

func (s *MemoryCredentialStore) Clear(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, tokenHash)
	return nil
}

func (s *MemoryCredentialStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed int64
	now := time.Now()
	for hash, session := range s.sessions {
		if now.After(session.ExpiresAt) {
			delete(s.sessions, hash)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored sessions, expired ones included.
func (s *MemoryCredentialStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var _ CredentialStore = (*MemoryCredentialStore)(nil)
