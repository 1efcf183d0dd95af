package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sentimentscope/backend/pkg/utils"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// SessionStore issues and resolves opaque bearer tokens. Tokens are
// time-bounded; only their SHA-256 digests reach the backing store.
type SessionStore interface {
	Issue(ctx context.Context, userID string) (string, error)
	Resolve(ctx context.Context, token string) (string, error)
	Revoke(ctx context.Context, token string) error
}

type memorySession struct {
	userID    string
	expiresAt time.Time
}

// MemoryStore is a TTL-bounded in-process SessionStore. It backs tests
// and single-node deployments without Redis.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]memorySession),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *MemoryStore) Issue(ctx context.Context, userID string) (string, error) {
	token := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[utils.HashToken(token)] = memorySession{
		userID:    userID,
		expiresAt: s.now().Add(s.ttl),
	}
	return token, nil
}

func (s *MemoryStore) Resolve(ctx context.Context, token string) (string, error) {
	key := utils.HashToken(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[key]
	if !ok {
		return "", ErrSessionNotFound
	}
	if s.now().After(session.expiresAt) {
		delete(s.sessions, key)
		return "", ErrSessionNotFound
	}
	return session.userID, nil
}

func (s *MemoryStore) Revoke(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, utils.HashToken(token))
	return nil
}
