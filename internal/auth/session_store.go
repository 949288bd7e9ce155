package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/redis/go-redis/v9"
)

// SessionStore persists session data by session id. Get returns models.ErrNotFound
// for unknown or expired sessions.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (*models.Session, error)
	Set(ctx context.Context, sessionID string, session *models.Session, ttl time.Duration) error
	Delete(ctx context.Context, sessionID string) error
}

type memorySessionEntry struct {
	session models.Session
	expiry  time.Time
}

// MemorySessionStore keeps sessions in process memory. Sessions are lost on restart.
type MemorySessionStore struct {
	sessions map[string]*memorySessionEntry
	mu       sync.RWMutex
}

// NewMemorySessionStore creates a store and sweeps expired sessions every interval until ctx is done
func NewMemorySessionStore(ctx context.Context, interval time.Duration) *MemorySessionStore {
	store := &MemorySessionStore{
		sessions: make(map[string]*memorySessionEntry),
	}

	if interval > 0 {
		go store.sweep(ctx, interval)
	}

	return store
}

func (s *MemorySessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	s.mu.RLock()
	entry, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiry) {
		return nil, models.ErrNotFound
	}

	session := entry.session
	return &session, nil
}

func (s *MemorySessionStore) Set(ctx context.Context, sessionID string, session *models.Session, ttl time.Duration) error {
	s.mu.Lock()
	s.sessions[sessionID] = &memorySessionEntry{
		session: *session,
		expiry:  time.Now().Add(ttl),
	}
	s.mu.Unlock()
	return nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}

// Len returns the number of stored sessions, expired or not
func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemorySessionStore) purgeExpired(now time.Time) {
	s.mu.Lock()
	for id, entry := range s.sessions {
		if now.After(entry.expiry) {
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
}

func (s *MemorySessionStore) sweep(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.purgeExpired(now)
		}
	}
}

const sessionNamespace = "session"

// RedisSessionStore keeps sessions as JSON values with a TTL
type RedisSessionStore struct {
	client redis.UniversalClient
}

func NewRedisSessionStore(client redis.UniversalClient) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func sessionKey(sessionID string) string {
	return sessionNamespace + ":" + sessionID
}

func (s *RedisSessionStore) Get(ctx context.Context, sessionID string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var session models.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &session, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, sessionID string, session *models.Session, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}

	if err := s.client.Set(ctx, sessionKey(sessionID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *RedisSessionStore) Delete(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
