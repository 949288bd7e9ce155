package auth

import (
	"context"
	"errors"
	"time"

	"github.com/BradenHooton/shopflow/internal/models"
)

// SessionManager reads and replaces whole sessions in a SessionStore
type SessionManager struct {
	store SessionStore
	ttl   time.Duration
}

func NewSessionManager(store SessionStore, ttl time.Duration) *SessionManager {
	return &SessionManager{store: store, ttl: ttl}
}

// Load returns the session for sessionID, or an empty session if none is stored
func (m *SessionManager) Load(ctx context.Context, sessionID string) (*models.Session, error) {
	if sessionID == "" {
		return &models.Session{}, nil
	}

	session, err := m.store.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return &models.Session{}, nil
		}
		return nil, err
	}
	return session, nil
}

// Replace stores session as the whole state of sessionID. An empty session is deleted.
func (m *SessionManager) Replace(ctx context.Context, sessionID string, session *models.Session) error {
	if sessionID == "" {
		return models.ErrUnauthenticated
	}
	if session == nil || *session == (models.Session{}) {
		return m.store.Delete(ctx, sessionID)
	}
	return m.store.Set(ctx, sessionID, session, m.ttl)
}

// Destroy removes all state of sessionID
func (m *SessionManager) Destroy(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return m.store.Delete(ctx, sessionID)
}
