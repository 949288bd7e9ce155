package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrInvalidSessionToken = errors.New("invalid session token")

// SessionClaims is the payload of the signed session cookie. It only carries the
// session id; session data stays server-side.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// SessionTokenManager signs and verifies session cookie values
type SessionTokenManager struct {
	secret []byte
	maxAge time.Duration
}

func NewSessionTokenManager(secret string, maxAge time.Duration) *SessionTokenManager {
	return &SessionTokenManager{secret: []byte(secret), maxAge: maxAge}
}

// MaxAge is the lifetime of a session cookie
func (m *SessionTokenManager) MaxAge() time.Duration {
	return m.maxAge
}

// Issue creates a new session id and its signed token
func (m *SessionTokenManager) Issue() (token, sessionID string, err error) {
	sessionID = uuid.New().String()
	token, err = m.Sign(sessionID)
	if err != nil {
		return "", "", err
	}
	return token, sessionID, nil
}

// Sign returns the signed token for an existing session id
func (m *SessionTokenManager) Sign(sessionID string) (string, error) {
	now := time.Now()

	claims := &SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.maxAge)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return token, nil
}

// Parse verifies the token signature and expiry and returns the session id
func (m *SessionTokenManager) Parse(token string) (string, error) {
	claims := &SessionClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return m.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !parsed.Valid {
		return "", ErrInvalidSessionToken
	}

	if _, err := uuid.Parse(claims.SessionID); err != nil {
		return "", ErrInvalidSessionToken
	}

	return claims.SessionID, nil
}
