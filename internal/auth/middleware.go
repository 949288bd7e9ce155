package auth

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/shopflow/internal/models"
	pkghttp "github.com/BradenHooton/shopflow/pkg/http"
)

type contextKey string

const (
	sessionIDContextKey contextKey = "session_id"
	sessionContextKey   contextKey = "session"
)

// WithSessionID returns a copy of ctx carrying sessionID
func WithSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDContextKey, sessionID)
}

// SessionIDFromContext returns the session id placed by LoadSession, or ""
func SessionIDFromContext(ctx context.Context) string {
	sessionID, _ := ctx.Value(sessionIDContextKey).(string)
	return sessionID
}

// WithSession returns a copy of ctx carrying the authenticated session
func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionContextKey, session)
}

// SessionFromContext returns the authenticated session placed by RequireSession
func SessionFromContext(ctx context.Context) *models.Session {
	session, ok := ctx.Value(sessionContextKey).(*models.Session)
	if !ok {
		return nil
	}
	return session
}

// LoadSession resolves the session id from the signed cookie. Requests without a
// valid cookie get a fresh session id and a new cookie.
func LoadSession(tokens *SessionTokenManager, cookies CookieConfig, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var sessionID string

			if token, err := GetSessionCookie(r, cookies); err == nil {
				if sid, err := tokens.Parse(token); err == nil {
					sessionID = sid
				}
			}

			if sessionID == "" {
				token, sid, err := tokens.Issue()
				if err != nil {
					logger.Error("failed to issue session", slog.String("error", err.Error()))
					pkghttp.WriteInternalError(w, "Internal server error")
					return
				}
				SetSessionCookie(w, token, tokens.MaxAge(), cookies)
				sessionID = sid
			}

			next.ServeHTTP(w, r.WithContext(WithSessionID(r.Context(), sessionID)))
		})
	}
}

// SessionLoader is the read side of the session manager
type SessionLoader interface {
	Load(ctx context.Context, sessionID string) (*models.Session, error)
}

// RequireSession rejects requests whose session has no authenticated customer.
// Must be used after LoadSession.
func RequireSession(sessions SessionLoader, logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			session, err := sessions.Load(r.Context(), SessionIDFromContext(r.Context()))
			if err != nil {
				logger.Error("failed to load session", slog.String("error", err.Error()))
				pkghttp.WriteInternalError(w, "Internal server error")
				return
			}

			if !session.IsAuthenticated() {
				pkghttp.WriteUnauthorized(w, "Not authenticated")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
		})
	}
}
