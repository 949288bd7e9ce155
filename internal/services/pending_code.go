package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/BradenHooton/shopflow/pkg/logger"
)

// VerificationStore is durable storage for outstanding login codes, one per email.
// Find returns models.ErrNotFound when no code is stored for the email.
type VerificationStore interface {
	Upsert(ctx context.Context, record *models.VerificationRecord) error
	Find(ctx context.Context, email string) (*models.VerificationRecord, error)
	// Consume spends code for email and reports whether this call spent it.
	// It is false for a wrong, already spent or missing code.
	Consume(ctx context.Context, email, code string) (bool, error)
	Delete(ctx context.Context, email string) error
}

// OptionalVerificationStore is a VerificationStore that may not be configured
type OptionalVerificationStore struct {
	store VerificationStore
}

// NewOptionalVerificationStore wraps store; a nil store means no durable storage
func NewOptionalVerificationStore(store VerificationStore) OptionalVerificationStore {
	return OptionalVerificationStore{store: store}
}

// NoVerificationStore is the absent store
func NoVerificationStore() OptionalVerificationStore {
	return OptionalVerificationStore{}
}

// Get returns the store and whether one is configured
func (o OptionalVerificationStore) Get() (VerificationStore, bool) {
	return o.store, o.store != nil
}

// Persistence names where a verified code was found
type Persistence string

const (
	PersistenceDatabase Persistence = "database"
	PersistenceSession  Persistence = "session"
)

// pendingCode is the outstanding code for a login, from exactly one source.
// record is set for PersistenceDatabase; the session fields for PersistenceSession.
type pendingCode struct {
	source    Persistence
	record    *models.VerificationRecord
	email     string
	code      string
	expiresAt *time.Time
}

// findPendingCode looks up the outstanding code for email. The durable store is
// authoritative when configured; the session fallback is consulted only when no
// store is configured or the store cannot be reached.
func (s *AuthService) findPendingCode(ctx context.Context, email string, session *models.Session) (*pendingCode, error) {
	if store, ok := s.store.Get(); ok {
		record, err := store.Find(ctx, email)
		switch {
		case err == nil:
			return &pendingCode{source: PersistenceDatabase, record: record}, nil
		case errors.Is(err, models.ErrNotFound):
			return nil, models.NewAuthRejected(models.RejectNoPending)
		default:
			s.logger.Warn("verification store unavailable, using session fallback",
				slog.String("email", logger.SanitizedEmail(email)),
				slog.String("error", err.Error()))
		}
	}

	if !session.HasPending() {
		return nil, models.NewAuthRejected(models.RejectNoPending)
	}

	return &pendingCode{
		source:    PersistenceSession,
		email:     session.PendingEmail,
		code:      session.PendingCode,
		expiresAt: session.PendingExpiresAt,
	}, nil
}

// check validates code for email against the pending code. Expired durable
// records are deleted.
func (s *AuthService) check(ctx context.Context, pending *pendingCode, email, code string, now time.Time) error {
	switch pending.source {
	case PersistenceDatabase:
		if pending.record.IsExpired(now) {
			s.deleteRecord(ctx, email)
			return models.NewAuthRejected(models.RejectExpired)
		}
		if !pending.record.Matches(code) {
			return models.NewAuthRejected(models.RejectInvalid)
		}
		return nil

	default:
		if pending.email != email {
			return models.NewAuthRejected(models.RejectEmailMismatch)
		}
		if pending.expiresAt != nil && now.After(*pending.expiresAt) {
			return models.NewAuthRejected(models.RejectExpired)
		}
		if pending.code == "" || pending.code != code {
			return models.NewAuthRejected(models.RejectInvalid)
		}
		return nil
	}
}

func (s *AuthService) deleteRecord(ctx context.Context, email string) {
	store, ok := s.store.Get()
	if !ok {
		return
	}
	if err := store.Delete(ctx, email); err != nil {
		s.logger.Warn("failed to delete verification code",
			slog.String("email", logger.SanitizedEmail(email)),
			slog.String("error", err.Error()))
	}
}

// spend marks the pending code used. It is the step that decides a verification:
// a code can be spent once, whichever source holds it.
func (s *AuthService) spend(ctx context.Context, sessionID string, session *models.Session, pending *pendingCode, email, code string) error {
	if pending.source == PersistenceDatabase {
		store, _ := s.store.Get()
		spent, err := store.Consume(ctx, email, code)
		if err != nil {
			return fmt.Errorf("failed to consume verification code: %w", err)
		}
		if !spent {
			return models.NewAuthRejected(models.RejectInvalid)
		}

		// The session copy must not outlive the durable one
		clearPendingCode(session, email)
		if err := s.sessions.Replace(ctx, sessionID, session); err != nil {
			s.logger.Warn("failed to clear session fallback",
				slog.String("email", logger.SanitizedEmail(email)),
				slog.String("error", err.Error()))
		}
		return nil
	}

	s.fallbackMu.Lock()
	defer s.fallbackMu.Unlock()

	current, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if current.PendingEmail != email || current.PendingCode == "" || current.PendingCode != code {
		return models.NewAuthRejected(models.RejectInvalid)
	}

	clearPendingCode(current, email)
	if err := s.sessions.Replace(ctx, sessionID, current); err != nil {
		return fmt.Errorf("failed to consume verification code: %w", err)
	}
	*session = *current
	return nil
}

// clearPendingCode drops the code but keeps the email, so a replay is INVALID
// rather than NO_PENDING
func clearPendingCode(session *models.Session, email string) {
	session.PendingEmail = email
	session.PendingCode = ""
	session.PendingExpiresAt = nil
}
