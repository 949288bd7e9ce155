package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/BradenHooton/shopflow/internal/auth"
	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/BradenHooton/shopflow/pkg/logger"
	"github.com/google/uuid"
)

// CustomerDirectory is the authoritative source of customer records
type CustomerDirectory interface {
	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id int64) (*models.Customer, error)
}

// SessionManager reads and replaces whole sessions by session id
type SessionManager interface {
	Load(ctx context.Context, sessionID string) (*models.Session, error)
	Replace(ctx context.Context, sessionID string, session *models.Session) error
	Destroy(ctx context.Context, sessionID string) error
}

// LoginCodeResult is returned by RequestCode. It never reveals whether the email
// belongs to a customer.
type LoginCodeResult struct {
	Message   string `json:"message"`
	EmailSent bool   `json:"emailSent"`
}

// VerifyResult is returned by a successful VerifyCode. SessionID replaces the
// session id the code was verified under.
type VerifyResult struct {
	Customer    *models.Customer
	Persistence Persistence
	SessionID   string
}

// AuthServiceConfig holds the login flow settings
type AuthServiceConfig struct {
	CodeTTL time.Duration
	Timing  *auth.TimingDelay
}

// AuthService implements passwordless login: a one-time code is mailed to the
// customer and exchanged for a session once the directory confirms the email.
type AuthService struct {
	directory CustomerDirectory
	store     OptionalVerificationStore
	sender    NotificationSender
	sessions  SessionManager
	codeTTL   time.Duration
	timing    *auth.TimingDelay
	logger    *slog.Logger

	// serializes spending session fallback codes
	fallbackMu sync.Mutex

	generateCode func() (string, error)
	newSessionID func() string
	now          func() time.Time
}

func NewAuthService(
	directory CustomerDirectory,
	store OptionalVerificationStore,
	sender NotificationSender,
	sessions SessionManager,
	cfg AuthServiceConfig,
	logger *slog.Logger,
) *AuthService {
	ttl := cfg.CodeTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	return &AuthService{
		directory:    directory,
		store:        store,
		sender:       sender,
		sessions:     sessions,
		codeTTL:      ttl,
		timing:       cfg.Timing,
		logger:       logger,
		generateCode: auth.GenerateCode,
		newSessionID: uuid.NewString,
		now:          time.Now,
	}
}

func validEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && !strings.ContainsAny(email, " \t\r\n")
}

// RequestCode issues a new code for email, superseding any earlier one.
// Durable store failures are logged and swallowed; the session fallback is always written.
func (s *AuthService) RequestCode(ctx context.Context, sessionID, email string) (*LoginCodeResult, error) {
	email = models.NormalizeEmail(email)
	if !validEmail(email) {
		return nil, fmt.Errorf("%w: invalid email address", models.ErrBadRequest)
	}

	code, err := s.generateCode()
	if err != nil {
		return nil, err
	}
	expiresAt := s.now().Add(s.codeTTL)

	persisted := false
	if store, ok := s.store.Get(); ok {
		err := store.Upsert(ctx, &models.VerificationRecord{Email: email, Code: code, ExpiresAt: expiresAt})
		if err != nil {
			s.logger.Warn("failed to persist verification code, relying on session",
				slog.String("email", logger.SanitizedEmail(email)),
				slog.String("error", err.Error()))
		} else {
			persisted = true
		}
	}

	if err := s.writeFallback(ctx, sessionID, email, code, expiresAt); err != nil {
		if !persisted {
			return nil, fmt.Errorf("failed to store verification code: %w", err)
		}
		s.logger.Warn("failed to write session fallback",
			slog.String("email", logger.SanitizedEmail(email)),
			slog.String("error", err.Error()))
	}

	emailSent := true
	if err := s.sender.SendVerificationCode(ctx, email, code, int(s.codeTTL/time.Minute)); err != nil {
		emailSent = false
		s.logger.Error("failed to send verification code",
			slog.String("email", logger.SanitizedEmail(email)),
			slog.String("error", err.Error()))
	}

	s.logger.Info("verification code issued",
		slog.String("email", logger.SanitizedEmail(email)),
		slog.Bool("persisted", persisted),
		slog.Bool("email_sent", emailSent))

	return &LoginCodeResult{Message: "Verification code sent", EmailSent: emailSent}, nil
}

func (s *AuthService) writeFallback(ctx context.Context, sessionID, email, code string, expiresAt time.Time) error {
	session, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return err
	}

	session.PendingEmail = email
	session.PendingCode = code
	session.PendingExpiresAt = &expiresAt

	return s.sessions.Replace(ctx, sessionID, session)
}

// VerifyCode exchanges a code for an authenticated session. Rejections are
// returned as *models.AuthRejectedError; directory failures are internal errors.
func (s *AuthService) VerifyCode(ctx context.Context, sessionID, email, code string) (*VerifyResult, error) {
	start := time.Now()

	result, err := s.verify(ctx, sessionID, models.NormalizeEmail(email), strings.TrimSpace(code))
	if errors.Is(err, models.ErrAuthRejected) {
		s.timing.PadFailure(ctx, start)
	}
	return result, err
}

func (s *AuthService) verify(ctx context.Context, sessionID, email, code string) (*VerifyResult, error) {
	if !validEmail(email) || code == "" {
		return nil, fmt.Errorf("%w: email and code are required", models.ErrBadRequest)
	}

	session, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	pending, err := s.findPendingCode(ctx, email, session)
	if err != nil {
		return nil, err
	}

	if err := s.check(ctx, pending, email, code, s.now()); err != nil {
		return nil, err
	}

	// Of two concurrent attempts with the same code only one gets past here
	if err := s.spend(ctx, sessionID, session, pending, email, code); err != nil {
		return nil, err
	}

	customers, err := s.directory.ListCustomers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query customer directory: %w", err)
	}

	var customer *models.Customer
	for i := range customers {
		if customers[i].HasEmail(email) {
			customer = &customers[i]
			break
		}
	}
	if customer == nil {
		return nil, models.NewAuthRejected(models.RejectNoAccount)
	}

	// The login moves to a fresh session id; the pre-login cookie stays anonymous
	newSessionID := s.newSessionID()
	session.CustomerID = customer.ID
	session.CustomerEmail = customer.Email
	if err := s.sessions.Replace(ctx, newSessionID, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		s.logger.Warn("failed to destroy pre-login session", slog.String("error", err.Error()))
	}

	s.logger.Info("customer logged in",
		slog.Int64("customer_id", customer.ID),
		slog.String("persistence", string(pending.source)))

	return &VerifyResult{Customer: customer, Persistence: pending.source, SessionID: newSessionID}, nil
}

// CurrentUser returns the customer bound to the session, re-read from the directory
func (s *AuthService) CurrentUser(ctx context.Context, sessionID string) (*models.Customer, error) {
	session, err := s.sessions.Load(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load session: %w", err)
	}
	if !session.IsAuthenticated() {
		return nil, models.ErrUnauthenticated
	}

	customer, err := s.directory.GetCustomer(ctx, session.CustomerID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to query customer directory: %w", err)
	}

	return customer, nil
}

// Logout destroys the session and returns the customer that was bound to it,
// or 0. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, sessionID string) (int64, error) {
	var customerID int64
	if session, err := s.sessions.Load(ctx, sessionID); err == nil {
		customerID = session.CustomerID
	}

	if err := s.sessions.Destroy(ctx, sessionID); err != nil {
		return customerID, fmt.Errorf("failed to destroy session: %w", err)
	}
	return customerID, nil
}
