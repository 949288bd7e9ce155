package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/shopflow/internal/auth"
	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/BradenHooton/shopflow/internal/services"
	pkghttp "github.com/BradenHooton/shopflow/pkg/http"
	"github.com/BradenHooton/shopflow/pkg/logger"
)

// AuthService defines the passwordless login operations
type AuthService interface {
	RequestCode(ctx context.Context, sessionID, email string) (*services.LoginCodeResult, error)
	VerifyCode(ctx context.Context, sessionID, email, code string) (*services.VerifyResult, error)
	CurrentUser(ctx context.Context, sessionID string) (*models.Customer, error)
	Logout(ctx context.Context, sessionID string) (int64, error)
}

// AuthHandler handles the login, verify, me and logout endpoints
type AuthHandler struct {
	service AuthService
	audit   *logger.AuditLogger
	tokens  *auth.SessionTokenManager
	cookies auth.CookieConfig
	logger  *slog.Logger
}

func NewAuthHandler(service AuthService, audit *logger.AuditLogger, tokens *auth.SessionTokenManager, cookies auth.CookieConfig, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		audit:   audit,
		tokens:  tokens,
		cookies: cookies,
		logger:  logger,
	}
}

// LoginRequest represents the request body for requesting a login code
type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// VerifyRequest represents the request body for exchanging a code for a session
type VerifyRequest struct {
	Email string `json:"email" validate:"required,email"`
	Code  string `json:"code" validate:"required,len=6,numeric"`
}

// VerifyResponse is returned after a successful verification
type VerifyResponse struct {
	Customer    *models.Customer `json:"customer"`
	Token       string           `json:"token"` // always "session-based"; the cookie carries the session
	Persistence string           `json:"persistence"`
}

// Login emails a one-time code
// @Router /api/auth/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if fe := ValidateRequest(req); fe != nil {
		pkghttp.WriteValidationError(w, *fe)
		return
	}

	result, err := h.service.RequestCode(r.Context(), auth.SessionIDFromContext(r.Context()), req.Email)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, badRequestMessage(err))
			return
		}
		h.logger.Error("failed to request login code", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "Failed to send verification code")
		return
	}

	h.audit.LogCodeRequested(r.Context(), req.Email, pkghttp.ClientIP(r), result.EmailSent)
	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// Verify exchanges a code for an authenticated session
// @Router /api/auth/verify [post]
func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if fe := ValidateRequest(req); fe != nil {
		pkghttp.WriteValidationError(w, *fe)
		return
	}

	ip := pkghttp.ClientIP(r)
	result, err := h.service.VerifyCode(r.Context(), auth.SessionIDFromContext(r.Context()), req.Email, req.Code)
	if err != nil {
		var rejected *models.AuthRejectedError
		switch {
		case errors.As(err, &rejected):
			h.audit.LogRejected(r.Context(), req.Email, string(rejected.Reason), ip)
			pkghttp.WriteError(w, http.StatusUnauthorized, rejected.Code(), rejected.Message())
		case errors.Is(err, models.ErrBadRequest):
			pkghttp.WriteBadRequest(w, badRequestMessage(err))
		default:
			h.logger.Error("verification failed", slog.String("error", err.Error()))
			pkghttp.WriteInternalError(w, "Failed to verify customer")
		}
		return
	}

	token, err := h.tokens.Sign(result.SessionID)
	if err != nil {
		h.logger.Error("failed to sign session", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "Failed to verify customer")
		return
	}
	auth.SetSessionCookie(w, token, h.tokens.MaxAge(), h.cookies)

	h.audit.LogVerified(r.Context(), result.Customer.ID, result.Customer.Email, ip)
	pkghttp.WriteJSON(w, http.StatusOK, VerifyResponse{
		Customer:    result.Customer,
		Token:       "session-based",
		Persistence: string(result.Persistence),
	})
}

// Me returns the logged-in customer
// @Router /api/auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.CurrentUser(r.Context(), auth.SessionIDFromContext(r.Context()))
	if err != nil {
		switch {
		case errors.Is(err, models.ErrUnauthenticated):
			pkghttp.WriteUnauthorized(w, "Not authenticated")
		case errors.Is(err, models.ErrNotFound):
			pkghttp.WriteUnauthorized(w, "Customer not found")
		default:
			h.logger.Error("failed to fetch customer", slog.String("error", err.Error()))
			pkghttp.WriteInternalError(w, "Failed to fetch customer data")
		}
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, customer)
}

// Logout ends the session. It succeeds even without a session.
// @Router /api/auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	customerID, err := h.service.Logout(r.Context(), auth.SessionIDFromContext(r.Context()))
	if err != nil {
		h.logger.Warn("failed to destroy session", slog.String("error", err.Error()))
	}

	if customerID != 0 {
		h.audit.LogLogout(r.Context(), customerID, pkghttp.ClientIP(r))
	}

	auth.ClearSessionCookie(w, h.cookies)
	pkghttp.WriteJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}
