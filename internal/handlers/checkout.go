package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/shopflow/internal/auth"
	"github.com/BradenHooton/shopflow/internal/models"
	pkghttp "github.com/BradenHooton/shopflow/pkg/http"
)

// CheckoutService defines the checkout operations
type CheckoutService interface {
	Create(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error)
	ListSessions(ctx context.Context, email string) ([]models.CheckoutSession, error)
}

type CheckoutHandler struct {
	service CheckoutService
	logger  *slog.Logger
}

func NewCheckoutHandler(service CheckoutService, logger *slog.Logger) *CheckoutHandler {
	return &CheckoutHandler{service: service, logger: logger}
}

// @Router /api/checkout [post]
func (h *CheckoutHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req models.CheckoutRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if fe := ValidateRequest(req); fe != nil {
		pkghttp.WriteValidationError(w, *fe)
		return
	}

	result, err := h.service.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, badRequestMessage(err))
			return
		}
		h.logger.Error("checkout failed", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "Failed to create checkout session")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, result)
}

// ListSessions returns the checkouts started with the logged-in customer's email.
// Must be used after auth.RequireSession.
// @Router /api/checkout/sessions [get]
func (h *CheckoutHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	sessions, err := h.service.ListSessions(r.Context(), session.CustomerEmail)
	if err != nil {
		h.logger.Error("failed to list checkout sessions", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "Failed to fetch checkout sessions")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, sessions)
}
