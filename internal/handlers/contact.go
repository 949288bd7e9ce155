package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/shopflow/internal/models"
	pkghttp "github.com/BradenHooton/shopflow/pkg/http"
)

// ContactService defines the contact form operations
type ContactService interface {
	Submit(ctx context.Context, name, email, message string) (*models.Contact, error)
}

type ContactHandler struct {
	service ContactService
	logger  *slog.Logger
}

func NewContactHandler(service ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{service: service, logger: logger}
}

// ContactRequest represents a contact form submission
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required,max=5000"`
}

// @Router /api/contact [post]
func (h *ContactHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := pkghttp.DecodeJSON(w, r, &req); err != nil {
		pkghttp.WriteBadRequest(w, "Invalid request body")
		return
	}
	if fe := ValidateRequest(req); fe != nil {
		pkghttp.WriteValidationError(w, *fe)
		return
	}

	contact, err := h.service.Submit(r.Context(), req.Name, req.Email, req.Message)
	if err != nil {
		if errors.Is(err, models.ErrBadRequest) {
			pkghttp.WriteBadRequest(w, badRequestMessage(err))
			return
		}
		h.logger.Error("failed to store contact message", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "Internal server error")
		return
	}

	pkghttp.WriteJSON(w, http.StatusCreated, contact)
}
