package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/BradenHooton/shopflow/internal/auth"
	"github.com/BradenHooton/shopflow/internal/models"
	pkghttp "github.com/BradenHooton/shopflow/pkg/http"
	"github.com/go-chi/chi/v5"
)

// InvoiceService defines the purchase history operations
type InvoiceService interface {
	ListForEmail(ctx context.Context, email string) ([]models.Invoice, error)
	GetForEmail(ctx context.Context, id int64, email string) (*models.Invoice, error)
}

// InvoiceHandler serves the logged-in customer's invoices.
// Its routes must be used after auth.RequireSession.
type InvoiceHandler struct {
	service InvoiceService
	logger  *slog.Logger
}

func NewInvoiceHandler(service InvoiceService, logger *slog.Logger) *InvoiceHandler {
	return &InvoiceHandler{service: service, logger: logger}
}

// @Router /api/invoices [get]
func (h *InvoiceHandler) ListInvoices(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	invoices, err := h.service.ListForEmail(r.Context(), session.CustomerEmail)
	if err != nil {
		h.logger.Error("failed to fetch invoices", slog.String("error", err.Error()))
		pkghttp.WriteInternalError(w, "Failed to fetch invoices")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, invoices)
}

// @Router /api/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(w http.ResponseWriter, r *http.Request) {
	session := auth.SessionFromContext(r.Context())
	if session == nil {
		pkghttp.WriteUnauthorized(w, "Not authenticated")
		return
	}

	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		pkghttp.WriteNotFound(w, "Invoice not found")
		return
	}

	invoice, err := h.service.GetForEmail(r.Context(), id, session.CustomerEmail)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			h.logger.Warn("failed to fetch invoice", slog.Int64("invoice_id", id), slog.String("error", err.Error()))
		}
		pkghttp.WriteNotFound(w, "Invoice not found")
		return
	}

	pkghttp.WriteJSON(w, http.StatusOK, invoice)
}
