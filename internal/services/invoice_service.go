package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/BradenHooton/shopflow/internal/models"
)

// InvoiceSource reads invoices from the commerce API
type InvoiceSource interface {
	ListInvoices(ctx context.Context) ([]models.Invoice, error)
	GetInvoice(ctx context.Context, id int64) (*models.Invoice, error)
}

// InvoiceService exposes a customer's own purchase history
type InvoiceService struct {
	invoices InvoiceSource
}

func NewInvoiceService(invoices InvoiceSource) *InvoiceService {
	return &InvoiceService{invoices: invoices}
}

// ListForEmail returns the invoices placed with email
func (s *InvoiceService) ListForEmail(ctx context.Context, email string) ([]models.Invoice, error) {
	all, err := s.invoices.ListInvoices(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}

	owned := make([]models.Invoice, 0)
	for i := range all {
		if all[i].BelongsTo(email) {
			owned = append(owned, all[i])
		}
	}
	return owned, nil
}

// GetForEmail returns one invoice. Invoices of other customers are reported as not found.
func (s *InvoiceService) GetForEmail(ctx context.Context, id int64, email string) (*models.Invoice, error) {
	invoice, err := s.invoices.GetInvoice(ctx, id)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get invoice: %w", err)
	}
	if !invoice.BelongsTo(email) {
		return nil, models.ErrNotFound
	}
	return invoice, nil
}
