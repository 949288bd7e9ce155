package services

import (
	"context"
	"testing"

	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInvoices() *MockInvoiceSource {
	invoices := []models.Invoice{
		{ID: 1, Email: "a@x.com", Total: "9.99"},
		{ID: 2, Email: "B@x.com", Total: "1.00"},
		{ID: 3, Email: "A@X.COM", Total: "4.50"},
	}
	return &MockInvoiceSource{
		ListInvoicesFunc: func(ctx context.Context) ([]models.Invoice, error) {
			return invoices, nil
		},
		GetInvoiceFunc: func(ctx context.Context, id int64) (*models.Invoice, error) {
			for i := range invoices {
				if invoices[i].ID == id {
					inv := invoices[i]
					return &inv, nil
				}
			}
			return nil, models.ErrNotFound
		},
	}
}

func TestInvoiceService_ListForEmail(t *testing.T) {
	svc := NewInvoiceService(testInvoices())

	invoices, err := svc.ListForEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	require.Len(t, invoices, 2)
	assert.Equal(t, int64(1), invoices[0].ID)
	assert.Equal(t, int64(3), invoices[1].ID)

	invoices, err = svc.ListForEmail(context.Background(), "nobody@x.com")
	require.NoError(t, err)
	assert.NotNil(t, invoices)
	assert.Empty(t, invoices)
}

func TestInvoiceService_ListForEmail_UpstreamError(t *testing.T) {
	svc := NewInvoiceService(&MockInvoiceSource{
		ListInvoicesFunc: func(ctx context.Context) ([]models.Invoice, error) {
			return nil, models.ErrUpstream
		},
	})

	_, err := svc.ListForEmail(context.Background(), "a@x.com")
	assert.ErrorIs(t, err, models.ErrUpstream)
}

func TestInvoiceService_GetForEmail(t *testing.T) {
	svc := NewInvoiceService(testInvoices())

	invoice, err := svc.GetForEmail(context.Background(), 3, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.Price("4.50"), invoice.Total)

	_, err = svc.GetForEmail(context.Background(), 2, "a@x.com")
	assert.ErrorIs(t, err, models.ErrNotFound)

	_, err = svc.GetForEmail(context.Background(), 99, "a@x.com")
	assert.ErrorIs(t, err, models.ErrNotFound)
}
