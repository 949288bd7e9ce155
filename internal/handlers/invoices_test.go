package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListInvoices(t *testing.T) {
	var gotEmail string
	svc := &MockInvoiceService{
		ListForEmailFunc: func(ctx context.Context, email string) ([]models.Invoice, error) {
			gotEmail = email
			return []models.Invoice{{ID: 1, Email: email, Total: "9.99"}}, nil
		},
	}
	handler := NewInvoiceHandler(svc, testLogger())

	w := httptest.NewRecorder()
	req := WithSessionContext(NewTestRequest(t, http.MethodGet, "/api/invoices", nil), 101, "a@x.com")
	handler.ListInvoices(w, req)

	var resp []models.Invoice
	AssertJSONResponse(t, w, http.StatusOK, &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, "a@x.com", gotEmail)
}

func TestListInvoices_UpstreamError(t *testing.T) {
	svc := &MockInvoiceService{
		ListForEmailFunc: func(ctx context.Context, email string) ([]models.Invoice, error) {
			return nil, models.ErrUpstream
		},
	}
	handler := NewInvoiceHandler(svc, testLogger())

	w := httptest.NewRecorder()
	req := WithSessionContext(NewTestRequest(t, http.MethodGet, "/api/invoices", nil), 101, "a@x.com")
	handler.ListInvoices(w, req)

	AssertErrorResponse(t, w, http.StatusInternalServerError, "internal_error")
}

func TestGetInvoice(t *testing.T) {
	svc := &MockInvoiceService{
		GetForEmailFunc: func(ctx context.Context, id int64, email string) (*models.Invoice, error) {
			if id == 1 && email == "a@x.com" {
				return &models.Invoice{ID: 1, Email: email}, nil
			}
			return nil, models.ErrNotFound
		},
	}
	handler := NewInvoiceHandler(svc, testLogger())

	tests := []struct {
		name       string
		id         string
		wantStatus int
	}{
		{"own invoice", "1", http.StatusOK},
		{"other customer's invoice", "2", http.StatusNotFound},
		{"malformed id", "x", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewTestRequest(t, http.MethodGet, "/api/invoices/"+tt.id, nil)
			req = WithURLParam(WithSessionContext(req, 101, "a@x.com"), "id", tt.id)

			w := httptest.NewRecorder()
			handler.GetInvoice(w, req)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}
