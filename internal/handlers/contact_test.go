package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCreateContact_Success(t *testing.T) {
	svc := &MockContactService{
		SubmitFunc: func(ctx context.Context, name, email, message string) (*models.Contact, error) {
			return &models.Contact{ID: "1", Name: name, Email: email, Message: message, CreatedAt: time.Now()}, nil
		},
	}
	handler := NewContactHandler(svc, testLogger())

	w := httptest.NewRecorder()
	handler.Create(w, NewTestRequest(t, http.MethodPost, "/api/contact",
		map[string]string{"name": "Ann", "email": "ann@x.com", "message": "Hello"}))

	var resp models.Contact
	AssertJSONResponse(t, w, http.StatusCreated, &resp)
	assert.Equal(t, "1", resp.ID)
	assert.Equal(t, "Ann", resp.Name)
}

func TestCreateContact_Validation(t *testing.T) {
	handler := NewContactHandler(&MockContactService{}, testLogger())

	w := httptest.NewRecorder()
	handler.Create(w, NewTestRequest(t, http.MethodPost, "/api/contact",
		map[string]string{"name": "Ann", "email": "ann@x.com"}))

	resp := AssertErrorResponse(t, w, http.StatusBadRequest, "validation_error")
	assert.Equal(t, "message is required", resp.Message)
}

func TestCreateContact_StoreError(t *testing.T) {
	svc := &MockContactService{
		SubmitFunc: func(ctx context.Context, name, email, message string) (*models.Contact, error) {
			return nil, errors.New("db down")
		},
	}
	handler := NewContactHandler(svc, testLogger())

	w := httptest.NewRecorder()
	handler.Create(w, NewTestRequest(t, http.MethodPost, "/api/contact",
		map[string]string{"name": "Ann", "email": "ann@x.com", "message": "Hello"}))

	AssertErrorResponse(t, w, http.StatusInternalServerError, "internal_error")
}
