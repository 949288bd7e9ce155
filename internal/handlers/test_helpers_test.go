package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BradenHooton/shopflow/internal/auth"
	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/BradenHooton/shopflow/internal/services"
	pkghttp "github.com/BradenHooton/shopflow/pkg/http"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

const TestSessionID = "6f1c1e2a-4d1b-4c39-9d0e-2b8f0f7f3a11"

// NewTestRequest creates an HTTP request with JSON body for testing
func NewTestRequest(t *testing.T, method, url string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "203.0.113.7:5555"
	return req.WithContext(auth.WithSessionID(req.Context(), TestSessionID))
}

// WithSessionContext marks the request as coming from a logged-in customer
func WithSessionContext(req *http.Request, customerID int64, email string) *http.Request {
	session := &models.Session{CustomerID: customerID, CustomerEmail: email}
	return req.WithContext(auth.WithSession(req.Context(), session))
}

// WithURLParam sets a chi URL parameter on the request
func WithURLParam(req *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

// AssertJSONResponse checks that response has correct status and decodes JSON body
func AssertJSONResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, target any) {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"), "Content-Type should be application/json")

	if target != nil {
		err := json.Unmarshal(w.Body.Bytes(), target)
		assert.NoError(t, err, "Failed to decode response JSON")
	}
}

// AssertErrorResponse checks that response is a valid error response
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, expectedStatus int, expectedError string) pkghttp.ErrorResponse {
	t.Helper()
	assert.Equal(t, expectedStatus, w.Code, "Response status mismatch")

	var resp pkghttp.ErrorResponse
	err := json.Unmarshal(w.Body.Bytes(), &resp)
	assert.NoError(t, err, "Failed to decode error response")
	assert.Equal(t, expectedError, resp.Error, "Error code mismatch")
	assert.NotEmpty(t, resp.Message, "Error message should not be empty")
	return resp
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testCookies = auth.CookieConfig{Name: "shopflow.sid", SameSite: "lax"}

var testTokens = auth.NewSessionTokenManager("test-secret-32-characters-long!", time.Hour)

// MockAuthService implements AuthService for testing
type MockAuthService struct {
	RequestCodeFunc func(ctx context.Context, sessionID, email string) (*services.LoginCodeResult, error)
	VerifyCodeFunc  func(ctx context.Context, sessionID, email, code string) (*services.VerifyResult, error)
	CurrentUserFunc func(ctx context.Context, sessionID string) (*models.Customer, error)
	LogoutFunc      func(ctx context.Context, sessionID string) (int64, error)
}

func (m *MockAuthService) RequestCode(ctx context.Context, sessionID, email string) (*services.LoginCodeResult, error) {
	if m.RequestCodeFunc != nil {
		return m.RequestCodeFunc(ctx, sessionID, email)
	}
	return &services.LoginCodeResult{Message: "Verification code sent", EmailSent: true}, nil
}

func (m *MockAuthService) VerifyCode(ctx context.Context, sessionID, email, code string) (*services.VerifyResult, error) {
	if m.VerifyCodeFunc != nil {
		return m.VerifyCodeFunc(ctx, sessionID, email, code)
	}
	return nil, models.NewAuthRejected(models.RejectNoPending)
}

func (m *MockAuthService) CurrentUser(ctx context.Context, sessionID string) (*models.Customer, error) {
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx, sessionID)
	}
	return nil, models.ErrUnauthenticated
}

func (m *MockAuthService) Logout(ctx context.Context, sessionID string) (int64, error) {
	if m.LogoutFunc != nil {
		return m.LogoutFunc(ctx, sessionID)
	}
	return 0, nil
}

// MockCatalogService implements CatalogService for testing
type MockCatalogService struct {
	ListProductsFunc func(ctx context.Context) ([]models.Product, error)
	GetProductFunc   func(ctx context.Context, id int64) (*models.Product, error)
}

func (m *MockCatalogService) ListProducts(ctx context.Context) ([]models.Product, error) {
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx)
	}
	return []models.Product{}, nil
}

func (m *MockCatalogService) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// MockCheckoutService implements CheckoutService for testing
type MockCheckoutService struct {
	CreateFunc       func(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error)
	ListSessionsFunc func(ctx context.Context, email string) ([]models.CheckoutSession, error)
}

func (m *MockCheckoutService) Create(ctx context.Context, req *models.CheckoutRequest) (*models.CheckoutResult, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, req)
	}
	return nil, models.ErrInternalServer
}

func (m *MockCheckoutService) ListSessions(ctx context.Context, email string) ([]models.CheckoutSession, error) {
	if m.ListSessionsFunc != nil {
		return m.ListSessionsFunc(ctx, email)
	}
	return []models.CheckoutSession{}, nil
}

// MockContactService implements ContactService for testing
type MockContactService struct {
	SubmitFunc func(ctx context.Context, name, email, message string) (*models.Contact, error)
}

func (m *MockContactService) Submit(ctx context.Context, name, email, message string) (*models.Contact, error) {
	if m.SubmitFunc != nil {
		return m.SubmitFunc(ctx, name, email, message)
	}
	return nil, models.ErrInternalServer
}

// MockInvoiceService implements InvoiceService for testing
type MockInvoiceService struct {
	ListForEmailFunc func(ctx context.Context, email string) ([]models.Invoice, error)
	GetForEmailFunc  func(ctx context.Context, id int64, email string) (*models.Invoice, error)
}

func (m *MockInvoiceService) ListForEmail(ctx context.Context, email string) ([]models.Invoice, error) {
	if m.ListForEmailFunc != nil {
		return m.ListForEmailFunc(ctx, email)
	}
	return []models.Invoice{}, nil
}

func (m *MockInvoiceService) GetForEmail(ctx context.Context, id int64, email string) (*models.Invoice, error) {
	if m.GetForEmailFunc != nil {
		return m.GetForEmailFunc(ctx, id, email)
	}
	return nil, models.ErrNotFound
}

// MockHealthChecker implements HealthChecker for testing
type MockHealthChecker struct {
	Err error
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	return m.Err
}
