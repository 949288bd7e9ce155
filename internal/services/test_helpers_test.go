package services

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/BradenHooton/shopflow/internal/auth"
	"github.com/BradenHooton/shopflow/internal/models"
)

// MockCustomerDirectory implements CustomerDirectory for testing
type MockCustomerDirectory struct {
	ListCustomersFunc func(ctx context.Context) ([]models.Customer, error)
	GetCustomerFunc   func(ctx context.Context, id int64) (*models.Customer, error)
}

func (m *MockCustomerDirectory) ListCustomers(ctx context.Context) ([]models.Customer, error) {
	if m.ListCustomersFunc != nil {
		return m.ListCustomersFunc(ctx)
	}
	return []models.Customer{}, nil
}

func (m *MockCustomerDirectory) GetCustomer(ctx context.Context, id int64) (*models.Customer, error) {
	if m.GetCustomerFunc != nil {
		return m.GetCustomerFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

// NewTestDirectory returns a directory holding the given customers
func NewTestDirectory(customers ...models.Customer) *MockCustomerDirectory {
	return &MockCustomerDirectory{
		ListCustomersFunc: func(ctx context.Context) ([]models.Customer, error) {
			return customers, nil
		},
		GetCustomerFunc: func(ctx context.Context, id int64) (*models.Customer, error) {
			for i := range customers {
				if customers[i].ID == id {
					c := customers[i]
					return &c, nil
				}
			}
			return nil, models.ErrNotFound
		},
	}
}

// MockVerificationStore implements VerificationStore for testing
type MockVerificationStore struct {
	UpsertFunc  func(ctx context.Context, record *models.VerificationRecord) error
	FindFunc    func(ctx context.Context, email string) (*models.VerificationRecord, error)
	ConsumeFunc func(ctx context.Context, email, code string) (bool, error)
	DeleteFunc  func(ctx context.Context, email string) error
}

func (m *MockVerificationStore) Upsert(ctx context.Context, record *models.VerificationRecord) error {
	if m.UpsertFunc != nil {
		return m.UpsertFunc(ctx, record)
	}
	return nil
}

func (m *MockVerificationStore) Find(ctx context.Context, email string) (*models.VerificationRecord, error) {
	if m.FindFunc != nil {
		return m.FindFunc(ctx, email)
	}
	return nil, models.ErrNotFound
}

func (m *MockVerificationStore) Consume(ctx context.Context, email, code string) (bool, error) {
	if m.ConsumeFunc != nil {
		return m.ConsumeFunc(ctx, email, code)
	}
	return true, nil
}

func (m *MockVerificationStore) Delete(ctx context.Context, email string) error {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, email)
	}
	return nil
}

// memoryVerificationStore is a working VerificationStore backed by a map
type memoryVerificationStore struct {
	mu      sync.Mutex
	records map[string]models.VerificationRecord
}

func newMemoryVerificationStore() *memoryVerificationStore {
	return &memoryVerificationStore{records: make(map[string]models.VerificationRecord)}
}

func (s *memoryVerificationStore) Upsert(ctx context.Context, record *models.VerificationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := *record
	r.ConsumedAt = nil
	s.records[r.Email] = r
	return nil
}

func (s *memoryVerificationStore) Find(ctx context.Context, email string) (*models.VerificationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[email]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &r, nil
}

func (s *memoryVerificationStore) Consume(ctx context.Context, email, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[email]
	if !ok || r.ConsumedAt != nil || r.Code != code {
		return false, nil
	}
	now := time.Now()
	r.ConsumedAt = &now
	s.records[email] = r
	return true, nil
}

func (s *memoryVerificationStore) Delete(ctx context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, email)
	return nil
}

func (s *memoryVerificationStore) has(email string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[email]
	return ok
}

// MockNotificationSender implements NotificationSender and remembers the last code
type MockNotificationSender struct {
	SendFunc func(ctx context.Context, email, code string, ttlMinutes int) error

	mu       sync.Mutex
	LastTo   string
	LastCode string
	LastTTL  int
	Sent     int
}

func (m *MockNotificationSender) SendVerificationCode(ctx context.Context, email, code string, ttlMinutes int) error {
	m.mu.Lock()
	m.LastTo, m.LastCode, m.LastTTL = email, code, ttlMinutes
	m.Sent++
	m.mu.Unlock()

	if m.SendFunc != nil {
		return m.SendFunc(ctx, email, code, ttlMinutes)
	}
	return nil
}

// MockSessionManager implements SessionManager for testing failure paths
type MockSessionManager struct {
	LoadFunc    func(ctx context.Context, sessionID string) (*models.Session, error)
	ReplaceFunc func(ctx context.Context, sessionID string, session *models.Session) error
	DestroyFunc func(ctx context.Context, sessionID string) error
}

func (m *MockSessionManager) Load(ctx context.Context, sessionID string) (*models.Session, error) {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx, sessionID)
	}
	return &models.Session{}, nil
}

func (m *MockSessionManager) Replace(ctx context.Context, sessionID string, session *models.Session) error {
	if m.ReplaceFunc != nil {
		return m.ReplaceFunc(ctx, sessionID, session)
	}
	return nil
}

func (m *MockSessionManager) Destroy(ctx context.Context, sessionID string) error {
	if m.DestroyFunc != nil {
		return m.DestroyFunc(ctx, sessionID)
	}
	return nil
}

// MockProductSource implements ProductSource and CheckoutGateway for testing
type MockProductSource struct {
	ListProductsFunc   func(ctx context.Context) ([]models.CommerceProduct, error)
	GetProductFunc     func(ctx context.Context, id int64) (*models.CommerceProduct, error)
	CreateCheckoutFunc func(ctx context.Context, req *models.CommerceCheckoutRequest) (*models.CommerceCheckout, error)
}

func (m *MockProductSource) ListProducts(ctx context.Context) ([]models.CommerceProduct, error) {
	if m.ListProductsFunc != nil {
		return m.ListProductsFunc(ctx)
	}
	return []models.CommerceProduct{}, nil
}

func (m *MockProductSource) GetProduct(ctx context.Context, id int64) (*models.CommerceProduct, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func (m *MockProductSource) CreateCheckout(ctx context.Context, req *models.CommerceCheckoutRequest) (*models.CommerceCheckout, error) {
	if m.CreateCheckoutFunc != nil {
		return m.CreateCheckoutFunc(ctx, req)
	}
	return nil, models.ErrUpstream
}

// MockCheckoutSessionStore implements CheckoutSessionStore for testing
type MockCheckoutSessionStore struct {
	CreateFunc      func(ctx context.Context, session *models.CheckoutSession) (*models.CheckoutSession, error)
	ListByEmailFunc func(ctx context.Context, email string) ([]models.CheckoutSession, error)
}

func (m *MockCheckoutSessionStore) Create(ctx context.Context, session *models.CheckoutSession) (*models.CheckoutSession, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, session)
	}
	created := *session
	created.ID = 1
	return &created, nil
}

func (m *MockCheckoutSessionStore) ListByEmail(ctx context.Context, email string) ([]models.CheckoutSession, error) {
	if m.ListByEmailFunc != nil {
		return m.ListByEmailFunc(ctx, email)
	}
	return []models.CheckoutSession{}, nil
}

// MockContactStore implements ContactStore for testing
type MockContactStore struct {
	CreateFunc func(ctx context.Context, contact *models.Contact) (*models.Contact, error)
}

func (m *MockContactStore) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, contact)
	}
	return nil, models.ErrInternalServer
}

// MockInvoiceSource implements InvoiceSource for testing
type MockInvoiceSource struct {
	ListInvoicesFunc func(ctx context.Context) ([]models.Invoice, error)
	GetInvoiceFunc   func(ctx context.Context, id int64) (*models.Invoice, error)
}

func (m *MockInvoiceSource) ListInvoices(ctx context.Context) ([]models.Invoice, error) {
	if m.ListInvoicesFunc != nil {
		return m.ListInvoicesFunc(ctx)
	}
	return []models.Invoice{}, nil
}

func (m *MockInvoiceSource) GetInvoice(ctx context.Context, id int64) (*models.Invoice, error) {
	if m.GetInvoiceFunc != nil {
		return m.GetInvoiceFunc(ctx, id)
	}
	return nil, models.ErrNotFound
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestSessions returns a real session manager over an in-memory store
func newTestSessions(t *testing.T) *auth.SessionManager {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	return auth.NewSessionManager(auth.NewMemorySessionStore(ctx, time.Minute), time.Hour)
}
