package repositories

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/BradenHooton/shopflow/internal/database"
	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CheckoutSessionRepository mirrors checkouts created at the commerce API
type CheckoutSessionRepository struct {
	pool *pgxpool.Pool
}

// NewCheckoutSessionRepository creates a new CheckoutSessionRepository
func NewCheckoutSessionRepository(db *database.DB) *CheckoutSessionRepository {
	return &CheckoutSessionRepository{pool: db.Pool}
}

const checkoutSessionColumns = `id, email, cart, payment_gateway, total_amount::text, currency, status, invoice_id, checkout_url, created_at, updated_at`

func scanCheckoutSessionRow(row rowScanner) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	var cart []byte

	err := row.Scan(
		&session.ID, &session.Email, &cart, &session.PaymentGateway, &session.TotalAmount,
		&session.Currency, &session.Status, &session.InvoiceID, &session.CheckoutURL,
		&session.CreatedAt, &session.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	if err := json.Unmarshal(cart, &session.Cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}

	return &session, nil
}

func scanCheckoutSessionRows(rows pgx.Rows) ([]models.CheckoutSession, error) {
	defer rows.Close()

	sessions := make([]models.CheckoutSession, 0)
	for rows.Next() {
		session, err := scanCheckoutSessionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan checkout session: %w", err)
		}
		sessions = append(sessions, *session)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating checkout session rows: %w", err)
	}

	return sessions, nil
}

// Create inserts a checkout session row
func (r *CheckoutSessionRepository) Create(ctx context.Context, session *models.CheckoutSession) (*models.CheckoutSession, error) {
	cart, err := json.Marshal(session.Cart)
	if err != nil {
		return nil, fmt.Errorf("failed to encode cart: %w", err)
	}

	status := session.Status
	if status == "" {
		status = models.CheckoutStatusPending
	}
	total := session.TotalAmount
	if total == "" {
		total = "0"
	}

	query := `
		INSERT INTO checkout_sessions (email, cart, payment_gateway, total_amount, currency, status, invoice_id, checkout_url)
		VALUES ($1, $2, $3, $4::numeric, $5, $6, $7, $8)
		RETURNING ` + checkoutSessionColumns

	created, err := scanCheckoutSessionRow(r.pool.QueryRow(ctx, query,
		session.Email, cart, session.PaymentGateway, total, session.Currency,
		status, session.InvoiceID, session.CheckoutURL,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return created, nil
}

// ListByEmail returns the checkout sessions created for email, newest first
func (r *CheckoutSessionRepository) ListByEmail(ctx context.Context, email string) ([]models.CheckoutSession, error) {
	query := `
		SELECT ` + checkoutSessionColumns + `
		FROM checkout_sessions
		WHERE lower(email) = lower($1)
		ORDER BY created_at DESC, id DESC
	`

	rows, err := r.pool.Query(ctx, query, email)
	if err != nil {
		return nil, fmt.Errorf("failed to list checkout sessions: %w", err)
	}

	return scanCheckoutSessionRows(rows)
}
