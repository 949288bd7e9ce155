package repositories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/BradenHooton/shopflow/internal/database"
	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ContactRepository stores contact form messages
type ContactRepository struct {
	pool *pgxpool.Pool
}

// NewContactRepository creates a new ContactRepository
func NewContactRepository(db *database.DB) *ContactRepository {
	return &ContactRepository{pool: db.Pool}
}

// Create inserts the contact and fills in its id and creation time
func (r *ContactRepository) Create(ctx context.Context, contact *models.Contact) (*models.Contact, error) {
	query := `
		INSERT INTO contacts (name, email, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	var id int64
	created := *contact
	err := r.pool.QueryRow(ctx, query, contact.Name, contact.Email, contact.Message).Scan(&id, &created.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create contact: %w", database.MapPostgresError(err))
	}

	created.ID = strconv.FormatInt(id, 10)
	return &created, nil
}
