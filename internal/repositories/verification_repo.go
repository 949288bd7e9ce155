package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/BradenHooton/shopflow/internal/database"
	"github.com/BradenHooton/shopflow/internal/models"
	"github.com/jackc/pgx/v5/pgxpool"
)

// rowScanner is satisfied by both pgx.Row and pgx.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// VerificationRepository stores one-time login codes in Postgres
type VerificationRepository struct {
	pool *pgxpool.Pool
}

// NewVerificationRepository creates a new VerificationRepository
func NewVerificationRepository(db *database.DB) *VerificationRepository {
	return &VerificationRepository{pool: db.Pool}
}

func scanVerificationRow(row rowScanner) (*models.VerificationRecord, error) {
	var record models.VerificationRecord
	var consumedAt *time.Time

	if err := row.Scan(&record.Email, &record.Code, &record.ExpiresAt, &consumedAt); err != nil {
		return nil, database.MapPostgresError(err)
	}

	record.ConsumedAt = consumedAt
	return &record, nil
}

// Upsert stores the record, replacing any outstanding code for the same email
func (r *VerificationRepository) Upsert(ctx context.Context, record *models.VerificationRecord) error {
	query := `
		INSERT INTO auth_verifications (email, code, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO UPDATE
		SET code = EXCLUDED.code,
		    expires_at = EXCLUDED.expires_at,
		    consumed_at = NULL,
		    updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, record.Email, record.Code, record.ExpiresAt); err != nil {
		return fmt.Errorf("failed to upsert verification code: %w", database.MapPostgresError(err))
	}

	return nil
}

// Find returns the record for email, or models.ErrNotFound
func (r *VerificationRepository) Find(ctx context.Context, email string) (*models.VerificationRecord, error) {
	query := `
		SELECT email, code, expires_at, consumed_at
		FROM auth_verifications
		WHERE email = $1
	`

	record, err := scanVerificationRow(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		return nil, err
	}

	return record, nil
}

// Consume spends code for email. It reports false when the code does not match,
// was already spent, or no record exists; only one caller can win.
func (r *VerificationRepository) Consume(ctx context.Context, email, code string) (bool, error) {
	query := `
		UPDATE auth_verifications
		SET consumed_at = NOW(), updated_at = NOW()
		WHERE email = $1 AND code = $2 AND consumed_at IS NULL
	`

	result, err := r.pool.Exec(ctx, query, email, code)
	if err != nil {
		return false, fmt.Errorf("failed to consume verification code: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// Delete removes the record for email. Deleting a missing record is not an error.
func (r *VerificationRepository) Delete(ctx context.Context, email string) error {
	query := `DELETE FROM auth_verifications WHERE email = $1`

	if _, err := r.pool.Exec(ctx, query, email); err != nil {
		return fmt.Errorf("failed to delete verification code: %w", err)
	}

	return nil
}

// DeleteExpired purges records that expired before now
func (r *VerificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `DELETE FROM auth_verifications WHERE expires_at < $1`

	result, err := r.pool.Exec(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup expired verification codes: %w", err)
	}

	return result.RowsAffected(), nil
}
