package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkrasnov87/shoply/pkg/auth"
)

// PasswordResetRepository implements auth.PasswordResetRepository (pgx).
// Same one-row-per-user shape as OtpRepository.
type PasswordResetRepository struct {
	pool *pgxpool.Pool
}

func NewPasswordResetRepository(pool *pgxpool.Pool) (*PasswordResetRepository, error) {
	repo := &PasswordResetRepository{pool: pool}
	if err := repo.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *PasswordResetRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS password_reset_tokens (
			user_id UUID PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
			token_hash TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

func (r *PasswordResetRepository) Upsert(ctx context.Context, rec auth.PasswordResetRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO password_reset_tokens (user_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET token_hash = EXCLUDED.token_hash, expires_at = EXCLUDED.expires_at
	`, rec.UserID, rec.TokenHash, rec.ExpiresAt)
	return err
}

func (r *PasswordResetRepository) GetByUser(ctx context.Context, userID uuid.UUID) (auth.PasswordResetRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, token_hash, expires_at FROM password_reset_tokens WHERE user_id = $1
	`, userID)
	var rec auth.PasswordResetRecord
	var expiresAt time.Time
	if err := row.Scan(&rec.UserID, &rec.TokenHash, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.PasswordResetRecord{}, auth.ErrNotFound
		}
		return auth.PasswordResetRecord{}, err
	}
	rec.ExpiresAt = expiresAt.UTC()
	return rec, nil
}

func (r *PasswordResetRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
