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

// OtpRepository implements auth.OtpRepository backed by PostgreSQL (pgx).
// user_id is the primary key: one row per user, the upsert replaces in place.
type OtpRepository struct {
	pool *pgxpool.Pool
}

func NewOtpRepository(pool *pgxpool.Pool) (*OtpRepository, error) {
	repo := &OtpRepository{pool: pool}
	if err := repo.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *OtpRepository) ensureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS otps (
			user_id UUID PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
			code_hash TEXT NOT NULL,
			expires_at TIMESTAMPTZ NOT NULL
		);
	`)
	return err
}

// Upsert is the single-statement insert-or-replace keyed by user id, so two
// concurrent issues cannot leave two live codes or a lost update.
func (r *OtpRepository) Upsert(ctx context.Context, rec auth.OtpRecord) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO otps (user_id, code_hash, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO UPDATE
		SET code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at
	`, rec.UserID, rec.CodeHash, rec.ExpiresAt)
	return err
}

func (r *OtpRepository) GetByUser(ctx context.Context, userID uuid.UUID) (auth.OtpRecord, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, code_hash, expires_at FROM otps WHERE user_id = $1
	`, userID)
	var rec auth.OtpRecord
	var expiresAt time.Time
	if err := row.Scan(&rec.UserID, &rec.CodeHash, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return auth.OtpRecord{}, auth.ErrNotFound
		}
		return auth.OtpRecord{}, err
	}
	rec.ExpiresAt = expiresAt.UTC()
	return rec, nil
}

func (r *OtpRepository) DeleteByUser(ctx context.Context, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM otps WHERE user_id = $1`, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
