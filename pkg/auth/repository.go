package auth

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Common errors used by repositories/use cases. Handlers map these onto
// HTTP statuses; anything unlisted is treated as internal.
var (
	ErrNotFound           = errors.New("not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoActiveOtp        = errors.New("no active otp")
	ErrOtpExpired         = errors.New("otp expired")
	ErrInvalidOtp         = errors.New("invalid otp")
	ErrResetTokenExpired  = errors.New("reset token expired")
	ErrInvalidResetToken  = errors.New("invalid reset token")
	ErrUnavailable        = errors.New("dependency unavailable")
)

// UserRepository abstracts persistence concerns from the domain layer.
// Implementations may be in-memory, SQL, NoSQL, etc.
type UserRepository interface {
	Create(ctx context.Context, user User) error
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, error)
	// Update persists mutable profile fields and flags; returns the stored row.
	Update(ctx context.Context, user User) (User, error)
	SetVerified(ctx context.Context, id uuid.UUID) (User, error)
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// OtpRepository stores at most one active OTP record per user.
// Upsert atomically replaces any prior record for the same user, so two
// concurrent resends cannot leave two live codes behind.
type OtpRepository interface {
	Upsert(ctx context.Context, rec OtpRecord) error
	GetByUser(ctx context.Context, userID uuid.UUID) (OtpRecord, error)
	// DeleteByUser reports whether a record was actually removed, letting a
	// caller that lost a consumption race detect it without an error.
	DeleteByUser(ctx context.Context, userID uuid.UUID) (bool, error)
}

// PasswordResetRepository mirrors OtpRepository for reset tokens.
type PasswordResetRepository interface {
	Upsert(ctx context.Context, rec PasswordResetRecord) error
	GetByUser(ctx context.Context, userID uuid.UUID) (PasswordResetRecord, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) (bool, error)
}
