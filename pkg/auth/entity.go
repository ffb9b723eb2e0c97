package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a domain entity representing a store customer account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	IsVerified   bool
	IsAdmin      bool
	CreatedAt    time.Time
}

// SanitizedUser is the outward representation of a User: no password hash,
// nothing else sensitive.
type SanitizedUser struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	IsVerified bool      `json:"isVerified"`
	IsAdmin    bool      `json:"isAdmin"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Sanitize strips credentials from a User before it leaves the domain layer.
func (u User) Sanitize() SanitizedUser {
	return SanitizedUser{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		IsVerified: u.IsVerified,
		IsAdmin:    u.IsAdmin,
		CreatedAt:  u.CreatedAt,
	}
}

// OtpRecord holds the hashed one-time password issued to a user for email
// verification. At most one active record exists per user.
type OtpRecord struct {
	UserID    uuid.UUID
	CodeHash  string
	ExpiresAt time.Time
}

// Expired reports whether the record is past its TTL at the given instant.
func (r OtpRecord) Expired(now time.Time) bool { return now.After(r.ExpiresAt) }

// PasswordResetRecord holds the hashed reset token issued on forgot-password.
// Same single-active-record semantics as OtpRecord.
type PasswordResetRecord struct {
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
}

func (r PasswordResetRecord) Expired(now time.Time) bool { return now.After(r.ExpiresAt) }
