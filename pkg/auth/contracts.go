package auth

import "context"

// TokenGenerator abstracts signed credential creation (e.g., JWT).
// extended selects the longer validity window used for password-reset links.
type TokenGenerator interface {
	Generate(ctx context.Context, user User, extended bool) (string, error)
}

// SecretHasher is the one-way hash used for passwords, OTP codes, and reset
// tokens. Verify returns (false, nil) on a plain mismatch; an error means
// the stored digest itself is malformed.
type SecretHasher interface {
	Hash(secret string) (string, error)
	Verify(secret, digest string) (bool, error)
}

// CodeGenerator produces the short verification codes sent by email.
type CodeGenerator interface {
	NewCode() (string, error)
}

// Notifier delivers plaintext codes and reset links to the user's address.
// Delivery failure never rolls back an already-persisted record.
type Notifier interface {
	Send(ctx context.Context, to, subject, body string) error
}
