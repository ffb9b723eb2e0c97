// Package hash wraps bcrypt as the one-way hasher for passwords, OTP codes,
// and reset tokens. bcrypt salts per call, so equal secrets never produce
// equal digests, and comparison is constant-time.
package hash

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

type Hasher struct {
	cost int
}

// New returns a Hasher with the given bcrypt cost. Costs outside bcrypt's
// supported range fall back to the library default.
func New(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt hash: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether secret matches digest. A plain mismatch is
// (false, nil); an error means the stored digest is not a bcrypt hash,
// which indicates corrupted data, not a wrong secret.
func (h *Hasher) Verify(secret, digest string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, fmt.Errorf("malformed digest: %w", err)
}
