package jwt

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dkrasnov87/shoply/pkg/auth"
)

// Generator signs session credentials (HS256). The extended TTL is used for
// password-reset tokens, which outlive a normal session.
type Generator struct {
	secret      []byte
	issuer      string
	ttl         time.Duration
	extendedTTL time.Duration
}

func NewGenerator(secret, issuer string, ttl, extendedTTL time.Duration) *Generator {
	return &Generator{secret: []byte(secret), issuer: issuer, ttl: ttl, extendedTTL: extendedTTL}
}

// Claims carries the registered set plus the sanitized fields handlers need
// without a user lookup. The password hash is never part of a credential.
type Claims struct {
	jwt.RegisteredClaims
	Email      string `json:"email"`
	IsVerified bool   `json:"is_verified"`
	IsAdmin    bool   `json:"is_admin"`
}

func (g *Generator) Generate(ctx context.Context, user auth.User, extended bool) (string, error) {
	ttl := g.ttl
	if extended {
		ttl = g.extendedTTL
	}
	now := time.Now().UTC()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    g.issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:      user.Email,
		IsVerified: user.IsVerified,
		IsAdmin:    user.IsAdmin,
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(g.secret)
}
