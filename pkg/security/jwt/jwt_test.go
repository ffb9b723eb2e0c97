package jwt

import (
	"context"
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkrasnov87/shoply/pkg/auth"
)

func testUser() auth.User {
	return auth.User{
		ID:           uuid.New(),
		Email:        "a@x.com",
		PasswordHash: "$2a$10$notpartofanyclaim",
		Name:         "Test User",
		IsVerified:   true,
	}
}

func parse(t *testing.T, token, secret string) *Claims {
	t.Helper()
	parsed, err := gojwt.ParseWithClaims(token, &Claims{}, func(*gojwt.Token) (any, error) {
		return []byte(secret), nil
	})
	require.NoError(t, err)
	require.True(t, parsed.Valid)
	claims, ok := parsed.Claims.(*Claims)
	require.True(t, ok)
	return claims
}

func TestGenerateSessionCredential(t *testing.T) {
	g := NewGenerator("secret", "shoply-api", time.Hour, 24*time.Hour)
	user := testUser()

	token, err := g.Generate(context.Background(), user, false)
	require.NoError(t, err)

	claims := parse(t, token, "secret")
	assert.Equal(t, user.ID.String(), claims.Subject)
	assert.Equal(t, "shoply-api", claims.Issuer)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.True(t, claims.IsVerified)
	assert.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestGenerateExtendedLifetime(t *testing.T) {
	g := NewGenerator("secret", "shoply-api", time.Hour, 24*time.Hour)

	token, err := g.Generate(context.Background(), testUser(), true)
	require.NoError(t, err)

	claims := parse(t, token, "secret")
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, time.Minute)
}

func TestCredentialNeverCarriesPasswordHash(t *testing.T) {
	g := NewGenerator("secret", "shoply-api", time.Hour, 24*time.Hour)
	user := testUser()

	token, err := g.Generate(context.Background(), user, false)
	require.NoError(t, err)
	assert.NotContains(t, token, "notpartofanyclaim")
}

func TestGenerateWrongSecretRejected(t *testing.T) {
	g := NewGenerator("secret", "shoply-api", time.Hour, 24*time.Hour)

	token, err := g.Generate(context.Background(), testUser(), false)
	require.NoError(t, err)

	_, err = gojwt.ParseWithClaims(token, &Claims{}, func(*gojwt.Token) (any, error) {
		return []byte("other-secret"), nil
	})
	assert.Error(t, err)
}
