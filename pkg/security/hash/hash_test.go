package hash

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashVerifyRoundTrip(t *testing.T) {
	h := New(4)

	digest, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	require.NotEmpty(t, digest)
	assert.NotContains(t, digest, "correct horse")

	ok, err := h.Verify("correct horse battery staple", digest)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("wrong secret", digest)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashSaltsPerCall(t *testing.T) {
	h := New(4)

	a, err := h.Hash("same secret")
	require.NoError(t, err)
	b, err := h.Hash("same secret")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestVerifyMalformedDigest(t *testing.T) {
	h := New(4)

	_, err := h.Verify("anything", "not-a-bcrypt-digest")
	assert.Error(t, err)
}

func TestNewClampsCost(t *testing.T) {
	// out-of-range costs must not panic later on
	h := New(99)
	digest, err := h.Hash("pw")
	require.NoError(t, err)
	ok, err := h.Verify("pw", digest)
	require.NoError(t, err)
	assert.True(t, ok)
}
