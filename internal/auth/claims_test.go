package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, claims Claims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-side-secret"))
	require.NoError(t, err)
	return tok
}

func TestInspectToken(t *testing.T) {
	issued := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	tok := signed(t, Claims{
		UserID: "u1",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(issued.Add(24 * time.Hour)),
		},
	})

	info, err := InspectToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "u1", info.UserID)
	assert.True(t, info.IssuedAt.Equal(issued))
	assert.False(t, info.Expired(issued.Add(time.Hour)))
	assert.True(t, info.Expired(issued.Add(48*time.Hour)))
}

func TestInspectToken_NoExpiry(t *testing.T) {
	info, err := InspectToken(signed(t, Claims{UserID: "u2"}))
	require.NoError(t, err)
	assert.True(t, info.ExpiresAt.IsZero())
	assert.False(t, info.Expired(time.Now()))
}

func TestInspectToken_Invalid(t *testing.T) {
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		_, err := InspectToken(tok)
		assert.Error(t, err, tok)
	}
}
