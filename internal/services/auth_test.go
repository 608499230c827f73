package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTokenService() TokenService {
	return TokenService{
		Secret:     []byte("test-secret"),
		Issuer:     "shodoshare-test",
		AccessTTL:  time.Hour,
		RefreshTTL: 24 * time.Hour,
	}
}

func TestAccessTokenRoundTrip(t *testing.T) {
	tokens := testTokenService()

	signed, exp, err := tokens.CreateAccessToken("user-1", "hana@example.jp", "user")
	require.NoError(t, err)
	assert.Greater(t, exp, time.Now().Unix())

	parsed, claims, err := tokens.ParseToken(signed)
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "user-1", claims["sub"])
	assert.Equal(t, "hana@example.jp", claims["email"])
	assert.Equal(t, "user", claims["role"])
	assert.Equal(t, "access", claims["typ"])
}

func TestRefreshTokenCarriesRefreshType(t *testing.T) {
	tokens := testTokenService()

	signed, err := tokens.CreateRefreshToken("user-1")
	require.NoError(t, err)

	parsed, claims, err := tokens.ParseToken(signed)
	require.NoError(t, err)
	assert.True(t, parsed.Valid)
	assert.Equal(t, "refresh", claims["typ"])
	_, hasRole := claims["role"]
	assert.False(t, hasRole)
}

func TestParseTokenRejectsWrongIssuer(t *testing.T) {
	tokens := testTokenService()
	other := tokens
	other.Issuer = "someone-else"

	signed, _, err := other.CreateAccessToken("user-1", "hana@example.jp", "user")
	require.NoError(t, err)

	_, _, err = tokens.ParseToken(signed)
	assert.Error(t, err)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tokens := testTokenService()
	other := tokens
	other.Secret = []byte("different-secret")

	signed, _, err := other.CreateAccessToken("user-1", "hana@example.jp", "user")
	require.NoError(t, err)

	_, _, err = tokens.ParseToken(signed)
	assert.Error(t, err)
}

func TestPasswordHashAndVerify(t *testing.T) {
	tokens := testTokenService()

	hash, err := tokens.HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$")

	assert.True(t, tokens.VerifyPassword("correct horse battery", hash))
	assert.False(t, tokens.VerifyPassword("wrong password", hash))
}

func TestVerifyPasswordRejectsGarbageHash(t *testing.T) {
	tokens := testTokenService()
	assert.False(t, tokens.VerifyPassword("anything", "$argon2id$not-a-real-hash"))
}
