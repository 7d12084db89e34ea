package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, userID string, expiresAt time.Time) string {
	t.Helper()
	claims := &Claims{
		UserID:   userID,
		Username: "alice",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test_secret"))
	require.NoError(t, err)
	return signed
}

func TestParseIdentity(t *testing.T) {
	token := signedToken(t, "u-1", time.Now().Add(time.Hour))

	identity, err := ParseIdentity(token)
	require.NoError(t, err)
	require.Equal(t, "u-1", identity.UserID)
	require.Equal(t, "alice", identity.Username)
}

func TestParseIdentity_Empty(t *testing.T) {
	_, err := ParseIdentity("")
	require.Error(t, err)
}

func TestParseIdentity_Garbage(t *testing.T) {
	_, err := ParseIdentity("not.a.jwt")
	require.Error(t, err)
}

func TestExpired(t *testing.T) {
	require.True(t, Expired(signedToken(t, "u-1", time.Now().Add(-time.Minute)), time.Now()))
	require.False(t, Expired(signedToken(t, "u-1", time.Now().Add(time.Hour)), time.Now()))
	require.True(t, Expired("garbage", time.Now()))
}

func TestTokenFromCookies(t *testing.T) {
	token, ok := TokenFromCookies("theme=dark; token=abc.def.ghi; lang=en")
	require.True(t, ok)
	require.Equal(t, "abc.def.ghi", token)

	_, ok = TokenFromCookies("theme=dark; lang=en")
	require.False(t, ok)

	_, ok = TokenFromCookies("")
	require.False(t, ok)
}
