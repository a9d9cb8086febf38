package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParseSessionToken(t *testing.T) {
	t.Parallel()

	a := NewJWTAuthenticator("super-secret", "tunehub", "tunehub")

	tok, expiresAt, err := a.IssueSessionToken("user-123", "admin", 24*time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(24*time.Hour), expiresAt, 5*time.Second)

	claims, err := a.ParseSessionToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.Equal(t, "user-123", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.WithinDuration(t, expiresAt, claims.ExpiresAt.Time, time.Second)
}

func TestParseSessionToken_Expired(t *testing.T) {
	t.Parallel()

	a := NewJWTAuthenticator("secret", "tunehub", "tunehub")
	a.now = func() time.Time { return time.Now().Add(-48 * time.Hour) }

	tok, _, err := a.IssueSessionToken("u1", "user", 24*time.Hour)
	require.NoError(t, err)

	a.now = time.Now
	_, err = a.ParseSessionToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseSessionToken_WrongSecret(t *testing.T) {
	t.Parallel()

	signer := NewJWTAuthenticator("right-secret", "tunehub", "tunehub")
	verifier := NewJWTAuthenticator("wrong-secret", "tunehub", "tunehub")

	tok, _, err := signer.IssueSessionToken("u2", "user", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ParseSessionToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSessionToken_WrongIssuer(t *testing.T) {
	t.Parallel()

	signer := NewJWTAuthenticator("secret", "tunehub", "someone-else")
	verifier := NewJWTAuthenticator("secret", "tunehub", "tunehub")

	tok, _, err := signer.IssueSessionToken("u3", "user", time.Hour)
	require.NoError(t, err)

	_, err = verifier.ParseSessionToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSessionToken_RejectsNoneAlgorithm(t *testing.T) {
	t.Parallel()

	a := NewJWTAuthenticator("secret", "tunehub", "tunehub")
	claims := SessionClaims{
		UserID: "u4",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "tunehub",
			Audience:  jwt.ClaimStrings{"tunehub"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = a.ParseSessionToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSessionToken_Malformed(t *testing.T) {
	t.Parallel()

	a := NewJWTAuthenticator("k", "tunehub", "tunehub")
	_, err := a.ParseSessionToken("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
