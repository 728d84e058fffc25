package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/koushalk6/whatsapp-saas-api-v2-extended/pkg/errors"
)

const testSecret = "test-secret"

func mintToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestVerifyAcceptsValidToken(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token := mintToken(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	principal, err := v.Verify(token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.Subject)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token := mintToken(t, "other-secret", jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(token)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token := mintToken(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-2 * time.Minute).Unix(),
	})

	_, err := v.Verify(token)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestVerifyLeewayAllowsRecentlyExpiredToken(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token := mintToken(t, testSecret, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(-10 * time.Second).Unix(),
	})

	principal, err := v.Verify(token)

	require.NoError(t, err)
	assert.Equal(t, "user-1", principal.Subject)
}

func TestVerifyRejectsMissingSubject(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token := mintToken(t, testSecret, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	_, err := v.Verify(token)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
	assert.Equal(t, "token has no subject", pkgerrors.MessageOf(err))
}

func TestVerifyRejectsUnexpectedSigningMethod(t *testing.T) {
	v := NewJWTVerifier(testSecret)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "user-1",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = v.Verify(token)

	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
}

func TestVerifyRejectsMalformedToken(t *testing.T) {
	v := NewJWTVerifier(testSecret)

	_, err := v.Verify("not-a-token")

	require.Error(t, err)
	assert.True(t, pkgerrors.IsUnauthorized(err))
}
