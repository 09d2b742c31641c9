package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTService_RoundTrip(t *testing.T) {
	s := NewJWTService("secret", "singmerge")

	token, err := s.Generate("ci", []string{ScopePublish}, time.Hour)
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "ci", claims.Subject)
	assert.Equal(t, "singmerge", claims.Issuer)
	assert.True(t, claims.HasScope(ScopePublish))
	require.NotNil(t, claims.ExpiresAt)

	_, err = s.VerifyScope(token, ScopePublish)
	assert.NoError(t, err)
}

func TestJWTService_NoExpiry(t *testing.T) {
	s := NewJWTService("secret", "singmerge")

	token, err := s.Generate("ci", nil, 0)
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Nil(t, claims.ExpiresAt)

	_, err = s.VerifyScope(token, ScopePublish)
	assert.ErrorIs(t, err, ErrMissingScope)
}

func TestJWTService_Rejects(t *testing.T) {
	s := NewJWTService("secret", "singmerge")
	valid, err := s.Generate("ci", []string{ScopePublish}, time.Hour)
	require.NoError(t, err)

	t.Run("wrong secret", func(t *testing.T) {
		_, err := NewJWTService("other", "singmerge").Verify(valid)
		assert.Error(t, err)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		_, err := NewJWTService("secret", "someone-else").Verify(valid)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		expired := NewJWTService("secret", "singmerge")
		expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
		token, err := expired.Generate("ci", []string{ScopePublish}, time.Hour)
		require.NoError(t, err)

		_, err = s.Verify(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
			Scopes:           []string{ScopePublish},
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "singmerge"},
		})
		signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = s.Verify(signed)
		assert.Error(t, err)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := s.Verify("not.a.token")
		assert.Error(t, err)
	})
}
