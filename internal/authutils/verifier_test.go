package authutils_test

import (
	"context"
	"testing"
	"time"

	"fable-server/internal/authutils"
	"fable-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "unit-test-secret"

func sign(t *testing.T, claims *models.Claims, key string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return token
}

func TestVerifyToken(t *testing.T) {
	verifier, err := authutils.NewJWTVerifier(secret, nil)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("valid token", func(t *testing.T) {
		userID := uuid.New()
		token := sign(t, &models.Claims{
			UserID: userID,
			Roles:  []string{string(models.RoleReader)},
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}, secret)

		claims, err := verifier.VerifyToken(ctx, token)
		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, []string{"READER"}, claims.Roles)
	})

	t.Run("expired token", func(t *testing.T) {
		token := sign(t, &models.Claims{
			UserID: uuid.New(),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
			},
		}, secret)

		_, err := verifier.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, models.ErrTokenExpired)
	})

	t.Run("wrong signature", func(t *testing.T) {
		token := sign(t, &models.Claims{
			UserID: uuid.New(),
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}, "some-other-secret")

		_, err := verifier.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := verifier.VerifyToken(ctx, "definitely.not.a-jwt")
		assert.ErrorIs(t, err, models.ErrTokenMalformed)
	})

	t.Run("missing user id", func(t *testing.T) {
		token := sign(t, &models.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}, secret)

		_, err := verifier.VerifyToken(ctx, token)
		assert.ErrorIs(t, err, models.ErrTokenInvalid)
	})

	t.Run("empty secret refused", func(t *testing.T) {
		_, err := authutils.NewJWTVerifier("", nil)
		assert.Error(t, err)
	})
}
