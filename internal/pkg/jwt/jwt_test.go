//go:build unit

package jwt_test

import (
	"testing"
	"time"

	"rental-orchestrator/internal/pkg/jwt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestService(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		svc := jwt.NewService("secret", "scheduler", time.Minute)

		token, err := svc.GenerateToken()
		require.NoError(t, err)

		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, "scheduler", claims.Service)
	})

	t.Run("rejects token signed with another secret", func(t *testing.T) {
		minted, err := jwt.NewService("other", "scheduler", time.Minute).GenerateToken()
		require.NoError(t, err)

		_, err = jwt.NewService("secret", "scheduler", time.Minute).ValidateToken(minted)
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})

	t.Run("rejects expired token", func(t *testing.T) {
		svc := jwt.NewService("secret", "scheduler", -time.Minute)

		token, err := svc.GenerateToken()
		require.NoError(t, err)

		_, err = svc.ValidateToken(token)
		assert.ErrorIs(t, err, jwt.ErrExpiredToken)
	})

	t.Run("rejects garbage", func(t *testing.T) {
		_, err := jwt.NewService("secret", "scheduler", time.Minute).ValidateToken("not-a-token")
		assert.ErrorIs(t, err, jwt.ErrInvalidToken)
	})
}
