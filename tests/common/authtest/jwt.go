//go:build unit || e2e

package authtest

import (
	"testing"
	"time"

	"rental-orchestrator/internal/pkg/config"
	"rental-orchestrator/internal/pkg/jwt"

	"github.com/stretchr/testify/require"
)

// JWTHelper mints internal service tokens the way a scheduler trigger would.
type JWTHelper struct {
	cfg config.InternalAuthConfig
}

func NewJWTHelper(cfg config.InternalAuthConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) ServiceToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewService(h.cfg.ServiceSecret, h.cfg.ServiceName, h.cfg.TokenTTL).GenerateToken()
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) ExpiredServiceToken(t *testing.T) string {
	t.Helper()
	token, err := jwt.NewService(h.cfg.ServiceSecret, h.cfg.ServiceName, -time.Minute).GenerateToken()
	require.NoError(t, err)
	return token
}
