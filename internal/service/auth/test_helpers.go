package auth

import (
	"context"
	"testing"

	"github.com/BogdanBedrinec/cards/internal/config"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// DefaultJWTConfig returns a standard configuration for JWT authentication suitable for testing.
func DefaultJWTConfig() config.AuthConfig {
	return config.AuthConfig{
		JWTSecret:            "test-jwt-secret-that-is-32-chars-long",
		TokenLifetimeMinutes: 60,
	}
}

// RequireTestJWTService creates a JWT service from DefaultJWTConfig and
// fails the test if that is not possible.
func RequireTestJWTService(t *testing.T) JWTService {
	t.Helper()
	svc, err := NewJWTService(DefaultJWTConfig())
	require.NoError(t, err, "failed to create test JWT service")
	return svc
}

// AuthHeaderForTesting returns a "Bearer <token>" header value for userID.
func AuthHeaderForTesting(t *testing.T, svc JWTService, userID uuid.UUID) string {
	t.Helper()
	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err, "failed to generate test token")
	return "Bearer " + token
}
