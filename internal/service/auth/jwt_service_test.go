package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-that-is-long-enough-for-testing"

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func mustService(t *testing.T, secret string, lifetime time.Duration, now time.Time) *hmacJWTService {
	t.Helper()
	svc, err := newJWTService(secret, lifetime, fixedClock(now))
	require.NoError(t, err)
	return svc
}

func TestNewJWTService(t *testing.T) {
	t.Parallel()

	_, err := NewJWTService(DefaultJWTConfig())
	require.NoError(t, err)

	cfg := DefaultJWTConfig()
	cfg.JWTSecret = "short"
	_, err = NewJWTService(cfg)
	assert.Error(t, err)

	cfg = DefaultJWTConfig()
	cfg.TokenLifetimeMinutes = 0
	_, err = NewJWTService(cfg)
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := time.Hour
	userID := uuid.New()
	svc := mustService(t, testSecret, lifetime, fixedTime)

	token, err := svc.GenerateToken(context.Background(), userID)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := svc.ValidateToken(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, userID.String(), claims.Subject)
	assert.Equal(t, accessTokenType, claims.TokenType)
	assert.Equal(t, fixedTime.Unix(), claims.IssuedAt.Unix())
	assert.Equal(t, fixedTime.Add(lifetime).Unix(), claims.ExpiresAt.Unix())
	assert.NotEmpty(t, claims.ID)

	_, err = svc.GenerateToken(context.Background(), uuid.Nil)
	assert.Error(t, err)
}

func TestValidateToken(t *testing.T) {
	t.Parallel()

	fixedTime := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	lifetime := time.Hour
	userID := uuid.New()

	signWith := func(t *testing.T, method jwt.SigningMethod, key any, claims jwtCustomClaims) string {
		t.Helper()
		token, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return token
	}

	tests := []struct {
		name      string
		setupFunc func(t *testing.T) (JWTService, string)
		wantErr   error
	}{
		{
			name: "valid token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				svc := mustService(t, testSecret, lifetime, fixedTime)
				token, err := svc.GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return svc, token
			},
		},
		{
			name: "within clock skew after expiry",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, err := mustService(t, testSecret, lifetime, fixedTime).GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return mustService(t, testSecret, lifetime, fixedTime.Add(lifetime+time.Minute)), token
			},
		},
		{
			name: "expired token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, err := mustService(t, testSecret, lifetime, fixedTime).GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return mustService(t, testSecret, lifetime, fixedTime.Add(lifetime+time.Hour)), token
			},
			wantErr: ErrExpiredToken,
		},
		{
			name: "issued in the future",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token := signWith(t, jwt.SigningMethodHS256, []byte(testSecret), jwtCustomClaims{
					UserID:    userID,
					TokenType: accessTokenType,
					RegisteredClaims: jwt.RegisteredClaims{
						NotBefore: jwt.NewNumericDate(fixedTime.Add(time.Hour)),
						ExpiresAt: jwt.NewNumericDate(fixedTime.Add(2 * time.Hour)),
					},
				})
				return mustService(t, testSecret, lifetime, fixedTime), token
			},
			wantErr: ErrTokenNotYetValid,
		},
		{
			name: "invalid signature",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token, err := mustService(t, testSecret, lifetime, fixedTime).GenerateToken(context.Background(), userID)
				require.NoError(t, err)
				return mustService(t, "wrong-secret-that-is-long-enough-for-testing", lifetime, fixedTime), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "unexpected signing method",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token := signWith(t, jwt.SigningMethodHS512, []byte(testSecret), jwtCustomClaims{
					UserID:           userID,
					TokenType:        accessTokenType,
					RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour))},
				})
				return mustService(t, testSecret, lifetime, fixedTime), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "wrong token type",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token := signWith(t, jwt.SigningMethodHS256, []byte(testSecret), jwtCustomClaims{
					UserID:           userID,
					TokenType:        "refresh",
					RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour))},
				})
				return mustService(t, testSecret, lifetime, fixedTime), token
			},
			wantErr: ErrWrongTokenType,
		},
		{
			name: "missing user id",
			setupFunc: func(t *testing.T) (JWTService, string) {
				token := signWith(t, jwt.SigningMethodHS256, []byte(testSecret), jwtCustomClaims{
					TokenType:        accessTokenType,
					RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(fixedTime.Add(time.Hour))},
				})
				return mustService(t, testSecret, lifetime, fixedTime), token
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "malformed token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return mustService(t, testSecret, lifetime, fixedTime), "this.is.not.a.valid.jwt.token"
			},
			wantErr: ErrInvalidToken,
		},
		{
			name: "empty token",
			setupFunc: func(t *testing.T) (JWTService, string) {
				return mustService(t, testSecret, lifetime, fixedTime), ""
			},
			wantErr: ErrMissingToken,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, token := tt.setupFunc(t)
			claims, err := svc.ValidateToken(context.Background(), token)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, claims)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, userID, claims.UserID)
		})
	}
}
