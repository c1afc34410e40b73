package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/BogdanBedrinec/cards/internal/api/shared"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/service/auth"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthMiddleware_Authenticate(t *testing.T) {
	t.Parallel()

	ownerID := uuid.New()

	tests := []struct {
		name        string
		authHeader  string
		validateErr error
		wantStatus  int
		wantMessage string
	}{
		{name: "valid token", authHeader: "Bearer valid-token", wantStatus: http.StatusOK},
		{name: "lowercase scheme", authHeader: "bearer valid-token", wantStatus: http.StatusOK},
		{name: "missing header", wantStatus: http.StatusUnauthorized, wantMessage: "Authorization header required"},
		{name: "no scheme", authHeader: "valid-token", wantStatus: http.StatusUnauthorized, wantMessage: "Invalid authorization format"},
		{name: "basic scheme", authHeader: "Basic dXNlcjpwYXNz", wantStatus: http.StatusUnauthorized, wantMessage: "Invalid authorization format"},
		{name: "empty token", authHeader: "Bearer  ", wantStatus: http.StatusUnauthorized, wantMessage: "Invalid authorization format"},
		{name: "expired", authHeader: "Bearer old", validateErr: auth.ErrExpiredToken, wantStatus: http.StatusUnauthorized, wantMessage: "Token expired"},
		{name: "invalid", authHeader: "Bearer bad", validateErr: auth.ErrInvalidToken, wantStatus: http.StatusUnauthorized, wantMessage: "Invalid token"},
		{name: "wrong type", authHeader: "Bearer refresh", validateErr: auth.ErrWrongTokenType, wantStatus: http.StatusUnauthorized, wantMessage: "Invalid token"},
		{name: "unexpected error", authHeader: "Bearer x", validateErr: errors.New("boom"), wantStatus: http.StatusUnauthorized, wantMessage: "Invalid token"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			jwtService := auth.NewMockJWTService(ownerID)
			jwtService.ValidationError = tc.validateErr

			var captured uuid.UUID
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				id, ok := GetOwnerID(r)
				require.True(t, ok)
				captured = id
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
			if tc.authHeader != "" {
				req.Header.Set("Authorization", tc.authHeader)
			}
			w := httptest.NewRecorder()

			NewAuthMiddleware(jwtService).Authenticate(next).ServeHTTP(w, req)

			assert.Equal(t, tc.wantStatus, w.Code)
			if tc.wantStatus == http.StatusOK {
				assert.Equal(t, ownerID, captured)
				return
			}
			var body shared.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tc.wantMessage, body.Error)
		})
	}
}

func TestAuthMiddleware_RealTokens(t *testing.T) {
	t.Parallel()

	svc := auth.RequireTestJWTService(t)
	ownerID := uuid.New()

	var captured uuid.UUID
	handler := NewAuthMiddleware(svc).Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured, _ = GetOwnerID(r)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
	req.Header.Set("Authorization", auth.AuthHeaderForTesting(t, svc, ownerID))
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, ownerID, captured)
}

func TestGetOwnerID_Missing(t *testing.T) {
	t.Parallel()

	_, ok := GetOwnerID(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, ok)
}

func TestTraceMiddleware(t *testing.T) {
	t.Parallel()

	buf, log := logger.NewTestLogger(t)

	var traceID string
	handler := TraceMiddleware(log)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		traceID = shared.GetTraceID(r.Context())
		logger.FromContext(r.Context()).Info("inside handler")
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.NotEmpty(t, traceID)
	entries, err := buf.Entries()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.Equal(t, traceID, e["trace_id"])
	}
}
