package shared

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetAndGetTraceID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	withTrace := SetTraceID(ctx)
	traceID := GetTraceID(withTrace)
	assert.Len(t, traceID, 2*TraceIDLength)
	_, err := hex.DecodeString(traceID)
	assert.NoError(t, err)

	assert.Empty(t, GetTraceID(ctx), "original context is unchanged")
	assert.Empty(t, GetTraceID(context.WithValue(ctx, TraceIDKey, 123)))
}

func TestGenerateTraceID_Unique(t *testing.T) {
	t.Parallel()

	seen := make(map[string]bool, 200)
	for i := 0; i < 200; i++ {
		id := generateTraceID()
		require.False(t, seen[id], "duplicate trace id %s", id)
		seen[id] = true
	}
	assert.Len(t, generateFallbackTraceID(), 2*TraceIDLength)
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type payload struct {
		Word string `json:"word"`
	}

	tests := []struct {
		name    string
		body    string
		limit   int64
		wantErr error
		ok      bool
	}{
		{name: "valid", body: `{"word":"Hund"}`, ok: true},
		{name: "empty", body: "", wantErr: ErrEmptyBody},
		{name: "too large", body: `{"word":"` + strings.Repeat("x", 64) + `"}`, limit: 16, wantErr: ErrBodyTooLarge},
		{name: "trailing value", body: `{"word":"a"}{"word":"b"}`},
		{name: "malformed", body: `{"word":`},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			if tc.limit > 0 {
				req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, tc.limit)
			}

			var got payload
			err := DecodeJSON(req, &got)
			switch {
			case tc.ok:
				require.NoError(t, err)
				assert.Equal(t, "Hund", got.Word)
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			default:
				assert.Error(t, err)
			}
		})
	}
}

type selfValidating struct{ err error }

func (s selfValidating) Validate() error { return s.err }

func TestValidateRequest(t *testing.T) {
	t.Parallel()

	type req struct {
		IDs []string `validate:"required,min=1"`
	}
	assert.NoError(t, ValidateRequest(&req{IDs: []string{"a"}}))
	assert.Error(t, ValidateRequest(&req{}))

	custom := errors.New("custom")
	assert.Equal(t, custom, ValidateRequest(selfValidating{err: custom}))
}

func TestRespondWithError_IncludesTraceID(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
	req = req.WithContext(SetTraceID(req.Context()))
	w := httptest.NewRecorder()

	RespondWithError(w, req, http.StatusNotFound, "Card not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Card not found", body.Error)
	assert.Equal(t, GetTraceID(req.Context()), body.TraceID)
}

func TestRespondWithErrorAndLog_Levels(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		status int
		opts   []ResponseOption
		level  string
	}{
		{"server error", http.StatusInternalServerError, nil, "ERROR"},
		{"client error", http.StatusBadRequest, nil, "DEBUG"},
		{"rate limited", http.StatusTooManyRequests, nil, "WARN"},
		{"elevated client error", http.StatusUnauthorized, []ResponseOption{WithElevatedLogLevel()}, "WARN"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			buf, log := logger.NewTestLogger(t)
			req := httptest.NewRequest(http.MethodGet, "/api/cards", nil)
			req = req.WithContext(logger.WithLogger(req.Context(), log))
			w := httptest.NewRecorder()

			secret := errors.New("dial postgres://cards:hunter22@db/cards failed")
			RespondWithErrorAndLog(w, req, tc.status, "Something went wrong", secret, tc.opts...)

			assert.Equal(t, tc.status, w.Code)
			assert.NotContains(t, w.Body.String(), "hunter22")
			assert.NotContains(t, buf.String(), "hunter22")

			entries, err := buf.Entries()
			require.NoError(t, err)
			require.Len(t, entries, 1)
			assert.Equal(t, tc.level, entries[0][slog.LevelKey])
			assert.Equal(t, "Something went wrong", entries[0]["user_message"])
		})
	}
}
