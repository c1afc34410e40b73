package api_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/BogdanBedrinec/cards/internal/api"
	"github.com/BogdanBedrinec/cards/internal/domain/srs"
	"github.com/BogdanBedrinec/cards/internal/platform/logger"
	"github.com/BogdanBedrinec/cards/internal/platform/sqlite"
	"github.com/BogdanBedrinec/cards/internal/service"
	"github.com/BogdanBedrinec/cards/internal/service/auth"
	"github.com/BogdanBedrinec/cards/internal/testdb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var baseTime = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// testServer is the full router over a fresh SQLite database.
type testServer struct {
	handler http.Handler
	jwt     auth.JWTService
	clock   *fakeClock
	owner   uuid.UUID
	auth    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithLimit(t, 1<<20)
}

func newTestServerWithLimit(t *testing.T, maxBody int64) *testServer {
	t.Helper()

	_, log := logger.NewTestLogger(t)
	cardStore := sqlite.NewCardStore(testdb.NewSQLite(t), log)
	clock := &fakeClock{now: baseTime}
	opts := []service.Option{service.WithClock(clock.Now), service.WithLocation(time.UTC)}

	var svcs api.Services
	var err error
	svcs.Cards, err = service.NewCardService(cardStore, srs.NewDefaultService(), log, opts...)
	require.NoError(t, err)
	svcs.Queries, err = service.NewQueryService(cardStore, log, opts...)
	require.NoError(t, err)
	svcs.Decks, err = service.NewDeckService(cardStore, log)
	require.NoError(t, err)
	svcs.Bulk, err = service.NewBulkService(cardStore, log)
	require.NoError(t, err)
	svcs.Transfers, err = service.NewTransferService(cardStore, log, opts...)
	require.NoError(t, err)
	svcs.Stats, err = service.NewStatsService(cardStore, log, opts...)
	require.NoError(t, err)

	jwtService := auth.RequireTestJWTService(t)
	owner := uuid.New()

	return &testServer{
		handler: api.NewRouter(api.RouterConfig{
			Services:       svcs,
			JWTService:     jwtService,
			Logger:         log,
			AllowedOrigins: []string{"http://localhost:5173"},
			MaxBodyBytes:   maxBody,
		}),
		jwt:   jwtService,
		clock: clock,
		owner: owner,
		auth:  auth.AuthHeaderForTesting(t, jwtService, owner),
	}
}

// authFor returns a bearer header for another owner.
func (s *testServer) authFor(t *testing.T, owner uuid.UUID) string {
	t.Helper()
	return auth.AuthHeaderForTesting(t, s.jwt, owner)
}

// do sends body (JSON encoded unless it is a string) with the given
// Authorization header value.
func (s *testServer) do(t *testing.T, method, path string, body any, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

// call is do as the default owner.
func (s *testServer) call(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, method, path, body, s.auth)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// addCard creates a card as the default owner and advances the clock.
func (s *testServer) addCard(t *testing.T, word, translation, deck string) api.CardResponse {
	t.Helper()
	w := s.call(t, http.MethodPost, "/api/cards", map[string]string{
		"word":        word,
		"translation": translation,
		"deck":        deck,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	s.clock.Advance(time.Second)
	return decode[api.CardResponse](t, w)
}

func wordsOf(cards []api.CardResponse) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Word
	}
	return out
}
