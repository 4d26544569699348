package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/haimn-support/job-search-tracker-api/internal/config"
	"github.com/haimn-support/job-search-tracker-api/internal/metrics"
	"github.com/haimn-support/job-search-tracker-api/internal/server/ratelimit"
	"github.com/haimn-support/job-search-tracker-api/internal/types"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testJWTSecret = "test-secret-key-for-jwt-signing-minimum-32-bytes"

func testJWTConfig() *config.JWTConfig {
	return &config.JWTConfig{Secret: testJWTSecret, ExpirationHours: 24, Issuer: "job-search-tracker"}
}

type testServer struct {
	*Server
	store   *fakeStore
	metrics *metrics.Metrics
	handler http.Handler
}

// newTestServer builds a server over an in-memory store with rate limiting off
// unless a limiter is supplied.
func newTestServer(t *testing.T, limiter *ratelimit.Limiter) *testServer {
	t.Helper()
	if limiter == nil {
		limiter = ratelimit.NewLimiter(&ratelimit.Config{Enabled: false})
	}
	t.Cleanup(limiter.Stop)

	store := newFakeStore()
	m := metrics.New()
	srv := New(Options{
		Port:     "0",
		Store:    store,
		JWT:      testJWTConfig(),
		Password: &config.PasswordConfig{BcryptCost: config.MinBcryptCost},
		Limiter:  limiter,
		Metrics:  m,
		Logger:   zaptest.NewLogger(t),
	})
	return &testServer{Server: srv, store: store, metrics: m, handler: srv.Handler()}
}

// do sends a request through the full middleware chain.
func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.RemoteAddr = "192.0.2.1:1234"
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)
	return w
}

// register creates an account and returns its token and id.
func (ts *testServer) register(t *testing.T, email string) (string, uuid.UUID) {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/auth/register", "", types.RegisterRequest{
		Email:    email,
		Password: "testpassword123",
		Name:     "Test User",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp types.LoginResponse
	decode(t, w, &resp)
	return resp.Token, resp.User.ID
}

// createPosition adds a position through the API.
func (ts *testServer) createPosition(t *testing.T, token, company string, status types.PositionStatus, applied string) types.Position {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/positions", token, map[string]any{
		"title":            "Backend Engineer",
		"company":          company,
		"status":           status,
		"application_date": applied,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var p types.Position
	decode(t, w, &p)
	return p
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	decode(t, w, &body)
	msg, _ := body["error"].(string)
	return msg
}
