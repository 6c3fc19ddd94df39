package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"itinera/budget"
	"itinera/config"
	"itinera/globals"
	"itinera/middleware"
	"itinera/notify"
	"itinera/ratelim"
)

func token(t *testing.T, userID string) string {
	t.Helper()
	claims := &middleware.Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(globals.JwtSecret)
	require.NoError(t, err)
	return signed
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	hub := notify.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	b, err := memoryBackends(&config.Config{}, hub, zap.NewNop())
	require.NoError(t, err)

	router, svc := setupRouter(b, budget.DefaultRates(), hub, ratelim.NewRateLimiter(100, 100), zap.NewNop())
	srv := httptest.NewServer(securityHeaders(router))
	t.Cleanup(func() {
		srv.Close()
		svc.Wait()
	})
	return srv
}

func do(t *testing.T, method, url, bearer, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	require.NoError(t, err)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodGet, srv.URL+"/health", "", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestWritesRequireToken(t *testing.T) {
	srv := newTestServer(t)

	resp := do(t, http.MethodPost, srv.URL+"/api/itineraries", "", `{"name":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = do(t, http.MethodPost, srv.URL+"/api/itineraries", "garbage", `{"name":"x"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateAndListItinerary(t *testing.T) {
	srv := newTestServer(t)
	tok := token(t, "alice")

	resp := do(t, http.MethodPost, srv.URL+"/api/itineraries", tok,
		`{"name":"Hanoi","start_date":"2026-06-01","end_date":"2026-06-03"}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/itineraries/mine", tok, "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = do(t, http.MethodGet, srv.URL+"/api/itineraries/all/missing", tok, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
