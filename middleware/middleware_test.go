package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"itinera/globals"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signed(t *testing.T, userID string, secret []byte) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{UserID: userID})
	s, err := tok.SignedString(secret)
	require.NoError(t, err)
	return s
}

func echoUser(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	uid, _ := r.Context().Value(globals.UserIDKey).(string)
	w.Write([]byte(uid))
}

func TestAuthenticate(t *testing.T) {
	h := Authenticate(echoUser)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "u1", []byte("wrong")))
	rec = httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+signed(t, "u1", globals.JwtSecret))
	rec = httptest.NewRecorder()
	h(rec, req, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", rec.Body.String())
}

func TestAuthenticateQueryToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/ws?token="+signed(t, "u2", globals.JwtSecret), nil)
	rec := httptest.NewRecorder()
	Authenticate(echoUser)(rec, req, nil)
	assert.Equal(t, "u2", rec.Body.String())
}

func TestOptionalAuth(t *testing.T) {
	rec := httptest.NewRecorder()
	OptionalAuth(echoUser)(rec, httptest.NewRequest(http.MethodGet, "/", nil), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
