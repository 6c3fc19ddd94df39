package middleware

import (
	"net/http"
	"strings"

	"itinera/globals"
	"itinera/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

// JWT claims
type Claims struct {
	Username string `json:"username"`
	UserID   string `json:"userId"`
	jwt.RegisteredClaims
}

func parseBearer(header string) (*Claims, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil, false
	}
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return globals.JwtSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !parsed.Valid || claims.UserID == "" {
		return nil, false
	}
	return claims, true
}

// Authenticate rejects requests without a valid bearer token and stores the user id in the context.
// Browsers cannot set headers on websocket upgrades, so the token may also arrive as ?token=.
func Authenticate(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		header := r.Header.Get("Authorization")
		if header == "" {
			if tok := r.URL.Query().Get("token"); tok != "" {
				header = "Bearer " + tok
			}
		}
		if header == "" {
			http.Error(w, "Missing token", http.StatusUnauthorized)
			return
		}

		claims, ok := parseBearer(header)
		if !ok {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		ctx := utils.WithUserID(r.Context(), claims.UserID)
		next(w, r.WithContext(ctx), ps)
	}
}

// OptionalAuth sets the user id when a valid token is present and proceeds regardless.
func OptionalAuth(next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if claims, ok := parseBearer(r.Header.Get("Authorization")); ok {
			r = r.WithContext(utils.WithUserID(r.Context(), claims.UserID))
		}
		next(w, r, ps)
	}
}
