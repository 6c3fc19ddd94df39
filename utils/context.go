package utils

import (
	"context"
	"net/http"

	"itinera/globals"
)

// WithUserID returns ctx carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, globals.UserIDKey, userID)
}

// UserIDFromContext is "" for anonymous requests.
func UserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(globals.UserIDKey).(string)
	return id
}

func GetUserIDFromRequest(r *http.Request) string {
	return UserIDFromContext(r.Context())
}
