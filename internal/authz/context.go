package authz

import (
	"context"
	"net/http"
)

type contextKey string

const (
	userIDKey    contextKey = "user_id"
	userEmailKey contextKey = "user_email"
)

// WithIdentity stores the authenticated user's id and email on the context.
func WithIdentity(ctx context.Context, userID, email string) context.Context {
	if userID != "" {
		ctx = context.WithValue(ctx, userIDKey, userID)
	}
	if email != "" {
		ctx = context.WithValue(ctx, userEmailKey, email)
	}
	return ctx
}

func UserIDFromRequest(r *http.Request) (string, bool) {
	uid, ok := r.Context().Value(userIDKey).(string)
	if !ok || uid == "" {
		return "", false
	}
	return uid, true
}

func UserEmailFromRequest(r *http.Request) (string, bool) {
	email, ok := r.Context().Value(userEmailKey).(string)
	if !ok || email == "" {
		return "", false
	}
	return email, true
}
