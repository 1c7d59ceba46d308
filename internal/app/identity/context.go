// Package identity tracks who is signed in. Session changes flow from the
// auth provider into a Resolver, which notifies subscribers; request-scoped
// code receives the user id through a context value.
package identity

import "context"

type contextKey string

const userIDCtxKey contextKey = "userID"

// WithUserID attaches the acting user's id. An empty id leaves ctx anonymous.
func WithUserID(ctx context.Context, userID string) context.Context {
	if userID == "" {
		return ctx
	}
	return context.WithValue(ctx, userIDCtxKey, userID)
}

// UserIDFromContext reports the acting user's id, if any.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDCtxKey).(string)
	return userID, ok && userID != ""
}
