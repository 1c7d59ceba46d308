package middleware

import (
	"context"
	"errors"
	"net/http"

	"papergen/internal/app/identity"
	"papergen/internal/common"
	"papergen/internal/common/security"

	"github.com/go-chi/jwtauth/v5"
)

// Authenticator rejects requests without a valid bearer token and scopes the
// request context to the token's user.
func Authenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, err := userFromToken(r.Context())
		if err != nil {
			common.RespondWithError(w, http.StatusUnauthorized, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(identity.WithUserID(r.Context(), userID)))
	})
}

// OptionalAuthenticator scopes the request to the token's user when a valid
// token is present and lets anonymous requests through unchanged.
func OptionalAuthenticator(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, err := userFromToken(r.Context()); err == nil {
			r = r.WithContext(identity.WithUserID(r.Context(), userID))
		}
		next.ServeHTTP(w, r)
	})
}

func userFromToken(ctx context.Context) (string, error) {
	token, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		if errors.Is(err, jwtauth.ErrNoTokenFound) {
			return "", common.Errorf("Authorization token required")
		}
		return "", common.Errorf("Invalid token: %v", err)
	}
	if token == nil {
		return "", common.Errorf("Invalid token")
	}
	userID, err := security.GetUserIDFromClaims(claims)
	if err != nil {
		return "", common.Errorf("Invalid token claims: %v", err)
	}
	return userID, nil
}

// GetUserIDFromContext returns the authenticated user's id.
func GetUserIDFromContext(ctx context.Context) (string, bool) {
	return identity.UserIDFromContext(ctx)
}
