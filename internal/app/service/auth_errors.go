package service

import (
	"errors"

	"papergen/internal/common"
)

// Auth error codes reported to clients.
const (
	AuthInvalidEmail      = "auth/invalid-email"
	AuthWeakPassword      = "auth/weak-password"
	AuthEmailInUse        = "auth/email-already-in-use"
	AuthUserNotFound      = "auth/user-not-found"
	AuthWrongPassword     = "auth/wrong-password"
	AuthTooManyRequests   = "auth/too-many-requests"
	AuthSessionExpired    = "auth/session-expired"
	defaultAuthMessage    = "Something went wrong. Please try again."
	invalidCredentialsMsg = "Invalid email or password."
)

var authMessages = map[string]string{
	AuthInvalidEmail:    "Please enter a valid email address.",
	AuthWeakPassword:    "Password should be at least 6 characters.",
	AuthEmailInUse:      "An account with this email already exists.",
	AuthUserNotFound:    invalidCredentialsMsg,
	AuthWrongPassword:   invalidCredentialsMsg,
	AuthTooManyRequests: "Too many failed attempts. Please try again later.",
	AuthSessionExpired:  "Your session has expired. Please sign in again.",
}

var authStatus = map[string]error{
	AuthInvalidEmail:    common.ErrValidation,
	AuthWeakPassword:    common.ErrValidation,
	AuthEmailInUse:      common.ErrConflict,
	AuthUserNotFound:    common.ErrUnauthorized,
	AuthWrongPassword:   common.ErrUnauthorized,
	AuthTooManyRequests: common.ErrTooManyRequests,
	AuthSessionExpired:  common.ErrUnauthorized,
}

// AuthError is a failed sign-in, sign-up or session restore.
type AuthError struct {
	Code string
	Err  error
}

func newAuthError(code string) *AuthError {
	return &AuthError{Code: code, Err: authStatus[code]}
}

func (e *AuthError) Error() string {
	return e.Code
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AuthMessage maps err to the message shown to the user. Unknown codes and
// non-auth errors get a generic message.
func AuthMessage(err error) string {
	var authErr *AuthError
	if errors.As(err, &authErr) {
		if msg, ok := authMessages[authErr.Code]; ok {
			return msg
		}
	}
	return defaultAuthMessage
}
