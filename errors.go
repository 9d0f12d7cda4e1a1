package auth

import (
	"github.com/goliatone/go-errors"
)

// Machine-readable codes carried in the envelope's error field.
const (
	TextCodeUserExists          = "USER_EXISTS"
	TextCodeUserNotFound        = "USER_NOT_FOUND"
	TextCodeAccountDeactivated  = "ACCOUNT_DEACTIVATED"
	TextCodeInvalidRefreshToken = "INVALID_REFRESH_TOKEN"
	TextCodeTokenExpired        = "TOKEN_EXPIRED"
	TextCodeInvalidToken        = "INVALID_TOKEN"
	TextCodeMissingToken        = "MISSING_TOKEN"
	TextCodeNotFound            = "NOT_FOUND"
)

// ErrUserExists is returned when a registration reuses an email or id.
var ErrUserExists = errors.New("user already exists", errors.CategoryConflict).
	WithTextCode(TextCodeUserExists).
	WithCode(errors.CodeConflict)

// ErrUserNotFound is returned when no repository record matches.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrAccountDeactivated is returned when the record exists but has been
// soft-deleted by an admin.
var ErrAccountDeactivated = errors.New("account is deactivated", errors.CategoryAuth).
	WithTextCode(TextCodeAccountDeactivated).
	WithCode(errors.CodeForbidden)

// ErrTokenExpired is returned for structurally valid tokens past exp.
var ErrTokenExpired = errors.New("authentication token expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenInvalid covers bad signatures and malformed payloads. The
// access-token path deliberately collapses every failure mode into this
// one outcome.
var ErrTokenInvalid = errors.New("invalid authentication token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidRefreshToken additionally covers access tokens replayed on
// the refresh path; callers cannot tell the cases apart.
var ErrInvalidRefreshToken = errors.New("invalid refresh token", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidRefreshToken).
	WithCode(errors.CodeUnauthorized)

// ErrMissingToken is returned when a protected route gets no usable
// bearer credential.
var ErrMissingToken = errors.New("no authorization token provided", errors.CategoryAuth).
	WithTextCode(TextCodeMissingToken).
	WithCode(errors.CodeUnauthorized)

// IsAuthError reports whether err carries the auth category, which the
// gateway maps to a 401. Status decisions switch on this, never on
// message contents.
func IsAuthError(err error) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.Category == errors.CategoryAuth
}

// ErrorCode extracts the machine-readable code for the envelope. Plain
// errors fall back to their message, matching the envelope contract of
// always carrying something diagnosable.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var rich *errors.Error
	if errors.As(err, &rich) && rich.TextCode != "" {
		return rich.TextCode
	}
	return err.Error()
}
