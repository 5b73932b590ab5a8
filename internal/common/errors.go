// Package common defines shared constants and sentinel errors used across
// the client and server layers of labbook. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrInternal           = errors.New("internal error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrValidation         = errors.New("validation error")
	ErrForbidden          = errors.New("forbidden")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenExpired = errors.New("refresh token expired")
	ErrResetTokenInvalid   = errors.New("reset token invalid or expired")

	// Outbound mail: no transport configured. Soft failure, logged by the
	// dispatcher and converted to a false result.
	ErrMailUnconfigured = errors.New("mail transport not configured")

	// Object storage errors.
	ErrStorage         = errors.New("storage error")
	ErrStorageNotFound = errors.New("object not found")

	// Client-side: the request failed for reasons other than an invalid
	// token (network error, 5xx). The caller keeps its token and retries.
	ErrTransient = errors.New("transient failure")
)
