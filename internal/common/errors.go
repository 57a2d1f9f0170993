package common

import "errors"

// Callers should use errors.Is to match these values.
var (
	// repository specific errors
	ErrorNotFound = errors.New("not found")

	// service specific errors
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// entry-specific errors
	ErrorValidation = errors.New("validation error")

	// auth errors
	ErrorMissingCredentials = errors.New("username and password are required")
	ErrInvalidToken         = errors.New("invalid token")
	ErrSessionExpired       = errors.New("session expired")
)
