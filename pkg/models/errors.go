package models

import "errors"

// Common errors for FastFile domain operations.
var (
	// User errors
	ErrUserNotFound       = errors.New("user not found")
	ErrDuplicateUser      = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Path errors
	ErrInvalidPath = errors.New("invalid path")

	// File errors
	ErrFileNotFound  = errors.New("file not found")
	ErrFileExists    = errors.New("file already exists")
	ErrQuotaExceeded = errors.New("storage quota exceeded")

	// Link errors
	ErrLinkNotFound  = errors.New("link not found")
	ErrDuplicateLink = errors.New("link already exists")
	ErrForbidden     = errors.New("operation not permitted for this user")

	// ErrInvalidArgument covers malformed caller input that is neither a
	// path-safety nor an authorization failure (e.g. an empty viewer list).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrLinkExhausted means token generation hit repeated unique-constraint
	// collisions. With random 128-bit tokens this indicates a persistence
	// fault, not actual token-space exhaustion.
	ErrLinkExhausted = errors.New("failed to generate unique link token")
)
