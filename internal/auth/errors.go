package auth

import "errors"

// Authentication outcomes. Handlers map all of these to 401; infrastructure
// errors (store or DB unreachable) are returned wrapped and map to 500.
var (
	ErrInvalidCredentials        = errors.New("invalid username or password")
	ErrAccountPermanentlyDeleted = errors.New("account permanently deleted")
	ErrTokenExpired              = errors.New("token expired")
	ErrTokenRevoked              = errors.New("token revoked")
	ErrSessionMismatch           = errors.New("token does not match current session")
	ErrNoStoredSession           = errors.New("no stored session")
	ErrRefreshTokenExpired       = errors.New("refresh token expired")
	ErrMemberNotFound            = errors.New("member not found")
)
