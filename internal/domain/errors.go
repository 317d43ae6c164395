package domain

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	// Keeping this sentinel in domain allows adapters to map it consistently to 404.
	ErrNotFound = errors.New("resource not found")
	// ErrInvalidCredentials hides whether email or password failed.
	// The reason is to prevent account-enumeration side channels.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountLocked signals temporary lockout after repeated failed attempts.
	// It is the one login failure exposed to callers as a distinct status.
	ErrAccountLocked = errors.New("account locked")
	// ErrUnauthenticated covers missing, forged, and expired bearer tokens alike.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden is returned when the caller is authenticated but lacks the role.
	ErrForbidden = errors.New("forbidden")
	// ErrTokenExpired and ErrTokenInvalid are distinguished for logging only;
	// callers treat both as authentication failure.
	ErrTokenExpired = errors.New("token expired")
	ErrTokenInvalid = errors.New("token invalid")
	// ErrWeakPassword rejects a signup or reset before any account mutation.
	ErrWeakPassword = errors.New("password does not meet policy")
	ErrInvalidInput = errors.New("invalid input")
	ErrConflict     = errors.New("conflict")
	ErrRateLimited  = errors.New("rate limited")
)
