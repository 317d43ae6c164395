package ports

import "time"

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenClaims is the self-contained content of a signed bearer token.
// Validating signature and freshness needs no lookup beyond these fields.
type TokenClaims struct {
	Identity  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenCodec signs and verifies compact time-bounded claims. Issue never
// fails on well-formed input; misconfiguration (a missing or short signing
// secret) is a startup error, not a per-call one.
type TokenCodec interface {
	Issue(identity, role string, ttl time.Duration) (string, error)
	// Verify returns domain.ErrTokenExpired or domain.ErrTokenInvalid;
	// the split exists for logging, callers treat both the same.
	Verify(token string) (TokenClaims, error)
}
