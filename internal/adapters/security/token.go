package security

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/proxiserve/auth-service/internal/domain"
	"github.com/proxiserve/auth-service/internal/ports"
)

// MinSecretLength is the shortest signing secret accepted at startup.
const MinSecretLength = 32

// HMACTokenCodec implements HS512 token signing/verification. The secret is
// process-wide configuration held at adapter level so the application layer
// stays crypto-library agnostic.
type HMACTokenCodec struct {
	secret []byte
	nowFn  func() time.Time
}

// NewHMACTokenCodec builds a codec from the configured signing secret.
// A missing or short secret is a fatal startup condition for the service.
func NewHMACTokenCodec(secret []byte) (*HMACTokenCodec, error) {
	if len(secret) < MinSecretLength {
		return nil, errors.New("signing secret must be at least 32 bytes")
	}
	return &HMACTokenCodec{
		secret: secret,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}, nil
}

// WithClock replaces the codec clock. Tests use it to drive expiry.
func (c *HMACTokenCodec) WithClock(nowFn func() time.Time) *HMACTokenCodec {
	c.nowFn = nowFn
	return c
}

type sessionClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (c *HMACTokenCodec) Issue(identity, role string, ttl time.Duration) (string, error) {
	now := c.nowFn()
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, sessionClaims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	})
	return token.SignedString(c.secret)
}

// Verify validates signature and freshness with zero leeway, so a token is
// rejected at the exact expiry instant. Expired and malformed/forged tokens
// map to distinct sentinels for logging; callers treat both as failure.
func (c *HMACTokenCodec) Verify(raw string) (ports.TokenClaims, error) {
	parsed, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(token *jwt.Token) (any, error) {
		if token.Method.Alg() != jwt.SigningMethodHS512.Alg() {
			return nil, errors.New("unexpected signing method")
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS512.Alg()}),
		jwt.WithTimeFunc(c.nowFn),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return ports.TokenClaims{}, domain.ErrTokenExpired
		}
		return ports.TokenClaims{}, domain.ErrTokenInvalid
	}

	claims, ok := parsed.Claims.(*sessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return ports.TokenClaims{}, domain.ErrTokenInvalid
	}

	out := ports.TokenClaims{
		Identity: claims.Subject,
		Role:     claims.Role,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time.UTC()
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time.UTC()
	}
	return out, nil
}
