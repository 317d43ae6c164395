package ports

import (
	"context"
	"time"
)

// ThrottleState is the windowed counter envelope for one throttle key.
type ThrottleState struct {
	Count        int
	BlockedUntil *time.Time
}

// ThrottleStore rate-limits abuse-prone public endpoints (reset request,
// signup). This is request throttling keyed by IP or identity, distinct from
// the account lockout state that lives on the credential record.
type ThrottleStore interface {
	Get(ctx context.Context, key string) (ThrottleState, error)
	RecordHit(ctx context.Context, key string, now time.Time, threshold int, window time.Duration) (ThrottleState, error)
	Clear(ctx context.Context, key string) error
}
