// Package ratelimit bounds request rates per merchant and client IP over a
// sliding window.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrLimitExceeded is returned when a key has no free slot in the current
// window. The limiter fails closed.
var ErrLimitExceeded = errors.New("rate limit exceeded")

// Limiter admits or rejects a single request for a key. Implementations must
// make the check-and-record step atomic: when one slot remains, two
// concurrent calls for the same key may not both be admitted.
type Limiter interface {
	Allow(ctx context.Context, key string, now time.Time) error
}

// Key builds the canonical limiter key for a merchant and client IP pair.
func Key(merchantID, clientIP string) string {
	return fmt.Sprintf("ratelimit:%s:%s", merchantID, clientIP)
}
