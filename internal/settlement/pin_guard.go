package settlement

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// PinGuard rate-limits PIN verification failures per wallet account using
// a Redis counter.  After maxFails failures within the lockout window the
// account is blocked until the window expires.  A nil Redis client
// disables the guard entirely, matching how the rate limiter and cache
// degrade when Redis is unavailable.
type PinGuard struct {
	rdb      *redis.Client
	maxFails int
	window   time.Duration
}

// NewPinGuard returns a PinGuard.  rdb may be nil to disable lockout.
func NewPinGuard(rdb *redis.Client, maxFails int, window time.Duration) *PinGuard {
	if maxFails < 1 {
		maxFails = 1
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &PinGuard{rdb: rdb, maxFails: maxFails, window: window}
}

func pinFailKey(accountID uint64) string {
	return fmt.Sprintf("pinfail:%d", accountID)
}

// Blocked reports whether the account has exhausted its PIN attempts.
// Redis errors fail open: a broken counter must not block settlements.
func (g *PinGuard) Blocked(ctx context.Context, accountID uint64) bool {
	if g.rdb == nil {
		return false
	}
	n, err := g.rdb.Get(ctx, pinFailKey(accountID)).Int()
	if err != nil {
		if err != redis.Nil {
			log.Printf("pin-guard: read failed: %v", err)
		}
		return false
	}
	return n >= g.maxFails
}

// Fail records one PIN failure for the account.  The counter expires after
// the lockout window so a locked account frees itself without operator
// action.
func (g *PinGuard) Fail(ctx context.Context, accountID uint64) {
	if g.rdb == nil {
		return
	}
	key := pinFailKey(accountID)
	n, err := g.rdb.Incr(ctx, key).Result()
	if err != nil {
		log.Printf("pin-guard: incr failed: %v", err)
		return
	}
	if n == 1 {
		if err := g.rdb.Expire(ctx, key, g.window).Err(); err != nil {
			log.Printf("pin-guard: expire failed: %v", err)
		}
	}
}

// Reset clears the failure counter after a successful verification.
func (g *PinGuard) Reset(ctx context.Context, accountID uint64) {
	if g.rdb == nil {
		return
	}
	if err := g.rdb.Del(ctx, pinFailKey(accountID)).Err(); err != nil {
		log.Printf("pin-guard: reset failed: %v", err)
	}
}
