// Package ratelimit throttles failed logins per identifier with Redis
// fixed-window counters: INCR, plus EXPIRE on the first hit of a window.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/visitorhub/internal/common"
	"github.com/redis/go-redis/v9"
)

const loginKeyPrefix = "vh:login:"

// ErrUnavailable wraps Redis failures so callers can decide to fail open.
var ErrUnavailable = errors.New("rate limiter unavailable")

// LoginLimiter counts failed logins and refuses further attempts once the
// budget for the current window is spent.
type LoginLimiter struct {
	redis       redis.UniversalClient
	maxAttempts int
	cooldown    time.Duration
}

// NewLoginLimiter allows maxAttempts failures per identifier within each
// cooldown window.
func NewLoginLimiter(client redis.UniversalClient, maxAttempts int, cooldown time.Duration) *LoginLimiter {
	return &LoginLimiter{redis: client, maxAttempts: maxAttempts, cooldown: cooldown}
}

// Check returns common.ErrRateLimited when identifier has used up its budget.
func (l *LoginLimiter) Check(ctx context.Context, identifier string) error {
	count, err := l.redis.Get(ctx, loginKey(identifier)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count >= int64(l.maxAttempts) {
		return common.ErrRateLimited
	}
	return nil
}

// RecordFailure counts one failed attempt.
func (l *LoginLimiter) RecordFailure(ctx context.Context, identifier string) error {
	key := loginKey(identifier)

	count, err := l.redis.Incr(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count == 1 {
		if err := l.redis.Expire(ctx, key, l.cooldown).Err(); err != nil {
			return fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}
	return nil
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, identifier string) error {
	if err := l.redis.Del(ctx, loginKey(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// Ping reports whether Redis is reachable.
func (l *LoginLimiter) Ping(ctx context.Context) error {
	if err := l.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return nil
}

// loginKey uses the identifier verbatim; account lookup is case-sensitive.
func loginKey(identifier string) string {
	return loginKeyPrefix + identifier
}

// Nop never limits. It is used when no Redis address is configured.
type Nop struct{}

func (Nop) Check(context.Context, string) error         { return nil }
func (Nop) RecordFailure(context.Context, string) error { return nil }
func (Nop) Reset(context.Context, string) error         { return nil }
