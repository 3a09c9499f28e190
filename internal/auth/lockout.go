package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLocked indicates too many consecutive failed logins inside the window.
var ErrLocked = errors.New("too many failed login attempts")

const lockoutPrefix = "lockout:login:"

// LoginLimiter tracks consecutive failed logins per mobile number in Redis
// and locks the account out once the threshold is hit within the window. A
// lockout is reported distinctly from a plain bad-credentials rejection.
// Without Redis the limiter is a no-op, and Redis errors fail open.
type LoginLimiter struct {
	cache  *redis.Client
	max    int
	window time.Duration
}

// NewLoginLimiter builds a limiter. max <= 0 falls back to 5 attempts.
func NewLoginLimiter(cache *redis.Client, max int, window time.Duration) *LoginLimiter {
	if max <= 0 {
		max = 5
	}
	if window <= 0 {
		window = 5 * time.Minute
	}
	return &LoginLimiter{cache: cache, max: max, window: window}
}

// Allow returns ErrLocked when the mobile number has exhausted its attempts.
func (l *LoginLimiter) Allow(ctx context.Context, mobile string) error {
	if l == nil || l.cache == nil {
		return nil
	}
	raw, err := l.cache.Get(ctx, lockoutPrefix+mobile).Result()
	if err != nil {
		return nil // fail-open on cache errors and missing keys
	}
	count, err := strconv.Atoi(raw)
	if err == nil && count >= l.max {
		return ErrLocked
	}
	return nil
}

// RecordFailure bumps the failure counter; the first failure arms the window.
func (l *LoginLimiter) RecordFailure(ctx context.Context, mobile string) {
	if l == nil || l.cache == nil {
		return
	}
	key := lockoutPrefix + mobile
	count, err := l.cache.Incr(ctx, key).Result()
	if err == nil && count == 1 {
		l.cache.Expire(ctx, key, l.window)
	}
}

// Reset clears the counter after a successful login.
func (l *LoginLimiter) Reset(ctx context.Context, mobile string) {
	if l == nil || l.cache == nil {
		return
	}
	l.cache.Del(ctx, lockoutPrefix+mobile)
}
