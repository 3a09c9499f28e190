package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestLoginLimiterLocksAfterThreshold(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewLoginLimiter(client, 3, time.Minute)

	ctx := context.Background()
	if err := limiter.Allow(ctx, "9876543210"); err != nil {
		t.Fatalf("fresh number should be allowed: %v", err)
	}

	for i := 0; i < 3; i++ {
		limiter.RecordFailure(ctx, "9876543210")
	}
	if err := limiter.Allow(ctx, "9876543210"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected ErrLocked after 3 failures, got %v", err)
	}

	// other numbers are unaffected
	if err := limiter.Allow(ctx, "9876543211"); err != nil {
		t.Fatalf("unrelated number locked: %v", err)
	}

	limiter.Reset(ctx, "9876543210")
	if err := limiter.Allow(ctx, "9876543210"); err != nil {
		t.Fatalf("expected reset to clear the lockout: %v", err)
	}
}

func TestLoginLimiterWindowExpiry(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := NewLoginLimiter(client, 2, time.Minute)

	ctx := context.Background()
	limiter.RecordFailure(ctx, "9876543210")
	limiter.RecordFailure(ctx, "9876543210")
	if err := limiter.Allow(ctx, "9876543210"); !errors.Is(err, ErrLocked) {
		t.Fatalf("expected lockout, got %v", err)
	}

	mr.FastForward(2 * time.Minute)
	if err := limiter.Allow(ctx, "9876543210"); err != nil {
		t.Fatalf("expected lockout to lapse with the window: %v", err)
	}
}

func TestLoginLimiterWithoutRedis(t *testing.T) {
	limiter := NewLoginLimiter(nil, 2, time.Minute)
	ctx := context.Background()

	limiter.RecordFailure(ctx, "9876543210")
	limiter.RecordFailure(ctx, "9876543210")
	if err := limiter.Allow(ctx, "9876543210"); err != nil {
		t.Fatalf("limiter without redis must fail open: %v", err)
	}
}
