package otp

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoCode is returned when no live code exists for the mobile number,
// either because none was issued or because it aged out.
var ErrNoCode = errors.New("no active code")

const keyPrefix = "otp:"

// Ledger stores short-lived one-time codes keyed by mobile number. Saving a
// new code replaces any previous one, so only the most recently issued code
// for a number is ever valid.
type Ledger interface {
	Save(ctx context.Context, mobile, code string, ttl time.Duration) error
	Get(ctx context.Context, mobile string) (string, error)
	Delete(ctx context.Context, mobile string) error
}

// RedisLedger keeps codes in Redis with a server-side TTL.
type RedisLedger struct {
	client *redis.Client
}

// NewRedisLedger builds a Redis-backed code ledger.
func NewRedisLedger(client *redis.Client) *RedisLedger {
	return &RedisLedger{client: client}
}

func (l *RedisLedger) Save(ctx context.Context, mobile, code string, ttl time.Duration) error {
	return l.client.Set(ctx, keyPrefix+mobile, code, ttl).Err()
}

func (l *RedisLedger) Get(ctx context.Context, mobile string) (string, error) {
	code, err := l.client.Get(ctx, keyPrefix+mobile).Result()
	if err == redis.Nil {
		return "", ErrNoCode
	}
	return code, err
}

func (l *RedisLedger) Delete(ctx context.Context, mobile string) error {
	return l.client.Del(ctx, keyPrefix+mobile).Err()
}

type memoryEntry struct {
	code      string
	expiresAt time.Time
}

// MemoryLedger is an in-memory ledger for development mode and tests.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemoryLedger builds an in-memory code ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]memoryEntry), now: time.Now}
}

func (l *MemoryLedger) Save(_ context.Context, mobile, code string, ttl time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[mobile] = memoryEntry{code: code, expiresAt: l.now().Add(ttl)}
	return nil
}

func (l *MemoryLedger) Get(_ context.Context, mobile string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[mobile]
	if !ok {
		return "", ErrNoCode
	}
	if l.now().After(entry.expiresAt) {
		delete(l.entries, mobile)
		return "", ErrNoCode
	}
	return entry.code, nil
}

func (l *MemoryLedger) Delete(_ context.Context, mobile string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, mobile)
	return nil
}
