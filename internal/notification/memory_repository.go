package notification

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory notification store used in development
// mode and as the test fake.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Notification // keyed by id
}

// NewMemoryRepository builds an in-memory notification store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]Notification)}
}

func (r *MemoryRepository) Create(_ context.Context, n Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[n.ID] = n
	return nil
}

func (r *MemoryRepository) ListByUser(_ context.Context, userID string, limit int) ([]Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	now := time.Now()
	out := []Notification{}
	for _, n := range r.records {
		if n.UserID != userID {
			continue
		}
		if n.ExpiresAt != nil && !n.ExpiresAt.After(now) {
			continue
		}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) MarkRead(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	n, ok := r.records[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	n.Read = true
	r.records[id] = n
	return nil
}

func (r *MemoryRepository) MarkAllRead(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, n := range r.records {
		if n.UserID == userID && !n.Read {
			n.Read = true
			r.records[id] = n
		}
	}
	return nil
}
