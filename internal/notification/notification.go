package notification

import (
	"context"
	"errors"
	"time"
)

// Notification types emitted by the application.
const (
	TypeWelcome = "welcome"
	TypeSystem  = "system"
)

// ErrNotFound is returned when a notification does not exist or belongs to a
// different account.
var ErrNotFound = errors.New("notification not found")

// Notification is a persisted in-app message owned by a single account.
type Notification struct {
	ID        string     `json:"id"`
	UserID    string     `json:"user_id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	Read      bool       `json:"read"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

// Repository persists notifications. MarkRead and MarkAllRead operate only on
// the owning account's records; MarkAllRead is idempotent.
type Repository interface {
	Create(ctx context.Context, n Notification) error
	ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) error
}
