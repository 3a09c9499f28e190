package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

const listLimit = 100

// Service persists notifications and relays them to connected clients.
type Service struct {
	repo   Repository
	hub    *Hub
	logger *slog.Logger
}

// NewService builds the notification service.
func NewService(repo Repository, hub *Hub, logger *slog.Logger) *Service {
	return &Service{repo: repo, hub: hub, logger: logger}
}

// Notify persists a notification and pushes it to any live connection of the
// owner. The push is best-effort; the stored record is what clients poll.
func (s *Service) Notify(ctx context.Context, userID, title, message, typ string) (Notification, error) {
	n := Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      typ,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return Notification{}, err
	}
	if s.hub != nil {
		s.hub.Push(userID, pushEnvelope{Event: "notification", Data: n})
	}
	return n, nil
}

type pushEnvelope struct {
	Event string       `json:"event"`
	Data  Notification `json:"data"`
}

// List returns the account's current notifications.
func (s *Service) List(ctx context.Context, userID string) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userID, listLimit)
}

// MarkRead flags one owned notification as read.
func (s *Service) MarkRead(ctx context.Context, userID, id string) error {
	return s.repo.MarkRead(ctx, userID, id)
}

// MarkAllRead flags all owned notifications as read.
func (s *Service) MarkAllRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllRead(ctx, userID)
}
