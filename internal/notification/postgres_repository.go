package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository stores notifications in PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed notification repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a notification record.
func (r *PostgresRepository) Create(ctx context.Context, n Notification) error {
	id, err := uuid.Parse(n.ID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(n.UserID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO notifications (id, user_id, title, message, type, read, expires_at, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		id, userID, n.Title, n.Message, n.Type, n.Read, n.ExpiresAt, n.CreatedAt.UTC())
	return err
}

// ListByUser returns the account's unexpired notifications, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, limit int) ([]Notification, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrNotFound
	}
	rows, err := r.db.Query(ctx, `SELECT id, user_id, title, message, type, read, expires_at, created_at
        FROM notifications
        WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > NOW())
        ORDER BY created_at DESC
        LIMIT $2`, id, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Notification{}
	for rows.Next() {
		var (
			n         Notification
			nID       uuid.UUID
			nUserID   uuid.UUID
			expiresAt *time.Time
			createdAt time.Time
		)
		if err := rows.Scan(&nID, &nUserID, &n.Title, &n.Message, &n.Type, &n.Read, &expiresAt, &createdAt); err != nil {
			return nil, err
		}
		n.ID = nID.String()
		n.UserID = nUserID.String()
		n.ExpiresAt = expiresAt
		n.CreatedAt = createdAt.UTC()
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags a single notification as read, scoped to the owner.
func (r *PostgresRepository) MarkRead(ctx context.Context, userID, id string) error {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	nID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	cmd, err := r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`, nID, uID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkAllRead flags every notification of the account as read. Running it
// twice lands in the same terminal state.
func (r *PostgresRepository) MarkAllRead(ctx context.Context, userID string) error {
	uID, err := uuid.Parse(userID)
	if err != nil {
		return ErrNotFound
	}
	_, err = r.db.Exec(ctx, `UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`, uID)
	return err
}
