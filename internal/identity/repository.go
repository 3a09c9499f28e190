package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sentinel errors surfaced by every Repository implementation.
var (
	ErrNotFound    = errors.New("user not found")
	ErrMobileTaken = errors.New("mobile already registered")
	ErrEmailTaken  = errors.New("email already registered")
)

// Repository persists credential records.
type Repository interface {
	FindByID(ctx context.Context, id string) (User, error)
	FindByMobile(ctx context.Context, mobile string) (User, error)
	IdentityExists(ctx context.Context, mobile, email string) (bool, error)
	Update(ctx context.Context, id string, patch Patch) (User, error)
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetVerified(ctx context.Context, mobile string) error
	SetPassword(ctx context.Context, id, hash string) error
	SetOnline(ctx context.Context, id string, online bool) error
	Deactivate(ctx context.Context, id string) error
}

const userColumns = `id, name, mobile, email, password_hash, role, active, verified, online,
        latitude, longitude, address, last_login, created_at, updated_at`

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed credential repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateTx inserts a user inside the caller's transaction so the credential
// record and its role profile commit or roll back together.
func (r *PostgresRepository) CreateTx(ctx context.Context, tx pgx.Tx, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `INSERT INTO users (`+userColumns+`)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		userID, user.Name, user.Mobile, user.Email, user.PasswordHash, user.Role,
		user.Active, user.Verified, user.Online, user.Latitude, user.Longitude,
		user.Address, user.LastLogin, user.CreatedAt.UTC(), user.UpdatedAt.UTC())
	return translateUnique(err)
}

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

// FindByMobile fetches a user by mobile number.
func (r *PostgresRepository) FindByMobile(ctx context.Context, mobile string) (User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE mobile = $1`, mobile))
}

// IdentityExists reports whether any user already claims the mobile or email.
func (r *PostgresRepository) IdentityExists(ctx context.Context, mobile, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE mobile = $1 OR email = $2)`,
		mobile, email).Scan(&exists)
	return exists, err
}

// Update applies an allow-listed partial update and returns the stored user.
func (r *PostgresRepository) Update(ctx context.Context, id string, patch Patch) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrNotFound
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return User{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	user, err := scanUser(tx.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1 FOR UPDATE`, userID))
	if err != nil {
		return User{}, err
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}
	if patch.Email != nil {
		user.Email = *patch.Email
	}
	if patch.Address != nil {
		user.Address = *patch.Address
	}
	if patch.Latitude != nil {
		user.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		user.Longitude = *patch.Longitude
	}
	user.UpdatedAt = time.Now().UTC()

	_, err = tx.Exec(ctx, `UPDATE users SET name = $2, email = $3, address = $4,
        latitude = $5, longitude = $6, updated_at = $7 WHERE id = $1`,
		userID, user.Name, user.Email, user.Address, user.Latitude, user.Longitude, user.UpdatedAt)
	if err != nil {
		return User{}, translateUnique(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return User{}, err
	}
	return user, nil
}

// UpdateLastLogin stamps the last successful login time.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `UPDATE users SET last_login = $2, updated_at = $2 WHERE id = $1`, id, at.UTC())
}

// SetVerified marks the account owning the mobile number as phone-verified.
func (r *PostgresRepository) SetVerified(ctx context.Context, mobile string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET verified = TRUE, updated_at = $2 WHERE mobile = $1`,
		mobile, time.Now().UTC())
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPassword replaces the stored digest.
func (r *PostgresRepository) SetPassword(ctx context.Context, id, hash string) error {
	return r.exec(ctx, `UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`, id, hash, time.Now().UTC())
}

// SetOnline flips the live-connection flag.
func (r *PostgresRepository) SetOnline(ctx context.Context, id string, online bool) error {
	return r.exec(ctx, `UPDATE users SET online = $2 WHERE id = $1`, id, online)
}

// Deactivate soft-disables the account. Records are never hard-deleted.
func (r *PostgresRepository) Deactivate(ctx context.Context, id string) error {
	return r.exec(ctx, `UPDATE users SET active = FALSE, online = FALSE, updated_at = $2 WHERE id = $1`, id, time.Now().UTC())
}

func (r *PostgresRepository) exec(ctx context.Context, query, id string, args ...any) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}
	params := append([]any{userID}, args...)
	cmd, err := r.db.Exec(ctx, query, params...)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	var (
		id        uuid.UUID
		lastLogin *time.Time
		createdAt time.Time
		updatedAt time.Time
		user      User
	)
	err := row.Scan(&id, &user.Name, &user.Mobile, &user.Email, &user.PasswordHash,
		&user.Role, &user.Active, &user.Verified, &user.Online,
		&user.Latitude, &user.Longitude, &user.Address, &lastLogin, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	user.LastLogin = lastLogin
	user.CreatedAt = createdAt.UTC()
	user.UpdatedAt = updatedAt.UTC()
	return user, nil
}

// translateUnique maps unique-index violations onto the same conflict errors
// the pre-insert uniqueness check produces. The index is the correctness
// backstop for concurrent registrations of one mobile number.
func translateUnique(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		switch pgErr.ConstraintName {
		case "users_email_key":
			return ErrEmailTaken
		default:
			return ErrMobileTaken
		}
	}
	return err
}
