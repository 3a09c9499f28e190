package auth

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agriconnect/agriconnect/internal/identity"
	"github.com/agriconnect/agriconnect/internal/profile"
)

// Registrar creates a credential record and its role profile as one
// all-or-nothing unit. Neither side is ever observable without the other.
type Registrar interface {
	CreateAccount(ctx context.Context, user identity.User, rec profile.Record) error
}

// PostgresRegistrar wraps both inserts in a single database transaction.
type PostgresRegistrar struct {
	db       *pgxpool.Pool
	users    *identity.PostgresRepository
	profiles *profile.PostgresRepository
}

// NewPostgresRegistrar builds a transactional registrar.
func NewPostgresRegistrar(db *pgxpool.Pool, users *identity.PostgresRepository, profiles *profile.PostgresRepository) *PostgresRegistrar {
	return &PostgresRegistrar{db: db, users: users, profiles: profiles}
}

// CreateAccount inserts the user and the profile in one transaction.
func (r *PostgresRegistrar) CreateAccount(ctx context.Context, user identity.User, rec profile.Record) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	if err := r.users.CreateTx(ctx, tx, user); err != nil {
		return err
	}
	if err := r.profiles.CreateTx(ctx, tx, rec); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// MemoryRegistrar backs the in-memory development mode. It compensates a
// failed profile insert by deleting the user again.
type MemoryRegistrar struct {
	users    *identity.MemoryRepository
	profiles *profile.MemoryRepository
}

// NewMemoryRegistrar builds an in-memory registrar.
func NewMemoryRegistrar(users *identity.MemoryRepository, profiles *profile.MemoryRepository) *MemoryRegistrar {
	return &MemoryRegistrar{users: users, profiles: profiles}
}

// CreateAccount creates both records, undoing the user on profile failure.
func (r *MemoryRegistrar) CreateAccount(ctx context.Context, user identity.User, rec profile.Record) error {
	if err := r.users.Create(ctx, user); err != nil {
		return err
	}
	if err := r.profiles.Create(ctx, rec); err != nil {
		r.users.Delete(ctx, user.ID) // nolint:errcheck
		return err
	}
	return nil
}
