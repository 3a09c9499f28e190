package profile

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agriconnect/agriconnect/internal/identity"
)

// ErrNotFound is returned when no profile exists for the user and role.
var ErrNotFound = errors.New("profile not found")

// Repository persists role profile records. Profiles are always looked up by
// the owning user id, never by an identifier of their own.
type Repository interface {
	FindByUser(ctx context.Context, userID string, role identity.Role) (Record, error)
	UpdateFarmer(ctx context.Context, userID string, patch FarmerPatch) (Record, error)
	UpdateVendor(ctx context.Context, userID string, patch VendorPatch) (Record, error)
	UpdateCustomer(ctx context.Context, userID string, patch CustomerPatch) (Record, error)
}

// PostgresRepository stores role profiles in PostgreSQL, one table per
// variant.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed profile repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateTx inserts the record's variant row inside the caller's transaction.
func (r *PostgresRepository) CreateTx(ctx context.Context, tx pgx.Tx, rec Record) error {
	userID, err := uuid.Parse(rec.UserID)
	if err != nil {
		return err
	}
	switch {
	case rec.Farmer != nil:
		p := rec.Farmer
		_, err = tx.Exec(ctx, `INSERT INTO farmer_profiles (user_id, farm_name, farm_size,
            farm_size_unit, crops, experience_years, kyc_verified, rating, bank_account,
            bank_ifsc, pickup_slot, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			userID, p.FarmName, p.FarmSize, p.FarmSizeUnit, p.Crops, p.ExperienceYears,
			p.KYCVerified, p.Rating, p.BankAccount, p.BankIFSC, p.PickupSlot,
			p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	case rec.Vendor != nil:
		p := rec.Vendor
		_, err = tx.Exec(ctx, `INSERT INTO vendor_profiles (user_id, shop_name, business_type,
            daily_capacity_kg, preferred_produce, payment_terms, rating, credit_limit,
            credit_used, created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			userID, p.ShopName, p.BusinessType, p.DailyCapacityKg, p.PreferredProduce,
			p.PaymentTerms, p.Rating, p.CreditLimit, p.CreditUsed,
			p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	case rec.Customer != nil:
		p := rec.Customer
		addresses, merr := json.Marshal(p.DeliveryAddresses)
		if merr != nil {
			return merr
		}
		methods, merr := json.Marshal(p.PaymentMethods)
		if merr != nil {
			return merr
		}
		_, err = tx.Exec(ctx, `INSERT INTO customer_profiles (user_id, family_size,
            subscription_tier, delivery_addresses, payment_methods, loyalty_points,
            created_at, updated_at)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			userID, p.FamilySize, p.SubscriptionTier, addresses, methods, p.LoyaltyPoints,
			p.CreatedAt.UTC(), p.UpdatedAt.UTC())
	default:
		return errors.New("record has no variant")
	}
	return err
}

// FindByUser loads the profile variant matching the user's role tag.
func (r *PostgresRepository) FindByUser(ctx context.Context, userID string, role identity.Role) (Record, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return Record{}, ErrNotFound
	}
	return findByUser(ctx, r.db, id, role)
}

// UpdateFarmer applies a partial update to a farmer profile.
func (r *PostgresRepository) UpdateFarmer(ctx context.Context, userID string, patch FarmerPatch) (Record, error) {
	return r.update(ctx, userID, identity.RoleFarmer, func(rec *Record, now time.Time) error {
		return applyFarmerPatch(rec.Farmer, patch, now)
	})
}

// UpdateVendor applies a partial update to a vendor profile.
func (r *PostgresRepository) UpdateVendor(ctx context.Context, userID string, patch VendorPatch) (Record, error) {
	return r.update(ctx, userID, identity.RoleVendor, func(rec *Record, now time.Time) error {
		return applyVendorPatch(rec.Vendor, patch, now)
	})
}

// UpdateCustomer applies a partial update to a customer profile.
func (r *PostgresRepository) UpdateCustomer(ctx context.Context, userID string, patch CustomerPatch) (Record, error) {
	return r.update(ctx, userID, identity.RoleCustomer, func(rec *Record, now time.Time) error {
		return applyCustomerPatch(rec.Customer, patch, now)
	})
}

func (r *PostgresRepository) update(ctx context.Context, userID string, role identity.Role,
	apply func(*Record, time.Time) error) (Record, error) {

	id, err := uuid.Parse(userID)
	if err != nil {
		return Record{}, ErrNotFound
	}

	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Record{}, err
	}
	defer tx.Rollback(ctx) // nolint:errcheck

	rec, err := findByUserForUpdate(ctx, tx, id, role)
	if err != nil {
		return Record{}, err
	}
	if err := apply(&rec, time.Now().UTC()); err != nil {
		return Record{}, err
	}
	if err := writeRecord(ctx, tx, id, rec); err != nil {
		return Record{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Record{}, err
	}
	return rec, nil
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func findByUser(ctx context.Context, q querier, id uuid.UUID, role identity.Role) (Record, error) {
	return queryRecord(ctx, q, id, role, "")
}

func findByUserForUpdate(ctx context.Context, q querier, id uuid.UUID, role identity.Role) (Record, error) {
	return queryRecord(ctx, q, id, role, " FOR UPDATE")
}

func queryRecord(ctx context.Context, q querier, id uuid.UUID, role identity.Role, suffix string) (Record, error) {
	rec := Record{UserID: id.String(), Role: role}
	var err error

	switch role {
	case identity.RoleFarmer:
		var p FarmerProfile
		err = q.QueryRow(ctx, `SELECT farm_name, farm_size, farm_size_unit, crops,
            experience_years, kyc_verified, rating, bank_account, bank_ifsc, pickup_slot,
            created_at, updated_at FROM farmer_profiles WHERE user_id = $1`+suffix, id).
			Scan(&p.FarmName, &p.FarmSize, &p.FarmSizeUnit, &p.Crops, &p.ExperienceYears,
				&p.KYCVerified, &p.Rating, &p.BankAccount, &p.BankIFSC, &p.PickupSlot,
				&p.CreatedAt, &p.UpdatedAt)
		rec.Farmer = &p
	case identity.RoleVendor:
		var p VendorProfile
		err = q.QueryRow(ctx, `SELECT shop_name, business_type, daily_capacity_kg,
            preferred_produce, payment_terms, rating, credit_limit, credit_used,
            created_at, updated_at FROM vendor_profiles WHERE user_id = $1`+suffix, id).
			Scan(&p.ShopName, &p.BusinessType, &p.DailyCapacityKg, &p.PreferredProduce,
				&p.PaymentTerms, &p.Rating, &p.CreditLimit, &p.CreditUsed,
				&p.CreatedAt, &p.UpdatedAt)
		rec.Vendor = &p
	case identity.RoleCustomer:
		var (
			p         CustomerProfile
			addresses []byte
			methods   []byte
		)
		err = q.QueryRow(ctx, `SELECT family_size, subscription_tier, delivery_addresses,
            payment_methods, loyalty_points, created_at, updated_at
            FROM customer_profiles WHERE user_id = $1`+suffix, id).
			Scan(&p.FamilySize, &p.SubscriptionTier, &addresses, &methods,
				&p.LoyaltyPoints, &p.CreatedAt, &p.UpdatedAt)
		if err == nil {
			if jerr := json.Unmarshal(addresses, &p.DeliveryAddresses); jerr != nil {
				return Record{}, jerr
			}
			if jerr := json.Unmarshal(methods, &p.PaymentMethods); jerr != nil {
				return Record{}, jerr
			}
		}
		rec.Customer = &p
	default:
		return Record{}, ErrNotFound
	}

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrNotFound
		}
		return Record{}, err
	}
	return rec, nil
}

func writeRecord(ctx context.Context, tx pgx.Tx, id uuid.UUID, rec Record) error {
	switch {
	case rec.Farmer != nil:
		p := rec.Farmer
		_, err := tx.Exec(ctx, `UPDATE farmer_profiles SET farm_name = $2, farm_size = $3,
            farm_size_unit = $4, crops = $5, experience_years = $6, bank_account = $7,
            bank_ifsc = $8, pickup_slot = $9, updated_at = $10 WHERE user_id = $1`,
			id, p.FarmName, p.FarmSize, p.FarmSizeUnit, p.Crops, p.ExperienceYears,
			p.BankAccount, p.BankIFSC, p.PickupSlot, p.UpdatedAt)
		return err
	case rec.Vendor != nil:
		p := rec.Vendor
		_, err := tx.Exec(ctx, `UPDATE vendor_profiles SET shop_name = $2, business_type = $3,
            daily_capacity_kg = $4, preferred_produce = $5, payment_terms = $6,
            updated_at = $7 WHERE user_id = $1`,
			id, p.ShopName, p.BusinessType, p.DailyCapacityKg, p.PreferredProduce,
			p.PaymentTerms, p.UpdatedAt)
		return err
	case rec.Customer != nil:
		p := rec.Customer
		addresses, err := json.Marshal(p.DeliveryAddresses)
		if err != nil {
			return err
		}
		methods, err := json.Marshal(p.PaymentMethods)
		if err != nil {
			return err
		}
		_, err = tx.Exec(ctx, `UPDATE customer_profiles SET family_size = $2,
            subscription_tier = $3, delivery_addresses = $4, payment_methods = $5,
            updated_at = $6 WHERE user_id = $1`,
			id, p.FamilySize, p.SubscriptionTier, addresses, methods, p.UpdatedAt)
		return err
	default:
		return errors.New("record has no variant")
	}
}
