package profile

import (
	"context"
	"sync"
	"time"

	"github.com/agriconnect/agriconnect/internal/identity"
)

// MemoryRepository is an in-memory role profile store used in development
// mode and as the test fake.
type MemoryRepository struct {
	mu      sync.RWMutex
	records map[string]Record // keyed by user id
}

// NewMemoryRepository builds an in-memory profile store.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{records: make(map[string]Record)}
}

// Create stores a record for the owning user.
func (r *MemoryRepository) Create(_ context.Context, rec Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[rec.UserID] = clone(rec)
	return nil
}

// Delete removes a record. Only the registration compensation path uses it.
func (r *MemoryRepository) Delete(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, userID)
	return nil
}

func (r *MemoryRepository) FindByUser(_ context.Context, userID string, role identity.Role) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[userID]
	if !ok || rec.Role != role {
		return Record{}, ErrNotFound
	}
	return clone(rec), nil
}

func (r *MemoryRepository) UpdateFarmer(_ context.Context, userID string, patch FarmerPatch) (Record, error) {
	return r.update(userID, identity.RoleFarmer, func(rec *Record, now time.Time) error {
		return applyFarmerPatch(rec.Farmer, patch, now)
	})
}

func (r *MemoryRepository) UpdateVendor(_ context.Context, userID string, patch VendorPatch) (Record, error) {
	return r.update(userID, identity.RoleVendor, func(rec *Record, now time.Time) error {
		return applyVendorPatch(rec.Vendor, patch, now)
	})
}

func (r *MemoryRepository) UpdateCustomer(_ context.Context, userID string, patch CustomerPatch) (Record, error) {
	return r.update(userID, identity.RoleCustomer, func(rec *Record, now time.Time) error {
		return applyCustomerPatch(rec.Customer, patch, now)
	})
}

func (r *MemoryRepository) update(userID string, role identity.Role, apply func(*Record, time.Time) error) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[userID]
	if !ok || rec.Role != role {
		return Record{}, ErrNotFound
	}
	updated := clone(rec)
	if err := apply(&updated, time.Now().UTC()); err != nil {
		return Record{}, err
	}
	r.records[userID] = clone(updated)
	return updated, nil
}

func clone(rec Record) Record {
	out := rec
	if rec.Farmer != nil {
		p := *rec.Farmer
		p.Crops = append([]string(nil), rec.Farmer.Crops...)
		out.Farmer = &p
	}
	if rec.Vendor != nil {
		p := *rec.Vendor
		p.PreferredProduce = append([]string(nil), rec.Vendor.PreferredProduce...)
		out.Vendor = &p
	}
	if rec.Customer != nil {
		p := *rec.Customer
		p.DeliveryAddresses = append([]Address(nil), rec.Customer.DeliveryAddresses...)
		p.PaymentMethods = append([]PaymentMethod(nil), rec.Customer.PaymentMethods...)
		out.Customer = &p
	}
	return out
}
