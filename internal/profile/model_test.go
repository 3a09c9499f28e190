package profile

import (
	"testing"
	"time"

	"github.com/agriconnect/agriconnect/internal/apperror"
	"github.com/agriconnect/agriconnect/internal/identity"
)

func TestNewRecordFarmerDefaults(t *testing.T) {
	now := time.Now().UTC()
	rec, err := NewRecord("user-1", identity.RoleFarmer, Input{FarmName: "Green Acres"}, now)
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if rec.Role != identity.RoleFarmer || rec.Farmer == nil || rec.Vendor != nil || rec.Customer != nil {
		t.Fatalf("expected farmer variant only, got %+v", rec)
	}
	p := rec.Farmer
	if p.FarmSize != 1 || p.FarmSizeUnit != "acre" || p.PickupSlot != "morning" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.Crops == nil || len(p.Crops) != 0 {
		t.Fatalf("expected empty crops slice, got %v", p.Crops)
	}
	if p.KYCVerified || p.Rating != 0 {
		t.Fatalf("kyc and rating must start zeroed, got %+v", p)
	}
}

func TestNewRecordVendorDefaults(t *testing.T) {
	rec, err := NewRecord("user-1", identity.RoleVendor, Input{ShopName: "Fresh Mart"}, time.Now().UTC())
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	p := rec.Vendor
	if p == nil {
		t.Fatalf("expected vendor variant, got %+v", rec)
	}
	if p.BusinessType != "retailer" || p.DailyCapacityKg != 10 || p.PaymentTerms != "immediate" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
}

func TestNewRecordCustomerDefaults(t *testing.T) {
	rec, err := NewRecord("user-1", identity.RoleCustomer, Input{}, time.Now().UTC())
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	p := rec.Customer
	if p == nil {
		t.Fatalf("expected customer variant, got %+v", rec)
	}
	if p.FamilySize != 1 || p.SubscriptionTier != "none" {
		t.Fatalf("unexpected defaults: %+v", p)
	}
	if p.DeliveryAddresses == nil || p.PaymentMethods == nil {
		t.Fatalf("expected empty slices, got %+v", p)
	}
}

func TestNewRecordRejectsUnknownVocab(t *testing.T) {
	_, err := NewRecord("user-1", identity.RoleFarmer, Input{Crops: []string{"durian"}}, time.Now().UTC())
	appErr, ok := apperror.As(err)
	if !ok || appErr.Kind != apperror.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := appErr.Fields["crops"]; !ok {
		t.Fatalf("expected crops field error, got %v", appErr.Fields)
	}

	_, err = NewRecord("user-1", identity.RoleVendor, Input{BusinessType: "smuggler"}, time.Now().UTC())
	appErr, ok = apperror.As(err)
	if !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, ok := appErr.Fields["business_type"]; !ok {
		t.Fatalf("expected business_type field error, got %v", appErr.Fields)
	}

	_, err = NewRecord("user-1", identity.RoleCustomer, Input{SubscriptionTier: "platinum"}, time.Now().UTC())
	if _, ok := apperror.As(err); !ok {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestNewRecordRejectsAdmin(t *testing.T) {
	if _, err := NewRecord("user-1", identity.RoleAdmin, Input{}, time.Now().UTC()); err == nil {
		t.Fatalf("expected admin role to be rejected")
	}
}

func TestVariant(t *testing.T) {
	rec, err := NewRecord("user-1", identity.RoleVendor, Input{}, time.Now().UTC())
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	if rec.Variant() != rec.Vendor {
		t.Fatalf("expected vendor variant")
	}
	if (Record{}).Variant() != nil {
		t.Fatalf("expected nil variant for empty record")
	}
}
