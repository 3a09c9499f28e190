package profile

import (
	"time"

	"github.com/agriconnect/agriconnect/internal/apperror"
	"github.com/agriconnect/agriconnect/internal/identity"
)

// FarmerProfile holds farmer-specific attributes.
type FarmerProfile struct {
	FarmName        string    `json:"farm_name"`
	FarmSize        float64   `json:"farm_size"`
	FarmSizeUnit    string    `json:"farm_size_unit"`
	Crops           []string  `json:"crops"`
	ExperienceYears int       `json:"experience_years"`
	KYCVerified     bool      `json:"kyc_verified"`
	Rating          float64   `json:"rating"`
	BankAccount     string    `json:"bank_account"`
	BankIFSC        string    `json:"bank_ifsc"`
	PickupSlot      string    `json:"pickup_slot"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// VendorProfile holds vendor-specific attributes.
type VendorProfile struct {
	ShopName         string    `json:"shop_name"`
	BusinessType     string    `json:"business_type"`
	DailyCapacityKg  int       `json:"daily_capacity_kg"`
	PreferredProduce []string  `json:"preferred_produce"`
	PaymentTerms     string    `json:"payment_terms"`
	Rating           float64   `json:"rating"`
	CreditLimit      int64     `json:"credit_limit"`
	CreditUsed       int64     `json:"credit_used"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Address is a customer delivery address.
type Address struct {
	Label   string `json:"label"`
	Line    string `json:"line"`
	City    string `json:"city"`
	Pincode string `json:"pincode"`
}

// PaymentMethod is a stored customer payment preference.
type PaymentMethod struct {
	Kind  string `json:"kind"`
	Label string `json:"label"`
}

// CustomerProfile holds customer-specific attributes.
type CustomerProfile struct {
	FamilySize        int             `json:"family_size"`
	SubscriptionTier  string          `json:"subscription_tier"`
	DeliveryAddresses []Address       `json:"delivery_addresses"`
	PaymentMethods    []PaymentMethod `json:"payment_methods"`
	LoyaltyPoints     int             `json:"loyalty_points"`
	CreatedAt         time.Time       `json:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// Record is the role profile as a tagged union: exactly one variant is
// non-nil and it must match Role. The pairing with the credential record is
// created in a single transaction and never observable partially.
type Record struct {
	UserID   string           `json:"user_id"`
	Role     identity.Role    `json:"role"`
	Farmer   *FarmerProfile   `json:"farmer,omitempty"`
	Vendor   *VendorProfile   `json:"vendor,omitempty"`
	Customer *CustomerProfile `json:"customer,omitempty"`
}

// Variant returns the populated role-specific payload.
func (r Record) Variant() any {
	switch {
	case r.Farmer != nil:
		return r.Farmer
	case r.Vendor != nil:
		return r.Vendor
	case r.Customer != nil:
		return r.Customer
	default:
		return nil
	}
}

// Fixed vocabularies. Values outside these sets are rejected at validation.
var (
	Crops = stringSet(
		"tomato", "onion", "potato", "brinjal", "cabbage", "cauliflower",
		"okra", "spinach", "carrot", "beans", "chilli", "banana", "mango",
		"grapes", "wheat", "rice", "maize", "sugarcane", "cotton", "soybean",
	)
	BusinessTypes     = stringSet("retailer", "wholesaler", "restaurant", "exporter", "processor")
	SubscriptionTiers = stringSet("none", "basic", "premium")
	PickupSlots       = stringSet("morning", "afternoon", "evening")
	PaymentTermsSet   = stringSet("immediate", "weekly", "monthly")
	FarmSizeUnits     = stringSet("acre", "hectare", "guntha")
)

const (
	defaultFarmSize      = 1.0
	defaultFarmSizeUnit  = "acre"
	defaultPickupSlot    = "morning"
	defaultBusinessType  = "retailer"
	defaultDailyCapacity = 10
	defaultPaymentTerms  = "immediate"
	defaultFamilySize    = 1
	defaultTier          = "none"
)

// NewRecord builds a validated, default-filled record for the role from the
// role-appropriate input. The discriminant always matches the owning user's
// role tag.
func NewRecord(userID string, role identity.Role, in Input, now time.Time) (Record, error) {
	rec := Record{UserID: userID, Role: role}
	fields := map[string]string{}

	switch role {
	case identity.RoleFarmer:
		p := FarmerProfile{
			FarmName:        in.FarmName,
			FarmSize:        in.FarmSize,
			FarmSizeUnit:    in.FarmSizeUnit,
			Crops:           in.Crops,
			ExperienceYears: in.ExperienceYears,
			BankAccount:     in.BankAccount,
			BankIFSC:        in.BankIFSC,
			PickupSlot:      in.PickupSlot,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if p.FarmSize <= 0 {
			p.FarmSize = defaultFarmSize
		}
		if p.FarmSizeUnit == "" {
			p.FarmSizeUnit = defaultFarmSizeUnit
		}
		if p.PickupSlot == "" {
			p.PickupSlot = defaultPickupSlot
		}
		if p.Crops == nil {
			p.Crops = []string{}
		}
		checkVocab(fields, "farm_size_unit", p.FarmSizeUnit, FarmSizeUnits)
		checkVocab(fields, "pickup_slot", p.PickupSlot, PickupSlots)
		for _, crop := range p.Crops {
			checkVocab(fields, "crops", crop, Crops)
		}
		rec.Farmer = &p

	case identity.RoleVendor:
		p := VendorProfile{
			ShopName:         in.ShopName,
			BusinessType:     in.BusinessType,
			DailyCapacityKg:  in.DailyCapacityKg,
			PreferredProduce: in.PreferredProduce,
			PaymentTerms:     in.PaymentTerms,
			CreditLimit:      in.CreditLimit,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if p.BusinessType == "" {
			p.BusinessType = defaultBusinessType
		}
		if p.DailyCapacityKg <= 0 {
			p.DailyCapacityKg = defaultDailyCapacity
		}
		if p.PaymentTerms == "" {
			p.PaymentTerms = defaultPaymentTerms
		}
		if p.PreferredProduce == nil {
			p.PreferredProduce = []string{}
		}
		checkVocab(fields, "business_type", p.BusinessType, BusinessTypes)
		checkVocab(fields, "payment_terms", p.PaymentTerms, PaymentTermsSet)
		for _, produce := range p.PreferredProduce {
			checkVocab(fields, "preferred_produce", produce, Crops)
		}
		rec.Vendor = &p

	case identity.RoleCustomer:
		p := CustomerProfile{
			FamilySize:        in.FamilySize,
			SubscriptionTier:  in.SubscriptionTier,
			DeliveryAddresses: in.DeliveryAddresses,
			PaymentMethods:    in.PaymentMethods,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if p.FamilySize <= 0 {
			p.FamilySize = defaultFamilySize
		}
		if p.SubscriptionTier == "" {
			p.SubscriptionTier = defaultTier
		}
		if p.DeliveryAddresses == nil {
			p.DeliveryAddresses = []Address{}
		}
		if p.PaymentMethods == nil {
			p.PaymentMethods = []PaymentMethod{}
		}
		checkVocab(fields, "subscription_tier", p.SubscriptionTier, SubscriptionTiers)
		rec.Customer = &p

	default:
		return Record{}, apperror.Validation("unknown role", map[string]string{"role": "must be farmer, vendor or customer"})
	}

	if len(fields) > 0 {
		return Record{}, apperror.Validation("invalid profile fields", fields)
	}
	return rec, nil
}

// Input is the flat bag of role-specific registration fields. Only the
// fields matching the chosen role are consulted.
type Input struct {
	// Farmer
	FarmName        string   `json:"farm_name"`
	FarmSize        float64  `json:"farm_size"`
	FarmSizeUnit    string   `json:"farm_size_unit"`
	Crops           []string `json:"crops"`
	ExperienceYears int      `json:"experience_years"`
	BankAccount     string   `json:"bank_account"`
	BankIFSC        string   `json:"bank_ifsc"`
	PickupSlot      string   `json:"pickup_slot"`
	// Vendor
	ShopName         string   `json:"shop_name"`
	BusinessType     string   `json:"business_type"`
	DailyCapacityKg  int      `json:"daily_capacity_kg"`
	PreferredProduce []string `json:"preferred_produce"`
	PaymentTerms     string   `json:"payment_terms"`
	CreditLimit      int64    `json:"credit_limit"`
	// Customer
	FamilySize        int             `json:"family_size"`
	SubscriptionTier  string          `json:"subscription_tier"`
	DeliveryAddresses []Address       `json:"delivery_addresses"`
	PaymentMethods    []PaymentMethod `json:"payment_methods"`
}

func checkVocab(fields map[string]string, field, value string, set map[string]struct{}) {
	if _, ok := set[value]; !ok {
		fields[field] = "unsupported value: " + value
	}
}

func stringSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
