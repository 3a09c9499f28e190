package profile

import (
	"time"

	"github.com/agriconnect/agriconnect/internal/apperror"
)

// FarmerPatch carries allow-listed partial updates for a farmer profile.
// Nil pointers and nil slices leave the stored value untouched. Rating and
// KYC are operator-managed and deliberately absent.
type FarmerPatch struct {
	FarmName        *string  `json:"farm_name"`
	FarmSize        *float64 `json:"farm_size"`
	FarmSizeUnit    *string  `json:"farm_size_unit"`
	Crops           []string `json:"crops"`
	ExperienceYears *int     `json:"experience_years"`
	BankAccount     *string  `json:"bank_account"`
	BankIFSC        *string  `json:"bank_ifsc"`
	PickupSlot      *string  `json:"pickup_slot"`
}

// VendorPatch carries allow-listed partial updates for a vendor profile.
type VendorPatch struct {
	ShopName         *string  `json:"shop_name"`
	BusinessType     *string  `json:"business_type"`
	DailyCapacityKg  *int     `json:"daily_capacity_kg"`
	PreferredProduce []string `json:"preferred_produce"`
	PaymentTerms     *string  `json:"payment_terms"`
}

// CustomerPatch carries allow-listed partial updates for a customer profile.
type CustomerPatch struct {
	FamilySize        *int            `json:"family_size"`
	SubscriptionTier  *string         `json:"subscription_tier"`
	DeliveryAddresses []Address       `json:"delivery_addresses"`
	PaymentMethods    []PaymentMethod `json:"payment_methods"`
}

func applyFarmerPatch(p *FarmerProfile, patch FarmerPatch, now time.Time) error {
	fields := map[string]string{}
	if patch.FarmName != nil {
		p.FarmName = *patch.FarmName
	}
	if patch.FarmSize != nil {
		if *patch.FarmSize <= 0 {
			fields["farm_size"] = "must be positive"
		} else {
			p.FarmSize = *patch.FarmSize
		}
	}
	if patch.FarmSizeUnit != nil {
		checkVocab(fields, "farm_size_unit", *patch.FarmSizeUnit, FarmSizeUnits)
		p.FarmSizeUnit = *patch.FarmSizeUnit
	}
	if patch.Crops != nil {
		for _, crop := range patch.Crops {
			checkVocab(fields, "crops", crop, Crops)
		}
		p.Crops = patch.Crops
	}
	if patch.ExperienceYears != nil {
		p.ExperienceYears = *patch.ExperienceYears
	}
	if patch.BankAccount != nil {
		p.BankAccount = *patch.BankAccount
	}
	if patch.BankIFSC != nil {
		p.BankIFSC = *patch.BankIFSC
	}
	if patch.PickupSlot != nil {
		checkVocab(fields, "pickup_slot", *patch.PickupSlot, PickupSlots)
		p.PickupSlot = *patch.PickupSlot
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid profile fields", fields)
	}
	p.UpdatedAt = now
	return nil
}

func applyVendorPatch(p *VendorProfile, patch VendorPatch, now time.Time) error {
	fields := map[string]string{}
	if patch.ShopName != nil {
		p.ShopName = *patch.ShopName
	}
	if patch.BusinessType != nil {
		checkVocab(fields, "business_type", *patch.BusinessType, BusinessTypes)
		p.BusinessType = *patch.BusinessType
	}
	if patch.DailyCapacityKg != nil {
		if *patch.DailyCapacityKg <= 0 {
			fields["daily_capacity_kg"] = "must be positive"
		} else {
			p.DailyCapacityKg = *patch.DailyCapacityKg
		}
	}
	if patch.PreferredProduce != nil {
		for _, produce := range patch.PreferredProduce {
			checkVocab(fields, "preferred_produce", produce, Crops)
		}
		p.PreferredProduce = patch.PreferredProduce
	}
	if patch.PaymentTerms != nil {
		checkVocab(fields, "payment_terms", *patch.PaymentTerms, PaymentTermsSet)
		p.PaymentTerms = *patch.PaymentTerms
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid profile fields", fields)
	}
	p.UpdatedAt = now
	return nil
}

func applyCustomerPatch(p *CustomerProfile, patch CustomerPatch, now time.Time) error {
	fields := map[string]string{}
	if patch.FamilySize != nil {
		if *patch.FamilySize <= 0 {
			fields["family_size"] = "must be positive"
		} else {
			p.FamilySize = *patch.FamilySize
		}
	}
	if patch.SubscriptionTier != nil {
		checkVocab(fields, "subscription_tier", *patch.SubscriptionTier, SubscriptionTiers)
		p.SubscriptionTier = *patch.SubscriptionTier
	}
	if patch.DeliveryAddresses != nil {
		p.DeliveryAddresses = patch.DeliveryAddresses
	}
	if patch.PaymentMethods != nil {
		p.PaymentMethods = patch.PaymentMethods
	}
	if len(fields) > 0 {
		return apperror.Validation("invalid profile fields", fields)
	}
	p.UpdatedAt = now
	return nil
}
