package identity

import "time"

// Role tags a user with exactly one marketplace role.
type Role string

const (
	RoleFarmer   Role = "farmer"
	RoleVendor   Role = "vendor"
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a raw role string. Admin accounts are seeded, never
// self-registered, so it is excluded from the registerable set.
func ParseRole(raw string) (Role, bool) {
	switch Role(raw) {
	case RoleFarmer, RoleVendor, RoleCustomer:
		return Role(raw), true
	default:
		return "", false
	}
}

// User is the credential record backing every account.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Mobile       string     `json:"mobile"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	Active       bool       `json:"active"`
	Verified     bool       `json:"verified"`
	Online       bool       `json:"online"`
	Latitude     float64    `json:"latitude"`
	Longitude    float64    `json:"longitude"`
	Address      string     `json:"address"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// SyntheticEmail returns the placeholder address stored when a user registers
// without one. Keeps the unique email index usable.
func SyntheticEmail(mobile string) string {
	return mobile + "@agriconnect.local"
}

// Patch carries the allow-listed mutable credential fields for partial
// updates. Nil pointers leave the stored value untouched; role and mobile are
// deliberately absent.
type Patch struct {
	Name      *string
	Email     *string
	Address   *string
	Latitude  *float64
	Longitude *float64
}
