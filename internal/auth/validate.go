package auth

import (
	"regexp"
	"strings"

	"github.com/agriconnect/agriconnect/internal/identity"
)

const minPasswordLen = 6

// Indian national mobile format: exactly ten digits, first digit 6-9.
var mobileRx = regexp.MustCompile(`^[6-9][0-9]{9}$`)

// ValidMobile reports whether the mobile number matches the national format.
func ValidMobile(mobile string) bool {
	return mobileRx.MatchString(mobile)
}

func validateRegister(in RegisterInput) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if !ValidMobile(in.Mobile) {
		fields["mobile"] = "mobile must be 10 digits starting with 6-9"
	}
	if len(in.Password) < minPasswordLen {
		fields["password"] = "password must be at least 6 characters"
	}
	if _, ok := identity.ParseRole(in.Role); !ok {
		fields["role"] = "role must be farmer, vendor or customer"
	}
	if in.Email != "" && !strings.Contains(in.Email, "@") {
		fields["email"] = "email is invalid"
	}
	return fields
}
