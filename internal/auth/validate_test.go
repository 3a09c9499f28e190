package auth

import "testing"

func TestValidMobile(t *testing.T) {
	cases := []struct {
		mobile string
		want   bool
	}{
		{"9876543210", true},
		{"6000000000", true},
		{"7123456789", true},
		{"8999999999", true},
		{"5876543210", false}, // leading digit below 6
		{"0876543210", false},
		{"987654321", false},   // nine digits
		{"98765432101", false}, // eleven digits
		{"98765abc10", false},
		{"", false},
		{"+919876543210", false},
	}

	for _, tc := range cases {
		if got := ValidMobile(tc.mobile); got != tc.want {
			t.Fatalf("ValidMobile(%q) = %v, want %v", tc.mobile, got, tc.want)
		}
	}
}

func TestValidateRegister(t *testing.T) {
	in := RegisterInput{Name: "Ram Patil", Mobile: "9876543210", Password: "Abc123", Role: "farmer"}
	if fields := validateRegister(in); len(fields) != 0 {
		t.Fatalf("expected valid input, got %v", fields)
	}

	in = RegisterInput{Name: " ", Mobile: "123", Password: "abc", Role: "pilot", Email: "not-an-email"}
	fields := validateRegister(in)
	for _, key := range []string{"name", "mobile", "password", "role", "email"} {
		if _, ok := fields[key]; !ok {
			t.Fatalf("expected field error for %s, got %v", key, fields)
		}
	}
}
