package identity

import "golang.org/x/crypto/bcrypt"

// Hasher applies the one-way password transform. The cost factor is tunable
// so the work factor can be raised later without breaking stored digests.
type Hasher struct {
	cost int
}

// NewHasher builds a Hasher with the given bcrypt cost. Out-of-range costs
// fall back to the bcrypt default.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{cost: cost}
}

// Hash derives a salted digest from the secret.
func (h Hasher) Hash(secret string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(secret), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify reports whether secret matches a previously stored digest.
func (h Hasher) Verify(secret, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(secret)) == nil
}
