package identity

import "testing"

func TestHasherRoundTrip(t *testing.T) {
	h := NewHasher(4)

	digest, err := h.Hash("Abc123")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if digest == "Abc123" {
		t.Fatalf("digest must not equal the plain secret")
	}

	if !h.Verify("Abc123", digest) {
		t.Fatalf("expected matching secret to verify")
	}
	if h.Verify("wrong-pass", digest) {
		t.Fatalf("expected mismatching secret to fail")
	}
}

func TestHasherDistinctDigests(t *testing.T) {
	h := NewHasher(4)

	a, err := h.Hash("Abc123")
	if err != nil {
		t.Fatalf("hash a: %v", err)
	}
	b, err := h.Hash("Abc123")
	if err != nil {
		t.Fatalf("hash b: %v", err)
	}
	if a == b {
		t.Fatalf("expected salted digests to differ")
	}
}

func TestNewHasherOutOfRangeCost(t *testing.T) {
	h := NewHasher(99)

	digest, err := h.Hash("Abc123")
	if err != nil {
		t.Fatalf("hash with fallback cost: %v", err)
	}
	if !h.Verify("Abc123", digest) {
		t.Fatalf("expected verify to succeed with fallback cost")
	}
}
