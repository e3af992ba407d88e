package security

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHasher_HashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	password := []byte("pw12345")
	hash, err := h.Hash(password)
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if hash == "" || hash == string(password) {
		t.Fatalf("Hash returned %q", hash)
	}
	if !h.Verify(hash, password) {
		t.Fatal("Verify with correct password should succeed")
	}
}

func TestHasher_VerifyWrongPassword(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, _ := h.Hash([]byte("pw12345"))
	for _, other := range []string{"pw12346", "", "PW12345", "pw12345 "} {
		if h.Verify(hash, []byte(other)) {
			t.Errorf("Verify(%q) should fail", other)
		}
	}
}

func TestHasher_SaltedDigestsDiffer(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	a, _ := h.Hash([]byte("same"))
	b, _ := h.Hash([]byte("same"))
	if a == b {
		t.Fatal("two hashes of the same input should differ")
	}
	if !h.Verify(a, []byte("same")) || !h.Verify(b, []byte("same")) {
		t.Fatal("both digests should verify")
	}
}

func TestHasher_VerifyMalformedHash(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if h.Verify("not-a-bcrypt-hash", []byte("x")) {
		t.Fatal("malformed hash should not verify")
	}
}

func TestHasher_VerifyUnknown(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	if h.VerifyUnknown([]byte(dummyPassword)) {
		t.Fatal("VerifyUnknown must always return false")
	}
}

func TestNewHasher_Cost(t *testing.T) {
	tests := []struct {
		in, want int
	}{
		{0, DefaultBcryptCost},
		{-1, DefaultBcryptCost},
		{1, bcrypt.MinCost},
		{12, 12},
		{99, bcrypt.MaxCost},
	}
	for _, tt := range tests {
		if got := NewHasher(tt.in).Cost; got != tt.want {
			t.Errorf("NewHasher(%d).Cost = %d, want %d", tt.in, got, tt.want)
		}
	}
}
