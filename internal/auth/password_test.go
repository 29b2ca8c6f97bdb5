package auth

import (
	"strings"
	"testing"
)

func TestHashAndVerify(t *testing.T) {
	ps := NewPasswordServiceForTest(4)

	hash, err := ps.Hash("secret-password")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hash == "" || hash == "secret-password" {
		t.Fatal("Hash() must return a non-empty hash distinct from the input")
	}

	if err := ps.Verify(hash, "secret-password"); err != nil {
		t.Errorf("Verify() with correct password = %v, want nil", err)
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	ps := NewPasswordServiceForTest(4)

	hash, _ := ps.Hash("secret-password")
	if err := ps.Verify(hash, "wrong-password"); err == nil {
		t.Error("Verify() should fail for a wrong password")
	}
}

func TestHash_SamePasswordDifferentHashes(t *testing.T) {
	ps := NewPasswordServiceForTest(4)

	h1, _ := ps.Hash("same-password")
	h2, _ := ps.Hash("same-password")
	if h1 == h2 {
		t.Error("two hashes of the same password should differ (random salt)")
	}
}

func TestHash_RejectsOverlongPassword(t *testing.T) {
	ps := NewPasswordServiceForTest(4)

	_, err := ps.Hash(strings.Repeat("x", 73))
	if err == nil {
		t.Error("Hash() should reject passwords over 72 bytes")
	}
}
