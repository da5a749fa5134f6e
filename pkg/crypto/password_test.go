package crypto

import (
	"errors"
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("secret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "secret" {
		t.Fatal("hash must not equal plaintext")
	}
	if err := ComparePassword(hash, "secret"); err != nil {
		t.Fatalf("ComparePassword(correct): %v", err)
	}
	if err := ComparePassword(hash, "wrong"); !errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("ComparePassword(wrong) = %v, want ErrPasswordMismatch", err)
	}
}

func TestComparePasswordMalformedHash(t *testing.T) {
	err := ComparePassword("not-a-bcrypt-hash", "secret")
	if err == nil || errors.Is(err, ErrPasswordMismatch) {
		t.Fatalf("expected malformed-hash error, got %v", err)
	}
}

func TestHashPasswordRejectsBadCost(t *testing.T) {
	if _, err := HashPassword("x", bcrypt.MaxCost+1); err == nil {
		t.Fatal("expected error for cost above MaxCost")
	}
}

func TestFingerprint(t *testing.T) {
	if Fingerprint("") != "" {
		t.Fatal("empty secret must have empty fingerprint")
	}
	fp := Fingerprint("token")
	if len(fp) != 16 || fp != Sha256Hex("token")[:16] {
		t.Fatalf("unexpected fingerprint %q", fp)
	}
}
