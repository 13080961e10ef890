package auth

import "testing"

func TestHashAndVerifyPassword(t *testing.T) {
	digest, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if digest == "correct horse" {
		t.Fatal("digest must not equal plaintext")
	}
	if !VerifyPassword("correct horse", digest) {
		t.Fatal("matching password should verify")
	}
	if VerifyPassword("battery staple", digest) {
		t.Fatal("wrong password should not verify")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	second, err := HashPassword("pw")
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	if first == second {
		t.Fatal("hashes should differ due to random salt")
	}
}
