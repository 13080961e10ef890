package auth

import (
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/hkdf"
)

// DerivedKeyLength is the length of derived keys in bytes (256 bits for HMAC-SHA256).
const DerivedKeyLength = 32

const purposeBearerJWT = "skillstage-bearer-jwt-v1"

// ErrInvalidMasterSecret is returned when the master secret is empty.
var ErrInvalidMasterSecret = errors.New("master secret cannot be empty")

// DeriveKey derives a signing key from the master secret using HKDF-SHA256
// (RFC 5869). The purpose string provides domain separation so that keys for
// different uses are cryptographically independent.
func DeriveKey(masterSecret []byte, purpose string) ([]byte, error) {
	if len(masterSecret) == 0 {
		return nil, ErrInvalidMasterSecret
	}

	reader := hkdf.New(sha256.New, masterSecret, nil, []byte(purpose))
	key := make([]byte, DerivedKeyLength)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, err
	}
	return key, nil
}

// DeriveBearerJWTKey derives the key used to sign bearer tokens.
func DeriveBearerJWTKey(masterSecret []byte) ([]byte, error) {
	return DeriveKey(masterSecret, purposeBearerJWT)
}
