package security

import (
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Key purposes. Each derived key is independent so a leaked CSRF key says
// nothing about the token signing key.
const (
	PurposeLearnerToken = "steam4all learner token v1"
	PurposeCSRF         = "steam4all csrf v1"
)

// DeriveKey expands the configured session secret into a 32-byte key for purpose
func DeriveKey(secret, purpose string) []byte {
	r := hkdf.New(sha256.New, []byte(secret), nil, []byte(purpose))
	key := make([]byte, 32)
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only fails past 255*hash-size bytes
		panic(err)
	}
	return key
}
